// Package resolver decides verification status from a fetched profile. The
// upstream exposes verification through a zoo of flags, status strings, group
// and role memberships, and timestamps that have accreted over time; the
// resolver evaluates them as one ordered table of OR-combined predicates.
//
// Evaluation is pure: no I/O, no clock reads beyond the instant passed to
// ResolveAt. The predicates are logically equivalent or-branches; order only
// determines which one is credited as the result's Source.
package resolver

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"platewise/internal/verification/models"
)

// boolFlags are profile fields that verify a user when strictly true.
var boolFlags = []string{
	"is_verified",
	"verified",
	"verification_approved",
	"account_verified",
	"business_verified",
	"is_contributor",
	"chef_verified",
	"content_creator_verified",
	"user_verified",
	"verified_user",
	"user_verification",
}

// statusFields verify when equal (case-sensitive) to one of statusValues.
var statusFields = []string{
	"verification_status",
	"contributor_status",
	"user_verification",
}

var statusValues = []string{"approved", "verified"}

var groupNeedles = []string{"verified", "contributors", "verified_users", "business_verified", "moderators"}
var roleNeedles = []string{"verified", "contributor", "business", "moderator", "chef", "cook"}
var permissionNeedles = []string{"verified", "contributor", "business", "chef"}

var dateFields = []string{"verified_at", "verification_date"}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// fuzzyPatterns are the lowest-confidence catch-all. They run against the
// whole profile serialized to lowercase JSON, and always report
// SourceFuzzyMatch so audit code can treat the result with less trust.
var fuzzyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`verified.*true`),
	regexp.MustCompile(`verification.*approv`),
	regexp.MustCompile(`verification.*success`),
	regexp.MustCompile(`status.*verified`),
	regexp.MustCompile(`verified.*user`),
	regexp.MustCompile(`contributor.*verified`),
	regexp.MustCompile(`business.*verified`),
	regexp.MustCompile(`account.*verified`),
}

type predicate struct {
	source string
	match  func(p models.Profile, now time.Time) bool
}

var predicates = []predicate{
	{models.SourceProfileFlag, func(p models.Profile, _ time.Time) bool { return anyBoolFlag(p) }},
	{models.SourceStatusField, func(p models.Profile, _ time.Time) bool { return anyStatusField(p) }},
	{models.SourcePrivilegedAccount, func(p models.Profile, _ time.Time) bool { return privilegedAccount(p) }},
	{models.SourceNestedProfile, func(p models.Profile, _ time.Time) bool { return nestedProfile(p) }},
	{models.SourceGroupMembership, func(p models.Profile, _ time.Time) bool { return groupMembership(p) }},
	{models.SourceRoleMembership, func(p models.Profile, _ time.Time) bool { return roleMembership(p) }},
	{models.SourcePermission, func(p models.Profile, _ time.Time) bool { return permissionMembership(p) }},
	{models.SourceVerifiedTimestamp, verifiedTimestamp},
	{models.SourceFuzzyMatch, func(p models.Profile, _ time.Time) bool { return fuzzyMatch(p) }},
}

// Resolve evaluates the predicate table against the profile at the current
// instant. See ResolveAt.
func Resolve(profile models.Profile, loggedIn bool) models.Result {
	return ResolveAt(profile, loggedIn, time.Now())
}

// ResolveAt evaluates the predicate table at a fixed instant. A nil profile
// with loggedIn true means the fetch failed, which is an error outcome, not
// "not verified". Any panic during evaluation (hostile profile shapes) is
// recovered into an error result instead of propagating.
func ResolveAt(profile models.Profile, loggedIn bool, now time.Time) (result models.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = models.Result{Status: models.StatusError, Source: models.SourceNone}
		}
	}()

	if !loggedIn {
		return models.Result{Status: models.StatusNotLoggedIn, Source: models.SourceNone}
	}
	if profile == nil {
		return models.Result{Status: models.StatusError, Source: models.SourceNone}
	}

	for _, pred := range predicates {
		if pred.match(profile, now) {
			return models.Result{
				Status:     models.StatusApproved,
				IsVerified: true,
				Source:     pred.source,
				Evidence:   ExtractEvidence(profile),
			}
		}
	}

	return models.Result{Status: models.StatusNotApplied, Source: models.SourceNone}
}

// ExtractEvidence pulls display-only detail out of a profile. Best effort;
// a nil return just means the panel has nothing extra to show.
func ExtractEvidence(p models.Profile) *models.Evidence {
	ev := models.Evidence{}

	for _, candidate := range []models.Profile{p, p.Map("profile")} {
		if candidate == nil {
			continue
		}
		if ev.BusinessName == "" {
			ev.BusinessName = candidate.Str("business_name")
		}
		if ev.VerifiedSince == "" {
			for _, field := range dateFields {
				if v := candidate.Str(field); v != "" {
					ev.VerifiedSince = v
					break
				}
			}
		}
	}

	if ev == (models.Evidence{}) {
		return nil
	}
	return &ev
}

func anyBoolFlag(p models.Profile) bool {
	for _, flag := range boolFlags {
		if p.Bool(flag) {
			return true
		}
	}
	return false
}

func anyStatusField(p models.Profile) bool {
	for _, field := range statusFields {
		v := p.Str(field)
		if v == "" {
			continue
		}
		for _, want := range statusValues {
			if v == want {
				return true
			}
		}
	}
	return false
}

// privilegedAccount treats staff and superuser accounts as verified unless
// verification was explicitly revoked. Privilege does not outrank a revocation.
func privilegedAccount(p models.Profile) bool {
	if p.Bool("verification_revoked") {
		return false
	}
	return p.Bool("is_staff") || p.Bool("is_superuser")
}

func nestedProfile(p models.Profile) bool {
	nested := p.Map("profile")
	if nested == nil {
		return false
	}
	return anyBoolFlag(nested) || anyStatusField(nested)
}

func groupMembership(p models.Profile) bool {
	return containsNeedle(memberNames(p.List("groups")), groupNeedles)
}

func roleMembership(p models.Profile) bool {
	entries := p.List("roles")
	if entries == nil {
		entries = p.List("role")
	}
	return containsNeedle(memberNames(entries), roleNeedles)
}

func permissionMembership(p models.Profile) bool {
	return containsNeedle(memberNames(p.List("permissions")), permissionNeedles) ||
		containsNeedle(memberNames(p.List("user_permissions")), permissionNeedles)
}

// memberNames extracts a display name from each membership entry, whether the
// entry is a plain string or an object carrying name/codename.
func memberNames(entries []any) []string {
	var names []string
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			m := models.Profile(v)
			if name := m.Str("name"); name != "" {
				names = append(names, name)
			} else if codename := m.Str("codename"); codename != "" {
				names = append(names, codename)
			}
		}
	}
	return names
}

func containsNeedle(names, needles []string) bool {
	for _, name := range names {
		lowered := strings.ToLower(name)
		for _, needle := range needles {
			if strings.Contains(lowered, needle) {
				return true
			}
		}
	}
	return false
}

// verifiedTimestamp accepts a parseable verification date in the past.
// Future-dated values are ignored rather than trusted.
func verifiedTimestamp(p models.Profile, now time.Time) bool {
	for _, field := range dateFields {
		raw := p.Str(field)
		if raw == "" {
			continue
		}
		for _, layout := range dateLayouts {
			ts, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			if !ts.After(now) {
				return true
			}
			break
		}
	}
	return false
}

func fuzzyMatch(p models.Profile) bool {
	raw, err := json.Marshal(p)
	if err != nil {
		return false
	}
	serialized := strings.ToLower(string(raw))
	for _, pattern := range fuzzyPatterns {
		if pattern.MatchString(serialized) {
			return true
		}
	}
	return false
}
