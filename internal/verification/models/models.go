// Package models holds the verification domain types shared by the resolver,
// cache, override store, and transport layers.
package models

import (
	"strings"
	"time"
)

// Status is the outcome of one verification resolution.
type Status string

const (
	StatusNotApplied  Status = "not_applied"
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusError       Status = "error"
	StatusNotLoggedIn Status = "not_logged_in"
)

// Definite reports whether the status is a settled outcome that may be cached
// for the full TTL. Errors are recoverable and must be retried immediately;
// not_logged_in flips as soon as a token appears, so it is not settled either.
func (s Status) Definite() bool {
	switch s {
	case StatusNotApplied, StatusPending, StatusRejected, StatusApproved:
		return true
	default:
		return false
	}
}

// Source values name the evidence that decided a result. They are provenance
// for audit and debugging; downstream code must never branch on them.
const (
	SourceProfileFlag          = "profile_flag"
	SourceStatusField          = "status_field"
	SourcePrivilegedAccount    = "privileged_account"
	SourceNestedProfile        = "nested_profile"
	SourceGroupMembership      = "group_membership"
	SourceRoleMembership       = "role_membership"
	SourcePermission           = "permission"
	SourceVerifiedTimestamp    = "verified_timestamp"
	SourceFuzzyMatch           = "fuzzy_match"
	SourceManualOverride       = "manual_override"
	SourceVerificationEndpoint = "verification_endpoint"
	SourceNone                 = "none"
)

// Result is the tagged outcome handed to badge renderers, the status panel,
// and the poller.
type Result struct {
	Status     Status    `json:"status"`
	IsVerified bool      `json:"is_verified"`
	Source     string    `json:"source"`
	Evidence   *Evidence `json:"evidence,omitempty"`
}

// Evidence is display-only detail extracted from the profile. Never used for
// decision-making.
type Evidence struct {
	BusinessName  string `json:"business_name,omitempty"`
	VerifiedSince string `json:"verified_since,omitempty"`
}

// Override is the locally persisted manual verification flag. It applies only
// to the current user and short-circuits normal resolution while present.
type Override struct {
	IsVerified bool      `json:"is_verified"`
	Reason     string    `json:"reason"`
	SetAt      time.Time `json:"set_at"`
}

// Result wraps the override as a resolution outcome.
func (o Override) Result() Result {
	status := StatusNotApplied
	if o.IsVerified {
		status = StatusApproved
	}
	return Result{
		Status:     status,
		IsVerified: o.IsVerified,
		Source:     SourceManualOverride,
	}
}

// Application is the upstream verification-application record. A definite
// Status here is authoritative over profile-derived predicates.
type Application struct {
	Status       string  `json:"status"`
	BusinessName string  `json:"business_name,omitempty"`
	SubmittedAt  string  `json:"submitted_at,omitempty"`
	Detail       Profile `json:"application,omitempty"`
}

// SubjectCurrentUser keys cache entries for the authenticated caller.
// Overrides apply only to this subject.
const SubjectCurrentUser = "current-user"

// SubjectForUser keys cache entries for a third-party user lookup.
func SubjectForUser(userID string) string {
	if userID == "" {
		return SubjectCurrentUser
	}
	return "user:" + userID
}

// UserIDFromSubject recovers the upstream user id from a subject key. The
// current user maps to the empty id, which the client sends as "self".
func UserIDFromSubject(subjectKey string) string {
	if subjectKey == SubjectCurrentUser {
		return ""
	}
	return strings.TrimPrefix(subjectKey, "user:")
}
