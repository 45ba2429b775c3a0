// Package badge turns resolution results into display strings. Renderers are
// pure: the same result always produces the same text.
package badge

import (
	"fmt"

	"platewise/internal/verification/models"
)

var labels = map[models.Status]string{
	models.StatusApproved:    "Verified",
	models.StatusPending:     "Verification pending",
	models.StatusRejected:    "Not verified",
	models.StatusNotApplied:  "Not verified",
	models.StatusError:       "Verification unavailable",
	models.StatusNotLoggedIn: "Sign in to see verification",
}

// Label is the short badge text for a result.
func Label(result models.Result) string {
	if label, ok := labels[result.Status]; ok {
		return label
	}
	return labels[models.StatusError]
}

// Panel renders the descriptive status panel, one line per fact.
func Panel(result models.Result) []string {
	lines := []string{Label(result)}

	switch result.Status {
	case models.StatusApproved:
		if result.Evidence != nil && result.Evidence.BusinessName != "" {
			lines = append(lines, fmt.Sprintf("Business: %s", result.Evidence.BusinessName))
		}
		if result.Evidence != nil && result.Evidence.VerifiedSince != "" {
			lines = append(lines, fmt.Sprintf("Verified since %s", result.Evidence.VerifiedSince))
		}
		if result.Source == models.SourceManualOverride {
			lines = append(lines, "Set by manual override")
		}
	case models.StatusPending:
		lines = append(lines, "Your application is being reviewed.")
	case models.StatusRejected:
		lines = append(lines, "Your application was not approved.")
	case models.StatusNotApplied:
		lines = append(lines, "Apply for verification from your profile page.")
	case models.StatusError:
		lines = append(lines, "Could not reach the verification service. Try again shortly.")
	case models.StatusNotLoggedIn:
		lines = append(lines, "Log in to view your verification status.")
	}
	return lines
}
