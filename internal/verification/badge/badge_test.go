package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"platewise/internal/verification/models"
)

func TestLabel(t *testing.T) {
	cases := []struct {
		name   string
		result models.Result
		want   string
	}{
		{"approved", models.Result{Status: models.StatusApproved, IsVerified: true}, "Verified"},
		{"pending", models.Result{Status: models.StatusPending}, "Verification pending"},
		{"rejected", models.Result{Status: models.StatusRejected}, "Not verified"},
		{"not applied", models.Result{Status: models.StatusNotApplied}, "Not verified"},
		{"error", models.Result{Status: models.StatusError}, "Verification unavailable"},
		{"not logged in", models.Result{Status: models.StatusNotLoggedIn}, "Sign in to see verification"},
		{"unknown status degrades to error", models.Result{Status: "???"}, "Verification unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Label(tc.result))
		})
	}
}

func TestPanelApprovedIncludesEvidence(t *testing.T) {
	lines := Panel(models.Result{
		Status:     models.StatusApproved,
		IsVerified: true,
		Source:     models.SourceProfileFlag,
		Evidence: &models.Evidence{
			BusinessName:  "Ada's Bakery",
			VerifiedSince: "2024-01-15",
		},
	})

	assert.Equal(t, []string{
		"Verified",
		"Business: Ada's Bakery",
		"Verified since 2024-01-15",
	}, lines)
}

func TestPanelOverrideIsCalledOut(t *testing.T) {
	lines := Panel(models.Result{
		Status:     models.StatusApproved,
		IsVerified: true,
		Source:     models.SourceManualOverride,
	})

	assert.Contains(t, lines, "Set by manual override")
}

func TestPanelNonVerifiedStatuses(t *testing.T) {
	lines := Panel(models.Result{Status: models.StatusPending})
	assert.Equal(t, "Verification pending", lines[0])
	assert.Len(t, lines, 2)

	lines = Panel(models.Result{Status: models.StatusError})
	assert.Contains(t, lines[1], "Try again")
}
