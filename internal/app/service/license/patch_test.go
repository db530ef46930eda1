package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/types"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func baseLicense() *models.License {
	return &models.License{
		LicenseID:            "ENTERPRISE-20250101-ABCDEF",
		ProductName:          "platform",
		ProductVersion:       "1.0",
		LicenseType:          "ENTERPRISE",
		StartDate:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorizedWorkspaces: 5,
		AuthorizedUsers:      100,
		LicenseStatus:        types.LicenseStatusActive,
	}
}

func TestApplyPatch_AuditsOnlyChangedFields(t *testing.T) {
	lic := baseLicense()
	patch := &LicensePatch{
		ProductName:          strPtr("platform"), // unchanged
		ProductVersion:       strPtr("2.0"),
		AuthorizedWorkspaces: intPtr(8),
	}

	changes := applyPatch(lic, patch)
	require.Len(t, changes, 2)

	byField := map[string][2]string{}
	for _, c := range changes {
		byField[c.Field] = [2]string{c.Old, c.New}
	}
	assert.Equal(t, [2]string{"1.0", "2.0"}, byField["product_version"])
	assert.Equal(t, [2]string{"5", "8"}, byField["authorized_workspaces"])
	assert.Equal(t, "2.0", lic.ProductVersion)
	assert.Equal(t, 8, lic.AuthorizedWorkspaces)
}

func TestApplyPatch_NilPatchIsNoop(t *testing.T) {
	lic := baseLicense()
	changes := applyPatch(lic, &LicensePatch{})
	assert.Empty(t, changes)
}

func TestApplyPatch_AuditReasonsCarryFieldName(t *testing.T) {
	lic := baseLicense()
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	changes := applyPatch(lic, &LicensePatch{ExpiryDate: &exp})
	require.Len(t, changes, 1)
	assert.Equal(t, "License update: expiry_date", changes[0].Reason)
	assert.Equal(t, "2026-01-01", changes[0].Old)
	assert.Equal(t, "2027-01-01", changes[0].New)
}

func TestCorrectStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active past expiry flips to expired", func(t *testing.T) {
		lic := baseLicense()
		lic.ExpiryDate = now.AddDate(0, 0, -1)
		c, flipped := correctStatus(lic, now, "License update")
		require.True(t, flipped)
		assert.Equal(t, types.LicenseStatusExpired, lic.LicenseStatus)
		assert.Equal(t, "License update: license_status", c.Reason)
		assert.Equal(t, "ACTIVE", c.Old)
		assert.Equal(t, "EXPIRED", c.New)
	})

	t.Run("expired with future expiry reactivates", func(t *testing.T) {
		lic := baseLicense()
		lic.LicenseStatus = types.LicenseStatusExpired
		lic.ExpiryDate = now.AddDate(1, 0, 0)
		_, flipped := correctStatus(lic, now, "License renewal")
		require.True(t, flipped)
		assert.Equal(t, types.LicenseStatusActive, lic.LicenseStatus)
	})

	t.Run("terminated never flips", func(t *testing.T) {
		lic := baseLicense()
		lic.LicenseStatus = types.LicenseStatusTerminated
		lic.ExpiryDate = now.AddDate(1, 0, 0)
		_, flipped := correctStatus(lic, now, "License update")
		assert.False(t, flipped)
	})

	t.Run("no change when consistent", func(t *testing.T) {
		lic := baseLicense()
		lic.ExpiryDate = now.AddDate(1, 0, 0)
		_, flipped := correctStatus(lic, now, "License update")
		assert.False(t, flipped)
	})
}

func TestGenerateLicenseID_Format(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	id := GenerateLicenseID("ENTERPRISE", now)
	require.Regexp(t, `^ENTERPRISE-20250610-[0-9A-F]{6}$`, id)

	other := GenerateLicenseID("ENTERPRISE", now)
	assert.NotEqual(t, id, other)
}
