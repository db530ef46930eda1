package purchase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/types"
)

func testLicense() *models.License {
	return &models.License{
		LicenseID:            "ENTERPRISE-20250101-ABCDEF",
		ProductName:          "platform",
		LicenseType:          "ENTERPRISE",
		StartDate:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorizedWorkspaces: 5,
		AuthorizedUsers:      100,
		LicenseStatus:        types.LicenseStatusActive,
	}
}

func TestApplyPurchaseEffect_Renewal(t *testing.T) {
	lic := testLicense()
	lic.LicenseStatus = types.LicenseStatusExpired
	newExpiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := &models.PurchaseRecord{
		PurchaseType:        types.PurchaseTypeRenewal,
		NewExpiryDate:       &newExpiry,
		WorkspacesPurchased: 10,
		UsersPurchased:      200,
	}
	changes, err := applyPurchaseEffect(lic, rec)
	require.NoError(t, err)

	assert.Equal(t, newExpiry, lic.ExpiryDate)
	require.NotNil(t, rec.PreviousExpiryDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *rec.PreviousExpiryDate)

	// renewal overwrites capacity, it does not add
	assert.Equal(t, 10, lic.AuthorizedWorkspaces)
	assert.Equal(t, 200, lic.AuthorizedUsers)

	// a renewal always reactivates
	assert.Equal(t, types.LicenseStatusActive, lic.LicenseStatus)

	reasons := map[string]bool{}
	for _, c := range changes {
		reasons[c.Reason] = true
	}
	assert.True(t, reasons["License renewal: expiry_date"])
	assert.True(t, reasons["License renewal: license_status"])
}

func TestApplyPurchaseEffect_RenewalWithoutCapacityKeepsEntitlement(t *testing.T) {
	lic := testLicense()
	newExpiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := applyPurchaseEffect(lic, &models.PurchaseRecord{
		PurchaseType:  types.PurchaseTypeRenewal,
		NewExpiryDate: &newExpiry,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, lic.AuthorizedWorkspaces)
	assert.Equal(t, 100, lic.AuthorizedUsers)
}

func TestApplyPurchaseEffect_RenewalRequiresExpiry(t *testing.T) {
	lic := testLicense()
	_, err := applyPurchaseEffect(lic, &models.PurchaseRecord{PurchaseType: types.PurchaseTypeRenewal})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), lic.ExpiryDate)
}

func TestApplyPurchaseEffect_ExpansionIsCumulative(t *testing.T) {
	lic := testLicense()
	sizes := []int{3, 2, 7}
	for _, w := range sizes {
		_, err := applyPurchaseEffect(lic, &models.PurchaseRecord{
			PurchaseType:        types.PurchaseTypeExpansion,
			WorkspacesPurchased: w,
			UsersPurchased:      w * 10,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 5+3+2+7, lic.AuthorizedWorkspaces)
	assert.Equal(t, 100+30+20+70, lic.AuthorizedUsers)
	// expiry untouched
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), lic.ExpiryDate)
}

func TestApplyPurchaseEffect_NewAndUpgradeAreRecordOnly(t *testing.T) {
	for _, pt := range []types.PurchaseType{types.PurchaseTypeNew, types.PurchaseTypeUpgrade} {
		lic := testLicense()
		changes, err := applyPurchaseEffect(lic, &models.PurchaseRecord{
			PurchaseType:        pt,
			WorkspacesPurchased: 50,
			UsersPurchased:      500,
		})
		require.NoError(t, err)
		assert.Empty(t, changes)
		assert.Equal(t, 5, lic.AuthorizedWorkspaces)
		assert.Equal(t, 100, lic.AuthorizedUsers)
	}
}

func TestApplyReversal_Expansion(t *testing.T) {
	lic := testLicense()
	lic.AuthorizedWorkspaces = 8
	lic.AuthorizedUsers = 130

	changes, note := applyReversal(lic, &models.PurchaseRecord{
		PurchaseID:          7,
		PurchaseType:        types.PurchaseTypeExpansion,
		WorkspacesPurchased: 3,
		UsersPurchased:      30,
	})
	assert.Empty(t, note)
	assert.Len(t, changes, 2)
	assert.Equal(t, 5, lic.AuthorizedWorkspaces)
	assert.Equal(t, 100, lic.AuthorizedUsers)
}

func TestApplyReversal_ExpansionNeverGoesNegative(t *testing.T) {
	lic := testLicense()
	lic.AuthorizedWorkspaces = 2

	applyReversal(lic, &models.PurchaseRecord{
		PurchaseType:        types.PurchaseTypeExpansion,
		WorkspacesPurchased: 10,
	})
	assert.Equal(t, 0, lic.AuthorizedWorkspaces)
}

func TestApplyReversal_RenewalWithSnapshot(t *testing.T) {
	lic := testLicense()
	lic.ExpiryDate = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	changes, note := applyReversal(lic, &models.PurchaseRecord{
		PurchaseType:       types.PurchaseTypeRenewal,
		PreviousExpiryDate: &prev,
	})
	assert.Empty(t, note)
	require.Len(t, changes, 1)
	assert.Equal(t, "expiry_date", changes[0].Field)
	assert.Equal(t, prev, lic.ExpiryDate)
}

func TestApplyReversal_RenewalWithoutSnapshotFlagsManualReview(t *testing.T) {
	lic := testLicense()
	lic.Notes = "existing note"
	lic.ExpiryDate = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	changes, note := applyReversal(lic, &models.PurchaseRecord{
		PurchaseID:   12,
		PurchaseType: types.PurchaseTypeRenewal,
	})
	assert.NotEmpty(t, note)
	require.Len(t, changes, 1)
	assert.Equal(t, "notes", changes[0].Field)
	// expiry is left alone when the prior value is unknown
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), lic.ExpiryDate)
	assert.Contains(t, lic.Notes, "existing note")
	assert.Contains(t, lic.Notes, "manual review")
	assert.Contains(t, lic.Notes, "#12")
}

func TestFrozen(t *testing.T) {
	cases := []struct {
		status types.PaymentStatus
		frozen bool
	}{
		{types.PaymentStatusPending, false},
		{types.PaymentStatusPaid, true},
		{types.PaymentStatusRefunded, false},
		{types.PaymentStatusCancelled, false},
		{types.PaymentStatusReversed, true},
	}
	for _, c := range cases {
		rec := &models.PurchaseRecord{PaymentStatus: c.status}
		assert.Equal(t, c.frozen, rec.Frozen(), string(c.status))
	}
}
