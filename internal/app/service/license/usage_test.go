package license

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUsage(t *testing.T) {
	t.Run("records changed fields", func(t *testing.T) {
		lic := baseLicense()
		lic.ActualWorkspaces = 3
		lic.ActualUsers = 40

		changes := applyUsage(lic, &UsageUpdate{
			ActualWorkspaces: intPtr(4),
			ActualUsers:      intPtr(40), // unchanged
		})
		require.Len(t, changes, 1)
		assert.Equal(t, "actual_workspaces", changes[0].Field)
		assert.Equal(t, "3", changes[0].Old)
		assert.Equal(t, "4", changes[0].New)
		assert.Equal(t, 4, lic.ActualWorkspaces)
		assert.Equal(t, 40, lic.ActualUsers)
	})

	t.Run("over-use is recorded, not rejected", func(t *testing.T) {
		lic := baseLicense() // authorized: 5 workspaces, 100 users
		changes := applyUsage(lic, &UsageUpdate{
			ActualWorkspaces: intPtr(9),
			ActualUsers:      intPtr(250),
		})
		require.Len(t, changes, 2)
		assert.Equal(t, 9, lic.ActualWorkspaces)
		assert.Equal(t, 250, lic.ActualUsers)
	})

	t.Run("nil fields are left alone", func(t *testing.T) {
		lic := baseLicense()
		lic.ActualUsers = 12
		changes := applyUsage(lic, &UsageUpdate{})
		assert.Empty(t, changes)
		assert.Equal(t, 12, lic.ActualUsers)
	})
}
