package license

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/types"
)

func TestCreateInTx_Validation(t *testing.T) {
	s := &Service{}
	now := time.Now()

	tests := []struct {
		name string
		req  *CreateLicenseRequest
	}{
		{"missing product and type", &CreateLicenseRequest{
			StartDate:  now,
			ExpiryDate: now.AddDate(1, 0, 0),
		}},
		{"zero start and expiry", &CreateLicenseRequest{
			ProductName: "platform",
			LicenseType: "ENTERPRISE",
		}},
		{"zero expiry only", &CreateLicenseRequest{
			ProductName: "platform",
			LicenseType: "ENTERPRISE",
			StartDate:   now,
		}},
		{"expiry precedes start", &CreateLicenseRequest{
			ProductName: "platform",
			LicenseType: "ENTERPRISE",
			StartDate:   now,
			ExpiryDate:  now.AddDate(0, 0, -1),
		}},
		{"offline without cluster", &CreateLicenseRequest{
			ProductName:    "platform",
			LicenseType:    "ENTERPRISE",
			StartDate:      now,
			ExpiryDate:     now.AddDate(1, 0, 0),
			ActivationMode: types.ActivationModeOffline,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateInTx(context.Background(), nil, tt.req, "tester")
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}
