package license

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/opsfloor/licensehub/internal/app/service/audit"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	"github.com/opsfloor/licensehub/pkg/logctx"
)

const dateLayout = "2006-01-02"

// LicensePatch enumerates every mutable license field. Nil means "leave
// unchanged". Keeping the set explicit (instead of reflective name mapping)
// makes the audit labels checkable at compile time.
type LicensePatch struct {
	ProductName          *string    `json:"product_name"`
	ProductVersion       *string    `json:"product_version"`
	LicenseType          *string    `json:"license_type"`
	StartDate            *time.Time `json:"start_date"`
	ExpiryDate           *time.Time `json:"expiry_date"`
	AuthorizedWorkspaces *int       `json:"authorized_workspaces"`
	AuthorizedUsers      *int       `json:"authorized_users"`
	SalesRepID           *int64     `json:"sales_rep_id"`
	ResellerID           *int64     `json:"reseller_id"`
	Notes                *string    `json:"notes"`
}

type patchField struct {
	name  string
	apply func(*models.License, *LicensePatch) (old, new string, changed bool)
}

// patchFields is the exhaustive field-update table; each entry owns one
// column and its audit label.
var patchFields = []patchField{
	{"product_name", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.ProductName == nil || *p.ProductName == l.ProductName {
			return "", "", false
		}
		old := l.ProductName
		l.ProductName = *p.ProductName
		return old, l.ProductName, true
	}},
	{"product_version", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.ProductVersion == nil || *p.ProductVersion == l.ProductVersion {
			return "", "", false
		}
		old := l.ProductVersion
		l.ProductVersion = *p.ProductVersion
		return old, l.ProductVersion, true
	}},
	{"license_type", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.LicenseType == nil || *p.LicenseType == l.LicenseType {
			return "", "", false
		}
		old := l.LicenseType
		l.LicenseType = *p.LicenseType
		return old, l.LicenseType, true
	}},
	{"start_date", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.StartDate == nil || sameDate(*p.StartDate, l.StartDate) {
			return "", "", false
		}
		old := l.StartDate.Format(dateLayout)
		l.StartDate = *p.StartDate
		return old, l.StartDate.Format(dateLayout), true
	}},
	{"expiry_date", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.ExpiryDate == nil || sameDate(*p.ExpiryDate, l.ExpiryDate) {
			return "", "", false
		}
		old := l.ExpiryDate.Format(dateLayout)
		l.ExpiryDate = *p.ExpiryDate
		return old, l.ExpiryDate.Format(dateLayout), true
	}},
	{"authorized_workspaces", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.AuthorizedWorkspaces == nil || *p.AuthorizedWorkspaces == l.AuthorizedWorkspaces {
			return "", "", false
		}
		old := strconv.Itoa(l.AuthorizedWorkspaces)
		l.AuthorizedWorkspaces = *p.AuthorizedWorkspaces
		return old, strconv.Itoa(l.AuthorizedWorkspaces), true
	}},
	{"authorized_users", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.AuthorizedUsers == nil || *p.AuthorizedUsers == l.AuthorizedUsers {
			return "", "", false
		}
		old := strconv.Itoa(l.AuthorizedUsers)
		l.AuthorizedUsers = *p.AuthorizedUsers
		return old, strconv.Itoa(l.AuthorizedUsers), true
	}},
	{"sales_rep_id", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.SalesRepID == nil || sameInt64Ptr(p.SalesRepID, l.SalesRepID) {
			return "", "", false
		}
		old := int64PtrString(l.SalesRepID)
		l.SalesRepID = p.SalesRepID
		return old, int64PtrString(l.SalesRepID), true
	}},
	{"reseller_id", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.ResellerID == nil || sameInt64Ptr(p.ResellerID, l.ResellerID) {
			return "", "", false
		}
		old := int64PtrString(l.ResellerID)
		l.ResellerID = p.ResellerID
		return old, int64PtrString(l.ResellerID), true
	}},
	{"notes", func(l *models.License, p *LicensePatch) (string, string, bool) {
		if p.Notes == nil || *p.Notes == l.Notes {
			return "", "", false
		}
		old := l.Notes
		l.Notes = *p.Notes
		return old, l.Notes, true
	}},
}

// applyPatch mutates lic in place and returns one audit change per field
// whose value actually differed.
func applyPatch(lic *models.License, patch *LicensePatch) []audit.FieldChange {
	var changes []audit.FieldChange
	for _, f := range patchFields {
		if old, newV, changed := f.apply(lic, patch); changed {
			changes = append(changes, audit.FieldChange{
				Field:  f.name,
				Old:    old,
				New:    newV,
				Reason: fmt.Sprintf("License update: %s", f.name),
			})
		}
	}
	return changes
}

// correctStatus applies the lazy expiry correction after a mutation. It
// returns the audit change when the stored status flipped.
func correctStatus(lic *models.License, now time.Time, reasonPrefix string) (audit.FieldChange, bool) {
	effective := lic.EffectiveStatus(now)
	if effective == lic.LicenseStatus {
		return audit.FieldChange{}, false
	}
	old := lic.LicenseStatus
	lic.LicenseStatus = effective
	return audit.FieldChange{
		Field:  "license_status",
		Old:    string(old),
		New:    string(effective),
		Reason: fmt.Sprintf("%s: license_status", reasonPrefix),
	}, true
}

// Update applies a patch to a license and audits every changed field. A
// no-change patch touches nothing and returns the license as stored.
func (s *Service) Update(ctx context.Context, licenseID string, patch *LicensePatch, changedBy string) (*models.License, error) {
	var out *models.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lic, err := s.lockLicense(ctx, tx, licenseID)
		if err != nil {
			return err
		}

		changes := applyPatch(lic, patch)
		if lic.ExpiryDate.Before(lic.StartDate) {
			return fmt.Errorf("%w: expiry_date must not precede start_date", apperr.ErrValidation)
		}
		if len(changes) == 0 {
			out = lic
			return nil
		}

		if c, flipped := correctStatus(lic, time.Now(), "License update"); flipped {
			changes = append(changes, c)
		}

		if err := tx.WithContext(ctx).Save(lic).Error; err != nil {
			return fmt.Errorf("failed to update license: %w", err)
		}
		if err := s.audit.Record(ctx, tx, auditTable, licenseID, changedBy, changes); err != nil {
			return err
		}
		out = lic
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("license updated", "license_id", licenseID, "changed_by", changedBy)
	return out, nil
}

func sameDate(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func sameInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64PtrString(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
