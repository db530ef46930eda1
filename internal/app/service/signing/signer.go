package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/apperr"
	cfgpkg "github.com/opsfloor/licensehub/pkg/config"
	"github.com/opsfloor/licensehub/pkg/tool"
)

const dateLayout = "2006-01-02"

// OfflinePayload is the canonical content of an offline activation code.
// Fields are declared in alphabetical tag order so the serialized form is
// stable; reordering them changes every signature.
type OfflinePayload struct {
	AuthorizedUsers      int    `json:"authorized_users"`
	AuthorizedWorkspaces int    `json:"authorized_workspaces"`
	ClusterID            string `json:"cluster_id"`
	CustomerID           int64  `json:"customer_id"`
	ExpiryDate           string `json:"expiry_date"`
	GeneratedAt          string `json:"generated_at"`
	LicenseID            string `json:"license_id"`
	LicenseType          string `json:"license_type"`
	Nonce                string `json:"nonce"`
	ProductName          string `json:"product_name"`
	StartDate            string `json:"start_date"`
}

// Signer produces and verifies offline activation codes with an HMAC-SHA256
// keyed by a shared secret. The secret is injected here, not read from any
// ambient global, so tests and tenants can carry their own.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func New(cfg *cfgpkg.Config) *Signer {
	return NewWithSecret(cfg.License.Secret)
}

func NewWithSecret(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// GenerateOfflineCode builds the canonical payload for the license bound to
// clusterID, signs it and returns base64(payload) + "." + base64(mac).
// The fresh nonce and issue timestamp make every code unique even for the
// same license and cluster.
func (s *Signer) GenerateOfflineCode(lic *models.License, clusterID string) (string, error) {
	if clusterID == "" {
		return "", fmt.Errorf("%w: cluster_id is required for offline activation", apperr.ErrValidation)
	}

	payload := OfflinePayload{
		AuthorizedUsers:      lic.AuthorizedUsers,
		AuthorizedWorkspaces: lic.AuthorizedWorkspaces,
		ClusterID:            clusterID,
		CustomerID:           lic.CustomerID,
		ExpiryDate:           lic.ExpiryDate.Format(dateLayout),
		GeneratedAt:          s.now().Format(time.RFC3339),
		LicenseID:            lic.LicenseID,
		LicenseType:          lic.LicenseType,
		Nonce:                tool.GenerateUUIDV7(),
		ProductName:          lic.ProductName,
		StartDate:            lic.StartDate.Format(dateLayout),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}

	mac := s.mac(raw)
	return base64.StdEncoding.EncodeToString(raw) + "." + base64.StdEncoding.EncodeToString(mac), nil
}

// VerifyOfflineCode checks a code against clusterID and the current clock.
// It fails closed: any malformed input, cluster mismatch, MAC mismatch or
// expired payload yields an ErrIntegrity error. The wrapped detail is for
// internal logs only; callers must not surface which check failed.
func (s *Signer) VerifyOfflineCode(code, clusterID string) (*OfflinePayload, error) {
	parts := strings.Split(code, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed activation code", apperr.ErrIntegrity)
	}

	raw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64", apperr.ErrIntegrity)
	}
	givenMAC, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not valid base64", apperr.ErrIntegrity)
	}

	var payload OfflinePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload is not decodable", apperr.ErrIntegrity)
	}

	if payload.ClusterID != clusterID {
		return nil, fmt.Errorf("%w: activation code is bound to a different cluster", apperr.ErrIntegrity)
	}

	if !hmac.Equal(s.mac(raw), givenMAC) {
		return nil, fmt.Errorf("%w: signature mismatch", apperr.ErrIntegrity)
	}

	expiry, err := time.Parse(dateLayout, payload.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expiry date is not decodable", apperr.ErrIntegrity)
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if expiry.Before(today) {
		return nil, fmt.Errorf("%w: license expired on %s", apperr.ErrIntegrity, payload.ExpiryDate)
	}

	return &payload, nil
}

// GenerateOnlineReference returns the reference string recorded for an
// online-mode activation. Online validation is delegated to the external
// licensing authority, so no cryptographic binding is needed here.
func (s *Signer) GenerateOnlineReference(lic *models.License) string {
	return fmt.Sprintf("LIC-ONLINE-%s-%d", lic.LicenseID, s.now().Unix())
}

func (s *Signer) mac(raw []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(raw)
	return h.Sum(nil)
}
