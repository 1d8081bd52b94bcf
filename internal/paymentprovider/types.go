// Package paymentprovider implements the PayTech client: checkout
// initialization and IPN (instant payment notification) verification.
package paymentprovider

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"github.com/saabal/saabal-api/internal/apperr"
)

// Event types delivered on the IPN endpoint.
const (
	EventSaleComplete = "sale_complete"
	EventSaleCanceled = "sale_canceled"
)

// InitPaymentRequest is the checkout creation request sent to PayTech.
type InitPaymentRequest struct {
	ItemName    string `json:"item_name"`
	ItemPrice   string `json:"item_price"`
	Currency    string `json:"currency"`
	RefCommand  string `json:"ref_command"`
	CommandName string `json:"command_name"`
	Env         string `json:"env"`
	IPNURL      string `json:"ipn_url"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
	CustomField string `json:"custom_field"`
}

// InitPaymentResponse is the checkout creation reply.
type InitPaymentResponse struct {
	Success     int    `json:"success"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CustomField is the opaque pass-through metadata embedded at checkout
// time and returned verbatim inside IPN events.
type CustomField struct {
	UserID  int64 `json:"user_id"`
	OfferID int64 `json:"offre_id"`
}

// rawIPN is the loosely-typed wire shape of an IPN delivery. It is
// converted into a strict IPNEvent before anything else looks at it.
type rawIPN struct {
	TypeEvent       string `json:"type_event"`
	RefCommand      string `json:"ref_command"`
	ItemPrice       string `json:"item_price"`
	PaymentMethod   string `json:"payment_method"`
	CustomField     string `json:"custom_field"`
	APIKeySHA256    string `json:"api_key_sha256"`
	APISecretSHA256 string `json:"api_secret_sha256"`
}

// IPNEvent is the validated, typed form of an IPN delivery.
type IPNEvent struct {
	Type          string
	RefCommand    string
	PaymentMethod string
	UserID        int64
	OfferID       int64
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ParseIPN validates the raw IPN body and converts it into an IPNEvent.
// The event is authenticated by comparing the SHA-256 hex digests of the
// configured API key and secret against the hashes carried in the
// payload; a mismatch fails with Forbidden and a malformed body or
// metadata with InvalidRequest. Nothing loosely typed escapes this
// function.
func ParseIPN(body []byte, apiKey, apiSecret string) (*IPNEvent, error) {
	var raw rawIPN
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Wrap(apperr.InvalidRequest, "malformed IPN payload", err)
	}
	if raw.TypeEvent == "" {
		return nil, apperr.New(apperr.InvalidRequest, "missing type_event")
	}

	keyOK := subtle.ConstantTimeCompare([]byte(sha256hex(apiKey)), []byte(raw.APIKeySHA256)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(sha256hex(apiSecret)), []byte(raw.APISecretSHA256)) == 1
	if !keyOK || !secretOK {
		return nil, apperr.New(apperr.Forbidden, "invalid IPN signature")
	}

	if raw.CustomField == "" {
		return nil, apperr.New(apperr.InvalidRequest, "missing custom_field metadata")
	}
	var custom CustomField
	if err := json.Unmarshal([]byte(raw.CustomField), &custom); err != nil {
		return nil, apperr.Wrap(apperr.InvalidRequest, "malformed custom_field metadata", err)
	}
	if custom.UserID == 0 || custom.OfferID == 0 {
		return nil, apperr.New(apperr.InvalidRequest, "incomplete custom_field metadata")
	}

	return &IPNEvent{
		Type:          raw.TypeEvent,
		RefCommand:    raw.RefCommand,
		PaymentMethod: raw.PaymentMethod,
		UserID:        custom.UserID,
		OfferID:       custom.OfferID,
	}, nil
}
