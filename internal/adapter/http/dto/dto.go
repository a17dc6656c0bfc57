package dto

import (
	"time"

	"paylock-gateway/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID   string `json:"account_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateEscrowRequest is the request body for escrow creation. The
// authenticated caller becomes the buyer.
type CreateEscrowRequest struct {
	MerchantID   string `json:"merchant_id" binding:"required,uuid"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Currency     string `json:"currency" binding:"required,currency_code"`
	Description  string `json:"description" binding:"max=500"`
	DeadlineDays int32  `json:"deadline_days" binding:"gte=0,lte=365"` // 0 = protocol default
}

// DisputeRequest is the request body for raising a dispute.
type DisputeRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ResolveRequest is the request body for arbitrator resolution.
type ResolveRequest struct {
	MerchantPercent *int `json:"merchant_percent" binding:"required,gte=0,lte=100"`
}

// EscrowResponse is the response body for escrow state.
type EscrowResponse struct {
	ID            string `json:"id"`
	MerchantID    string `json:"merchant_id"`
	BuyerID       string `json:"buyer_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	State         string `json:"state"`
	Deadline      string `json:"deadline"`
	Description   string `json:"description,omitempty"`
	DisputeReason string `json:"dispute_reason,omitempty"`
	Winner        string `json:"winner,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// EscrowStatusResponse is the response body for a status-only query.
type EscrowStatusResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// CreatePaymentLinkRequest is the request body for payment link creation.
type CreatePaymentLinkRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,currency_code"`
	Metadata string `json:"metadata" binding:"max=500"`
}

// PaymentLinkResponse is the response body for payment link state.
type PaymentLinkResponse struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
	Metadata   string `json:"metadata,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// IssueReceiptRequest is the request body for receipt issuance.
type IssueReceiptRequest struct {
	EntityRef string `json:"entity_ref" binding:"required,len=64,hexadecimal"`
}

// ReceiptResponse is the response body for an issued receipt.
type ReceiptResponse struct {
	ID          string `json:"id"`
	EntityRef   string `json:"entity_ref"`
	RequesterID string `json:"requester_id"`
	IssuedAt    string `json:"issued_at"`
}

// VerifyReceiptResponse reports whether a receipt id was ever issued.
type VerifyReceiptResponse struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
}

// TopupRequest is the request body for account funding.
type TopupRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,currency_code"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// SetFeeRateRequest is the request body for the fee rate mutator.
type SetFeeRateRequest struct {
	RateBps *int32 `json:"rate_bps" binding:"required,gte=0,lte=500"`
}

// SetAccountRequest carries the target account for role mutators.
type SetAccountRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// SetEscrowDurationRequest is the request body for the default duration mutator.
type SetEscrowDurationRequest struct {
	Days int32 `json:"days" binding:"required,gte=1,lte=365"`
}

// SetCurrencyRequest is the request body for the currency allow-list mutator.
type SetCurrencyRequest struct {
	Code    string `json:"code" binding:"required,currency_code"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// SettingsResponse is the response body for protocol settings.
type SettingsResponse struct {
	OwnerID           string `json:"owner_id"`
	ArbitratorID      string `json:"arbitrator_id"`
	FeeCollectorID    string `json:"fee_collector_id"`
	FeeRateBps        int32  `json:"fee_rate_bps"`
	DefaultEscrowDays int32  `json:"default_escrow_days"`
	UpdatedAt         string `json:"updated_at"`
}

// CurrencyResponse is one entry of the currency allow-list.
type CurrencyResponse struct {
	Code    string `json:"code"`
	Enabled bool   `json:"enabled"`
}

// FromSettings maps domain settings to the wire shape.
func FromSettings(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		OwnerID:           s.OwnerID.String(),
		ArbitratorID:      s.ArbitratorID.String(),
		FeeCollectorID:    s.FeeCollectorID.String(),
		FeeRateBps:        s.FeeRateBps,
		DefaultEscrowDays: s.DefaultEscrowDays,
		UpdatedAt:         s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
