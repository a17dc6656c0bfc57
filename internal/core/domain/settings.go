package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fee and duration bounds.
const (
	MaxFeeRateBps     = 500 // Hard cap: 5%
	BpsDenominator    = 10000
	MinEscrowDays     = 1
	MaxEscrowDays     = 365
	DefaultEscrowDays = 14
)

// Settings holds the owner-mutable protocol parameters. A single row,
// read by every fund-moving operation inside its own transaction.
type Settings struct {
	OwnerID           uuid.UUID `json:"owner_id"`
	ArbitratorID      uuid.UUID `json:"arbitrator_id"`
	FeeCollectorID    uuid.UUID `json:"fee_collector_id"`
	FeeRateBps        int32     `json:"fee_rate_bps"`
	DefaultEscrowDays int32     `json:"default_escrow_days"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PlatformFee computes floor(amount * rateBps / 10000).
func PlatformFee(amount int64, rateBps int32) int64 {
	return amount * int64(rateBps) / BpsDenominator
}

// ValidateFeeRate enforces the 500 bps hard cap.
func ValidateFeeRate(rateBps int32) error {
	if rateBps < 0 || rateBps > MaxFeeRateBps {
		return fmt.Errorf("fee rate must be between 0 and %d bps, got %d", MaxFeeRateBps, rateBps)
	}
	return nil
}

// ValidateEscrowDays enforces the 1..365 day range for the default duration.
func ValidateEscrowDays(days int32) error {
	if days < MinEscrowDays || days > MaxEscrowDays {
		return fmt.Errorf("escrow duration must be between %d and %d days, got %d", MinEscrowDays, MaxEscrowDays, days)
	}
	return nil
}
