package service

import (
	"fmt"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// EscrowOp names a state-mutating escrow operation for authorization.
type EscrowOp string

const (
	OpFundEscrow     EscrowOp = "fundEscrow"
	OpCompleteEscrow EscrowOp = "completeEscrow"
	OpRefundEscrow   EscrowOp = "refundEscrow"
	OpRaiseDispute   EscrowOp = "raiseDispute"
	OpResolveDispute EscrowOp = "resolveDispute"
	OpClaimExpired   EscrowOp = "claimExpiredEscrow"
)

// AuthorizeEscrow decides whether caller may perform op on the escrow.
// Role logic lives here, separate from transport and token handling, so the
// rules are testable as a plain (operation, caller, entity) table.
func AuthorizeEscrow(op EscrowOp, caller uuid.UUID, e *domain.Escrow, arbitrator uuid.UUID) error {
	switch op {
	case OpFundEscrow, OpCompleteEscrow, OpClaimExpired:
		if caller != e.BuyerID {
			return apperror.ErrUnauthorized(fmt.Sprintf("only the buyer may call %s", op))
		}
	case OpRefundEscrow:
		if caller != e.MerchantID {
			return apperror.ErrUnauthorized(fmt.Sprintf("only the merchant may call %s", op))
		}
	case OpRaiseDispute:
		if caller != e.BuyerID && caller != e.MerchantID {
			return apperror.ErrUnauthorized("only the buyer or merchant may raise a dispute")
		}
	case OpResolveDispute:
		if caller != arbitrator {
			return apperror.ErrUnauthorized("only the arbitrator may resolve a dispute")
		}
	default:
		return apperror.ErrUnauthorized(fmt.Sprintf("unknown operation %s", op))
	}
	return nil
}

// RequireLinkMerchant checks that caller owns the payment link.
func RequireLinkMerchant(caller uuid.UUID, link *domain.PaymentLink) error {
	if caller != link.MerchantID {
		return apperror.ErrUnauthorized("only the merchant may deactivate a payment link")
	}
	return nil
}

// RequireOwner checks that caller is the protocol owner.
func RequireOwner(caller uuid.UUID, settings *domain.Settings) error {
	if caller != settings.OwnerID {
		return apperror.ErrUnauthorized("only the protocol owner may perform this operation")
	}
	return nil
}
