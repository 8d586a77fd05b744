package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/pkg/db"
	"github.com/merrymatch/membership-backend/pkg/db/models"
	"github.com/merrymatch/membership-backend/pkg/enums"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

const gatewayTransactionConstraint = "gateway_transaction_id"

var errDuplicatePayment = errors.New("payment already recorded")

// Service exposes the subscription ledger to the rest of the system.
type Service interface {
	ActiveSubscriptions(ctx context.Context, userID uuid.UUID) ([]ActiveSubscription, error)
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*RecordPaymentResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RecordPaymentInput describes a settled payment confirmed by the provider.
type RecordPaymentInput struct {
	UserID               uuid.UUID
	PackageID            int64
	CurrencyCode         string
	GatewayTransactionID string
	PaymentMethod        string
	PaymentDate          time.Time
}

// RecordPaymentResult reports what the ledger transition did.
type RecordPaymentResult struct {
	Duplicate      bool
	PaymentID      uuid.UUID
	SubscriptionID uuid.UUID
	Cancelled      int64
}

type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	QueryTimeout      time.Duration
	Clock             func() time.Time
}

type service struct {
	repo     Repository
	txRunner txRunner
	timeout  time.Duration
	now      func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		timeout:  params.QueryTimeout,
		now:      clock,
	}, nil
}

// ActiveSubscriptions returns every Active subscription of the user in a
// single read.
func (s *service) ActiveSubscriptions(ctx context.Context, userID uuid.UUID) ([]ActiveSubscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list active subscriptions")
	}
	return rows, nil
}

// RecordPayment applies a confirmed payment atomically: every Active
// subscription of the user is cancelled, then the payment and its new Active
// subscription are inserted. A gateway transaction id that is already
// recorded commits nothing and reports Duplicate.
func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*RecordPaymentResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.CurrencyCode))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &RecordPaymentResult{}
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.LockUser(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lock user")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}

		existing, err := repo.FindPaymentByGatewayID(ctx, input.GatewayTransactionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup payment")
		}
		if existing != nil {
			result.PaymentID = existing.ID
			return errDuplicatePayment
		}

		pkgFound, err := repo.PackageExists(ctx, input.PackageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup package")
		}
		if !pkgFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}

		currency, err := repo.FindCurrencyByCode(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup currency")
		}
		if currency == nil {
			return pkgerrors.New(pkgerrors.CodeUnknownCurrency, "currency "+code+" is not configured").
				WithDetails(map[string]any{"currency_code": code})
		}

		now := s.now()
		cancelled, err := repo.CancelActiveForUser(ctx, input.UserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "cancel active subscriptions")
		}

		payment := &models.Payment{
			ID:                   uuid.New(),
			UserID:               input.UserID,
			PackageID:            input.PackageID,
			CurrencyID:           currency.ID,
			GatewayTransactionID: input.GatewayTransactionID,
			PaymentMethod:        input.PaymentMethod,
			PaymentDate:          input.PaymentDate.UTC(),
			Status:               enums.PaymentStatusSuccess,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, gatewayTransactionConstraint) {
				return errDuplicatePayment
			}
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "insert payment")
		}

		sub := &models.Subscription{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			PackageID: input.PackageID,
			Status:    enums.SubscriptionStatusActive,
			StartDate: now,
		}
		if err := repo.CreateSubscription(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "insert subscription")
		}

		result.PaymentID = payment.ID
		result.SubscriptionID = sub.ID
		result.Cancelled = cancelled
		return nil
	})
	if errors.Is(err, errDuplicatePayment) {
		return &RecordPaymentResult{Duplicate: true, PaymentID: result.PaymentID}, nil
	}
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "ledger transaction")
	}
	return result, nil
}

func (s *service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (in RecordPaymentInput) validate() error {
	switch {
	case in.UserID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	case in.PackageID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "package id must be positive")
	case strings.TrimSpace(in.GatewayTransactionID) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway transaction id is required")
	case strings.TrimSpace(in.CurrencyCode) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "currency code is required")
	case strings.TrimSpace(in.PaymentMethod) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	case in.PaymentDate.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "payment date is required")
	}
	return nil
}
