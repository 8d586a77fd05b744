package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merrymatch/membership-backend/internal/repo"
	"github.com/merrymatch/membership-backend/pkg/db/models"
	"github.com/merrymatch/membership-backend/pkg/enums"
)

// ActiveSubscription is an Active subscription joined with its paying user.
type ActiveSubscription struct {
	SubscriptionID uuid.UUID `gorm:"column:subscription_id"`
	PaymentID      uuid.UUID `gorm:"column:payment_id"`
	PackageID      int64     `gorm:"column:package_id"`
	StartDate      time.Time `gorm:"column:subscription_start_date"`
}

// Repository manages persistence for payments, subscriptions and currencies.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockUser(ctx context.Context, userID uuid.UUID) (bool, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]ActiveSubscription, error)
	FindPaymentByGatewayID(ctx context.Context, gatewayTransactionID string) (*models.Payment, error)
	FindCurrencyByCode(ctx context.Context, code string) (*models.Currency, error)
	PackageExists(ctx context.Context, packageID int64) (bool, error)
	CancelActiveForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
}

type repository struct {
	repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

// LockUser takes a row lock on the user for the rest of the transaction.
// It reports false when the user does not exist.
func (r *repository) LockUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var user models.User
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]ActiveSubscription, error) {
	var rows []ActiveSubscription
	if err := r.DB(ctx).
		Table("subscriptions AS s").
		Select("s.subscription_id, s.payment_id, s.package_id, s.subscription_start_date").
		Joins("JOIN payments AS p ON p.payment_id = s.payment_id").
		Where("p.user_id = ? AND s.subscription_status = ?", userID, enums.SubscriptionStatusActive).
		Order("s.subscription_start_date DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindPaymentByGatewayID returns nil when no payment carries the id.
func (r *repository) FindPaymentByGatewayID(ctx context.Context, gatewayTransactionID string) (*models.Payment, error) {
	var payments []models.Payment
	if err := r.DB(ctx).
		Where("gateway_transaction_id = ?", gatewayTransactionID).
		Limit(1).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

// FindCurrencyByCode returns nil when the code is not configured.
func (r *repository) FindCurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	var currency models.Currency
	err := r.DB(ctx).
		Where("currency_code = ?", code).
		Take(&currency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *repository) PackageExists(ctx context.Context, packageID int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.Package{}).
		Where("package_id = ?", packageID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CancelActiveForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	userPayments := r.DB(nil).Model(&models.Payment{}).
		Select("payment_id").
		Where("user_id = ?", userID)

	res := r.DB(ctx).
		Model(&models.Subscription{}).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Where("payment_id IN (?)", userPayments).
		Updates(map[string]any{
			"subscription_status":   enums.SubscriptionStatusCancelled,
			"subscription_end_date": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.DB(ctx).Create(sub).Error
}
