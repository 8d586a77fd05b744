package eligibility

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/internal/catalog"
	"github.com/merrymatch/membership-backend/internal/ledger"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

const (
	ReasonAlreadyActive = "You cannot purchase the same package while it is active."
	ReasonPurchasable   = "You can purchase this package."
	ReasonReplaces      = "You can purchase this package. Your current active package will be cancelled."
)

// Result is the purchase decision for one user and package.
type Result struct {
	Purchasable          bool   `json:"purchasable"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	IsActive             bool   `json:"is_active"`
	Reason               string `json:"message"`
}

type subscriptionReader interface {
	ActiveSubscriptions(ctx context.Context, userID uuid.UUID) ([]ledger.ActiveSubscription, error)
}

type userDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type packageCatalog interface {
	Get(ctx context.Context, id int64) (*catalog.PackageDTO, error)
}

type ServiceParams struct {
	Ledger       subscriptionReader
	Users        userDirectory
	Catalog      packageCatalog
	QueryTimeout time.Duration
}

type Service struct {
	ledger  subscriptionReader
	users   userDirectory
	catalog packageCatalog
	timeout time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user directory required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog required")
	}
	return &Service{
		ledger:  params.Ledger,
		users:   params.Users,
		catalog: params.Catalog,
		timeout: params.QueryTimeout,
	}, nil
}

// CheckEligibility decides whether userID may buy packageID. The decision is
// taken over a single read of the user's Active subscriptions. It never
// mutates the ledger.
func (s *Service) CheckEligibility(ctx context.Context, userID uuid.UUID, packageID int64) (Result, error) {
	if userID == uuid.Nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "User ID and Package ID are required.").
			WithDetails(map[string]any{"field": "user_id"})
	}
	if packageID <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "User ID and Package ID are required.").
			WithDetails(map[string]any{"field": "package_id"})
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "lookup user")
	}
	if !exists {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown user").
			WithDetails(map[string]any{"field": "user_id"})
	}

	if _, err := s.catalog.Get(ctx, packageID); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown package").
				WithDetails(map[string]any{"field": "package_id"})
		}
		return Result{}, err
	}

	active, err := s.ledger.ActiveSubscriptions(ctx, userID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return Result{}, err
		}
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list active subscriptions")
	}

	return Decide(active, packageID), nil
}

// Decide applies the eligibility rules to a snapshot of Active subscriptions.
func Decide(active []ledger.ActiveSubscription, packageID int64) Result {
	for _, sub := range active {
		if sub.PackageID == packageID {
			return Result{Purchasable: false, IsActive: true, Reason: ReasonAlreadyActive}
		}
	}
	if len(active) > 0 {
		return Result{Purchasable: true, RequiresConfirmation: true, IsActive: true, Reason: ReasonReplaces}
	}
	return Result{Purchasable: true, Reason: ReasonPurchasable}
}
