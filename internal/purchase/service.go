package purchase

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/internal/catalog"
	"github.com/merrymatch/membership-backend/internal/eligibility"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

// PaymentPagePath is the page that starts the provider checkout.
const PaymentPagePath = "/payment"

// Action tells the caller what to do next.
type Action string

const (
	ActionRejected             Action = "rejected"
	ActionConfirmationRequired Action = "confirmation_required"
	ActionRedirect             Action = "redirect"
)

// Checkout carries what the payment page needs to charge for a package.
type Checkout struct {
	PackageID     int64    `json:"package_id"`
	Name          string   `json:"name_package"`
	Price         string   `json:"price"`
	Currency      string   `json:"currency"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	StripePriceID *string  `json:"stripe_price_id,omitempty"`
	RedirectPath  string   `json:"redirect_path"`
}

// Decision is the outcome of one purchase attempt.
type Decision struct {
	Action   Action    `json:"action"`
	Reason   string    `json:"message,omitempty"`
	IsActive bool      `json:"is_active"`
	Checkout *Checkout `json:"checkout,omitempty"`
}

type eligibilityChecker interface {
	CheckEligibility(ctx context.Context, userID uuid.UUID, packageID int64) (eligibility.Result, error)
}

type packageCatalog interface {
	Get(ctx context.Context, id int64) (*catalog.PackageDTO, error)
}

type Service struct {
	eligibility eligibilityChecker
	catalog     packageCatalog
}

func NewService(checker eligibilityChecker, cat packageCatalog) (*Service, error) {
	if checker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "eligibility checker required")
	}
	if cat == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog required")
	}
	return &Service{eligibility: checker, catalog: cat}, nil
}

// Begin runs the purchase flow: eligibility first, then confirmation when
// the user already holds another package, then the payment hand-off.
// confirmed is the user's answer to a previous confirmation_required.
func (s *Service) Begin(ctx context.Context, userID uuid.UUID, packageID int64, confirmed bool) (Decision, error) {
	res, err := s.eligibility.CheckEligibility(ctx, userID, packageID)
	if err != nil {
		return Decision{}, err
	}

	if !res.Purchasable {
		return Decision{Action: ActionRejected, Reason: res.Reason, IsActive: res.IsActive}, nil
	}
	if res.RequiresConfirmation && !confirmed {
		return Decision{Action: ActionConfirmationRequired, Reason: res.Reason, IsActive: res.IsActive}, nil
	}

	pkg, err := s.catalog.Get(ctx, packageID)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Action:   ActionRedirect,
		Reason:   res.Reason,
		IsActive: res.IsActive,
		Checkout: newCheckout(pkg),
	}, nil
}

func newCheckout(pkg *catalog.PackageDTO) *Checkout {
	price := pkg.FormattedPrice()

	// parameter order matches what the payment page links expect
	query := "packages_id=" + strconv.FormatInt(pkg.PackageID, 10) +
		"&name_package=" + url.QueryEscape(pkg.Name) +
		"&price=" + url.QueryEscape(price)

	return &Checkout{
		PackageID:     pkg.PackageID,
		Name:          pkg.Name,
		Price:         price,
		Currency:      pkg.Currency,
		Description:   pkg.Description,
		Features:      pkg.Features,
		StripePriceID: pkg.StripePriceID,
		RedirectPath:  PaymentPagePath + "?" + query,
	}
}
