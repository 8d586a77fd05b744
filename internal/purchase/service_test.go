package purchase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merrymatch/membership-backend/internal/catalog"
	"github.com/merrymatch/membership-backend/internal/eligibility"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

type fakeChecker struct {
	result eligibility.Result
	err    error
	calls  int
}

func (f *fakeChecker) CheckEligibility(ctx context.Context, userID uuid.UUID, packageID int64) (eligibility.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeCatalog struct {
	pkg *catalog.PackageDTO
}

func (f fakeCatalog) Get(ctx context.Context, id int64) (*catalog.PackageDTO, error) {
	if f.pkg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}
	return f.pkg, nil
}

func goldPackage() *catalog.PackageDTO {
	price := "price_gold"
	return &catalog.PackageDTO{
		PackageID:     5,
		Name:          "Gold Plus",
		Price:         decimal.RequireFromString("149"),
		Currency:      "THB",
		Description:   "Everything in Gold",
		Features:      []string{"Unlimited likes"},
		StripePriceID: &price,
	}
}

func TestBegin_Rejected(t *testing.T) {
	checker := &fakeChecker{result: eligibility.Result{Purchasable: false, IsActive: true, Reason: eligibility.ReasonAlreadyActive}}
	svc, err := NewService(checker, fakeCatalog{pkg: goldPackage()})
	require.NoError(t, err)

	// confirming does not override a rejection
	d, err := svc.Begin(context.Background(), uuid.New(), 5, true)
	require.NoError(t, err)
	require.Equal(t, ActionRejected, d.Action)
	require.Equal(t, eligibility.ReasonAlreadyActive, d.Reason)
	require.True(t, d.IsActive)
	require.Nil(t, d.Checkout)
}

func TestBegin_ConfirmationThenRedirect(t *testing.T) {
	checker := &fakeChecker{result: eligibility.Result{Purchasable: true, RequiresConfirmation: true, IsActive: true, Reason: eligibility.ReasonReplaces}}
	svc, err := NewService(checker, fakeCatalog{pkg: goldPackage()})
	require.NoError(t, err)
	userID := uuid.New()

	d, err := svc.Begin(context.Background(), userID, 5, false)
	require.NoError(t, err)
	require.Equal(t, ActionConfirmationRequired, d.Action)
	require.Nil(t, d.Checkout)

	d, err = svc.Begin(context.Background(), userID, 5, true)
	require.NoError(t, err)
	require.Equal(t, ActionRedirect, d.Action)
	require.NotNil(t, d.Checkout)
	require.Equal(t, 2, checker.calls)
}

func TestBegin_DirectRedirect(t *testing.T) {
	checker := &fakeChecker{result: eligibility.Result{Purchasable: true, Reason: eligibility.ReasonPurchasable}}
	svc, err := NewService(checker, fakeCatalog{pkg: goldPackage()})
	require.NoError(t, err)

	d, err := svc.Begin(context.Background(), uuid.New(), 5, false)
	require.NoError(t, err)
	require.Equal(t, ActionRedirect, d.Action)
	require.False(t, d.IsActive)

	c := d.Checkout
	require.Equal(t, int64(5), c.PackageID)
	require.Equal(t, "149.00", c.Price)
	require.Equal(t, "THB", c.Currency)
	require.Equal(t, "price_gold", *c.StripePriceID)
	require.Equal(t, "/payment?packages_id=5&name_package=Gold+Plus&price=149.00", c.RedirectPath)
}

func TestBegin_PropagatesErrors(t *testing.T) {
	checker := &fakeChecker{err: pkgerrors.New(pkgerrors.CodeStore, "timeout")}
	svc, err := NewService(checker, fakeCatalog{pkg: goldPackage()})
	require.NoError(t, err)

	_, err = svc.Begin(context.Background(), uuid.New(), 5, false)
	require.Equal(t, pkgerrors.CodeStore, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, fakeCatalog{})
	require.Error(t, err)
	_, err = NewService(&fakeChecker{}, nil)
	require.Error(t, err)
}
