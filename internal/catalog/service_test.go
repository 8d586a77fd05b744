package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/merrymatch/membership-backend/pkg/db/dbtest"
	"github.com/merrymatch/membership-backend/pkg/db/models"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

func TestServiceListOrdersByPosition(t *testing.T) {
	conn := dbtest.Open(t)
	premium := dbtest.CreatePackage(t, conn, "Premium", "149.00", 2)
	basic := dbtest.CreatePackage(t, conn, "Basic", "59.00", 1)

	svc, err := NewService(NewRepository(conn), time.Second)
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, basic.ID, list[0].PackageID)
	require.Equal(t, premium.ID, list[1].PackageID)
	require.Equal(t, "59.00", list[0].FormattedPrice())
	require.Equal(t, "THB", list[0].Currency)
	require.Equal(t, []string{"Unlimited likes", "See who likes you"}, list[0].Features)
}

func TestServiceGet(t *testing.T) {
	conn := dbtest.Open(t)
	basic := dbtest.CreatePackage(t, conn, "Basic", "59.00", 1)

	svc, err := NewService(NewRepository(conn), 0)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), basic.ID)
	require.NoError(t, err)
	require.Equal(t, "Basic", got.Name)

	_, err = svc.Get(context.Background(), basic.ID+100)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.Get(context.Background(), 0)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestPackageDTOJSON(t *testing.T) {
	dto := toDTO(models.Package{ID: 3, Name: "Gold", CurrencyCode: "THB"})
	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	require.JSONEq(t, `{"package_id":3,"name_package":"Gold","price":"0","currency":"THB","description":"","features":[],"position":0}`, string(raw))
}

type failingRepo struct{}

func (failingRepo) List(ctx context.Context) ([]models.Package, error) {
	return nil, errors.New("db down")
}

func (failingRepo) FindByID(ctx context.Context, id int64) (*models.Package, error) {
	return nil, errors.New("db down")
}

func TestServiceStoreErrors(t *testing.T) {
	svc, err := NewService(failingRepo{}, time.Second)
	require.NoError(t, err)

	_, err = svc.List(context.Background())
	require.Equal(t, pkgerrors.CodeStore, pkgerrors.CodeOf(err))

	_, err = svc.Get(context.Background(), 1)
	require.Equal(t, pkgerrors.CodeStore, pkgerrors.CodeOf(err))
}
