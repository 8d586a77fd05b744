// Package dbtest opens isolated in-memory sqlite databases carrying the
// ledger schema for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/pkg/db/models"
	"github.com/merrymatch/membership-backend/pkg/enums"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		created_at DATETIME
	)`,
	`CREATE TABLE currencies (
		currency_id INTEGER PRIMARY KEY AUTOINCREMENT,
		currency_code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE packages (
		package_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_package TEXT NOT NULL,
		icon_url TEXT,
		price NUMERIC NOT NULL,
		currency_code TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		features TEXT NOT NULL DEFAULT '{}',
		stripe_price_id TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE payments (
		payment_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		package_id INTEGER NOT NULL REFERENCES packages(package_id),
		currency_id INTEGER NOT NULL REFERENCES currencies(currency_id),
		gateway_transaction_id TEXT NOT NULL UNIQUE,
		payment_method TEXT NOT NULL,
		payment_date DATETIME NOT NULL,
		payment_status TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE subscriptions (
		subscription_id TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL UNIQUE REFERENCES payments(payment_id),
		package_id INTEGER NOT NULL REFERENCES packages(package_id),
		subscription_status TEXT NOT NULL,
		subscription_start_date DATETIME NOT NULL,
		subscription_end_date DATETIME
	)`,
	`INSERT INTO currencies (currency_code, name) VALUES ('THB', 'Thai Baht'), ('USD', 'US Dollar')`,
}

// Open returns a fresh database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serializes writers the way the row lock does on postgres
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t testing.TB, conn *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

// CreatePackage inserts a catalog package priced in THB.
func CreatePackage(t testing.TB, conn *gorm.DB, name string, price string, position int) models.Package {
	t.Helper()
	pkg := models.Package{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		CurrencyCode: "THB",
		Description:  name + " membership",
		Features:     pq.StringArray{"Unlimited likes", "See who likes you"},
		Position:     position,
	}
	if err := conn.Create(&pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	return pkg
}

// CreateSubscription records a settled payment and its subscription.
func CreateSubscription(t testing.TB, conn *gorm.DB, userID uuid.UUID, packageID int64, status enums.SubscriptionStatus, start time.Time) models.Subscription {
	t.Helper()

	var currency models.Currency
	if err := conn.Where("currency_code = ?", "THB").Take(&currency).Error; err != nil {
		t.Fatalf("load currency: %v", err)
	}

	payment := models.Payment{
		ID:                   uuid.New(),
		UserID:               userID,
		PackageID:            packageID,
		CurrencyID:           currency.ID,
		GatewayTransactionID: "pi_" + uuid.NewString(),
		PaymentMethod:        "card",
		PaymentDate:          start,
		Status:               enums.PaymentStatusSuccess,
	}
	if err := conn.Create(&payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	sub := models.Subscription{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		PackageID: packageID,
		Status:    status,
		StartDate: start,
	}
	if status == enums.SubscriptionStatusCancelled {
		end := start.Add(time.Hour)
		sub.EndDate = &end
	}
	if err := conn.Create(&sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	return sub
}
