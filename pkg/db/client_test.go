package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merrymatch/membership-backend/pkg/db/dbtest"
	"github.com/merrymatch/membership-backend/pkg/db/models"
	"github.com/merrymatch/membership-backend/pkg/logger"
	gormlogger "gorm.io/gorm/logger"
)

func countUsers(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	conn := dbtest.Open(t)
	client := NewFromConn(conn)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.User{ID: uuid.New(), Email: "committed@example.com"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}
	if got := countUsers(t, conn); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{ID: uuid.New(), Email: "rolled@example.com"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if got := countUsers(t, conn); got != 1 {
		t.Fatalf("expected rollback to leave 1 user, got %d", got)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	conn := dbtest.Open(t)
	client := NewFromConn(conn)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&models.User{ID: uuid.New(), Email: "panic@example.com"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if got := countUsers(t, conn); got != 0 {
		t.Fatalf("expected panic to roll back, got %d users", got)
	}
}

func TestPing(t *testing.T) {
	client := NewFromConn(dbtest.Open(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.DB() == nil {
		t.Fatal("expected underlying connection")
	}
}

func TestQueryLoggerDisabledWithoutThreshold(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	if got := queryLogger(context.Background(), logg, 0); got != gormlogger.Discard {
		t.Fatalf("expected discard logger when slow threshold is zero")
	}
	if got := queryLogger(context.Background(), nil, time.Second); got != gormlogger.Discard {
		t.Fatalf("expected discard logger without a service logger")
	}
}

func TestSlowQueryWriterLogsAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	w := slowQueryWriter{ctx: logg.WithField(context.Background(), "component", "gorm"), logg: logg}

	w.Printf("SLOW SQL >= %v", 200*time.Millisecond)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"component":"gorm"`, "SLOW SQL >= 200ms"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
