package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/merrymatch/membership-backend/pkg/config"
	"github.com/merrymatch/membership-backend/pkg/db"
	"github.com/merrymatch/membership-backend/pkg/logger"
	"github.com/merrymatch/membership-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "membership-migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "up|down|status|version|to|create|validate")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	name := flag.String("name", "", "migration name (create)")
	target := flag.String("version", "", "target version YYYYMMDDHHMMSS (to)")
	flag.Parse()

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": *cmd, "dir": *dir})

	source := migrate.Embedded()
	if *dir != "" {
		source = os.DirFS(*dir)
	}

	// create and validate never touch the database
	switch *cmd {
	case "create":
		out := *dir
		if out == "" {
			out = migrate.DefaultDir
		}
		path, err := migrate.Create(out, *name, time.Now())
		exitOn(ctx, logg, "create migration", err)
		fmt.Println("created migration:", path)
		return
	case "validate":
		exitOn(ctx, logg, "validate migrations", migrate.Validate(source))
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	exitOn(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "membership-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{"cmd": *cmd, "dir": *dir, "env": cfg.App.Env})

	exitOn(ctx, logg, "validate migrations", migrate.Validate(source))

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOn(ctx, logg, "sql database", err)

	m, err := migrate.New(sqlDB, source)
	exitOn(ctx, logg, "migrator", err)

	exitOn(ctx, logg, *cmd, run(ctx, logg, m, *cmd, *target))
}

func run(ctx context.Context, logg *logger.Logger, m *migrate.Migrator, cmd, target string) error {
	switch cmd {
	case "up":
		applied, err := m.Up(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrations applied")
	case "down":
		return m.Down(ctx)
	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "to":
		return m.To(ctx, target)
	case "status":
		rows, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			state := "pending"
			if row.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %d %s\n", state, row.Version, row.Path)
		}
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
	return nil
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("migrate failed: %s", step), err)
	os.Exit(1)
}
