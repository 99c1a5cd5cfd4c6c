// Command migrate applies the embedded schema migrations.
//
//	migrate [up|down|version|steps N|force N]
//
// With no argument it runs up.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"study-byte/internal/config"
	"study-byte/internal/database"
	"study-byte/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	l := logger.Get()
	defer logger.Sync()

	if !cfg.DatabaseEnabled() {
		l.Fatal("Database is not configured: set db.host and db.name")
	}

	m, err := database.NewMigrator(cfg.GetMigrateURL(), l)
	if err != nil {
		l.Fatal("Failed to initialise migrations", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, os.Args[1:]); err != nil {
		l.Fatal("Migration failed", zap.Error(err))
	}
}

func run(m *database.Migrator, args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s needs a number", cmd)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
