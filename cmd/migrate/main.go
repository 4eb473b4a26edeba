// Command migrate applies or rolls back the Postgres schema migrations.
//
//	migrate up        apply all pending migrations
//	migrate down      roll back the last migration
//	migrate version   print the current version
//	migrate force N   mark version N as clean after a failed run
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/pageza/alchemorsel-mobile/backend/config"
	"github.com/pageza/alchemorsel-mobile/backend/internal/database"
)

func main() {
	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection URL (defaults to the loaded config)")
	flag.Parse()

	if err := run(*dsn, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(dsn string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate [-database-url URL] up|down|version|force N")
	}

	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != database.DriverPostgres {
			return fmt.Errorf("migrations only run against postgres, not %q", cfg.Database.Driver)
		}
		dsn = cfg.Database.URL()
	}

	m, err := database.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			return err
		}
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "version":
	case "force":
		if len(args) < 2 {
			return errors.New("force needs a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}
