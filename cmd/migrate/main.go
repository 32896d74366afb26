// Command migrate applies or reverts the schema migrations under
// migrations/ against the configured database.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	var (
		migrationsDir = flag.String("migrations", "migrations", "directory containing migration files")
		direction     = flag.String("direction", "up", "migration direction: up, down, or steps")
		steps         = flag.Int("steps", 0, "number of steps to apply when -direction=steps (negative reverts)")
		dsn           = flag.String("dsn", "", "database connection string (defaults to DATABASE_URL)")
		force         = flag.Int("force", -1, "force the schema_migrations version without running migrations, for resolving a dirty state")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, continuing with process environment")
	}

	dbURL := *dsn
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL or -dsn is required")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", *migrationsDir), dbURL)
	if err != nil {
		log.Fatalf("init migrator: %v", err)
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatalf("force version %d: %v", *force, err)
		}
		log.Printf("forced schema_migrations to version %d", *force)
		return
	}

	switch *direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if *steps == 0 {
			log.Fatal("-steps must be nonzero when -direction=steps")
		}
		err = m.Steps(*steps)
	default:
		log.Fatalf("unknown direction %q, want up, down, or steps", *direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no migrations to apply")
		return
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatalf("read version: %v", verr)
	}
	log.Printf("migrations applied, now at version %d (dirty=%v)", version, dirty)
	os.Exit(0)
}
