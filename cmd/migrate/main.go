package main

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"healthvault-data/internal/config"
)

// Usage:
//
//	migrate [up|down]
//
// 连接信息取自与 healthvault-data 相同的环境变量
func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}
	if direction != "up" && direction != "down" {
		log.Fatalf("Usage: %s [up|down]", os.Args[0])
	}

	cfg := config.Load()
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)

	sourceURL := "file://" + getEnv("MIGRATIONS_DIR", "migrations")
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		log.Fatalf("Failed to init migrations: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	}
	if err != nil {
		if err == migrate.ErrNoChange {
			fmt.Println("No pending migrations")
			return
		}
		log.Fatalf("Migration %s failed: %v", direction, err)
	}
	fmt.Printf("Migration %s completed\n", direction)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
