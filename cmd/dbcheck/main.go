package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/config"
	"github.com/you/staysvc/internal/infrastructure/auth"
	"github.com/you/staysvc/internal/infrastructure/database"
	"github.com/you/staysvc/internal/infrastructure/mongorepo"
	"github.com/you/staysvc/internal/infrastructure/repositories"
)

// Verifies the configured database is reachable and migrated
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Checking %s storage\n", cfg.DBDriver)

	if cfg.DBDriver == config.DriverMongo {
		db, err := database.ConnectMongo(ctx, cfg.DSN, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer db.Client().Disconnect(context.Background())

		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			log.Fatalf("Failed to ensure indexes: %v", err)
		}
		fmt.Println("✓ Indexes in place")

		for _, name := range []string{"accounts", "listings", "bookings"} {
			n, err := db.Collection(name).EstimatedDocumentCount(ctx)
			if err != nil {
				log.Fatalf("Failed to count %s: %v", name, err)
			}
			fmt.Printf("✓ %s accessible (current count: %d)\n", name, n)
		}
		return
	}

	db, err := database.Open(cfg.DBDriver, cfg.DSN, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("✓ Database connection successful")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}
	fmt.Println("✓ AutoMigrate completed successfully")

	tables := []struct {
		name  string
		model any
	}{
		{"accounts", &repositories.DBAccount{}},
		{"listings", &repositories.DBListing{}},
		{"bookings", &repositories.DBBooking{}},
	}
	for _, tbl := range tables {
		var n int64
		if err := db.WithContext(ctx).Model(tbl.model).Count(&n).Error; err != nil {
			log.Fatalf("Failed to query %s table: %v", tbl.name, err)
		}
		fmt.Printf("✓ %s table accessible (current count: %d)\n", tbl.name, n)
	}

	if cfg.CasbinPersist {
		policy, err := auth.NewOwnershipPolicy(db)
		if err != nil {
			log.Fatalf("Failed to load ownership policy: %v", err)
		}
		ok, err := policy.Allowed("probe", "probe", domain.ResourceListing, domain.ActionUpdate)
		if err != nil || !ok {
			log.Fatalf("Ownership policy is not seeded: allowed=%v err=%v", ok, err)
		}
		fmt.Println("✓ Ownership policy persisted")
	}
}
