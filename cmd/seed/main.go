// seed is a one-shot tool that restores the default catalog and creates the
// bootstrap admin login. Run it against a fresh database after migrations,
// or to recover when the catalog has been accidentally wiped.
//
// Usage: go run ./cmd/seed [-force] [-admin USER] [-password PASS]
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"oilhub/internal/db"
	"oilhub/internal/persist"
	"oilhub/internal/store"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	force := flag.Bool("force", false, "overwrite an existing non-empty snapshot")
	admin := flag.String("admin", os.Getenv("MASTER_ADMIN"), "bootstrap admin username")
	password := flag.String("password", os.Getenv("MASTER_ADMIN_PASSWORD"), "bootstrap admin password")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	snapshots := persist.NewPostgresStore(pool)
	current, err := snapshots.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load existing snapshot: %v", err)
	}
	if (len(current.Hubs) > 0 || len(current.Products) > 0) && !*force {
		log.Fatal("Snapshot store is not empty; re-run with -force to overwrite")
	}

	seed := store.Seed()
	if *admin != "" {
		seed = seed.WithAdminUsernames([]string{*admin})
	}
	if err := snapshots.Save(ctx, seed); err != nil {
		log.Fatalf("Failed to write seed snapshot: %v", err)
	}
	log.Printf("Seeded catalog: %d hubs, %d products, %d prices",
		len(seed.Hubs), len(seed.Products), len(seed.PriceHistory))

	if *admin == "" {
		log.Println("No admin username given, skipping login bootstrap")
		return
	}
	if *password == "" {
		log.Fatal("Admin username set but no password; pass -password or MASTER_ADMIN_PASSWORD")
	}

	users := persist.NewUserStore(pool)
	if _, err := users.GetByUsername(ctx, *admin); err == nil {
		log.Printf("Login %q already exists, leaving it untouched", *admin)
		return
	} else if !errors.Is(err, persist.ErrUserNotFound) {
		log.Fatalf("Failed to check admin login: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if _, err := users.Create(ctx, *admin, string(hash)); err != nil {
		log.Fatalf("Failed to create admin login: %v", err)
	}
	log.Printf("Created admin login %q", *admin)
}
