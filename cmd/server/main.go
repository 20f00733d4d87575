package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	webAdapter "oilhub/internal/adapters/web"
	"oilhub/internal/app"
	"oilhub/internal/db"
	"oilhub/internal/persist"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	debounce := 0 * time.Millisecond
	if ms := os.Getenv("SYNC_DEBOUNCE_MS"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil {
			log.Fatalf("SYNC_DEBOUNCE_MS: %v", err)
		}
		debounce = time.Duration(n) * time.Millisecond
	}

	svc, err := app.NewAppService(ctx,
		persist.NewPostgresStore(pool),
		persist.NewUserStore(pool),
		app.Options{
			MasterAdmin: os.Getenv("MASTER_ADMIN"),
			Debounce:    debounce,
		})
	if err != nil {
		log.Fatalf("application: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"), jwtSecret)
	srv := &http.Server{Addr: ":" + port, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.Flush(shutdownCtx); err != nil {
			log.Printf("flush on shutdown: %v", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server starting on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
