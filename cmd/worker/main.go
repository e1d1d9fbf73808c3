// The worker binary runs only the scheduled membership jobs. Use it
// when the API and the jobs are deployed as separate processes.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/membership"
	"github.com/olimpofit/gym-server/internal/notification"
	"github.com/olimpofit/gym-server/internal/pkg/distlock"
	"github.com/olimpofit/gym-server/internal/user"
	"github.com/olimpofit/gym-server/internal/worker"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("[Worker] Connected to database")

	notifSvc := notification.NewService(
		notification.NewStore(db),
		notification.NewSESChannel(cfg.SES),
		notification.NewWhatsAppChannel(cfg.WhatsApp),
		nil,
		cfg.Gym.Name,
	)
	memberSvc := membership.NewService(
		membership.NewStore(db),
		user.NewPostgresRepository(db),
		notifSvc,
	)

	// Locks keep the runs exclusive when the API server also carries
	// the jobs. No Redis here, so they fall back to advisory locks.
	lockTTL := 15 * time.Minute
	runners := []*worker.Runner{
		worker.NewExpirySweeper(memberSvc, cfg.Jobs).
			WithLock(distlock.New(nil, db, "jobs:expiry_sweep", lockTTL)),
		worker.NewAutoRenewer(memberSvc, cfg.Jobs).
			WithLock(distlock.New(nil, db, "jobs:auto_renew", lockTTL)),
		worker.NewExpiringNotifier(memberSvc, cfg.Jobs).
			WithLock(distlock.New(nil, db, "jobs:expiring_notify", lockTTL)),
	}
	for _, r := range runners {
		if err := r.Start(); err != nil {
			log.Fatalf("Failed to start job: %v", err)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	for _, r := range runners {
		r.Stop()
	}
	log.Println("[Worker] Bye")
}
