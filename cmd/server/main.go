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
	"github.com/redis/go-redis/v9"

	"github.com/olimpofit/gym-server/internal/api"
	"github.com/olimpofit/gym-server/internal/auth"
	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/membership"
	"github.com/olimpofit/gym-server/internal/notification"
	"github.com/olimpofit/gym-server/internal/pkg/distlock"
	"github.com/olimpofit/gym-server/internal/uploads"
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
	log.Println("[Server] Connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[Server] Redis unavailable, template cache disabled: %v", err)
			redisClient = nil
		} else {
			log.Printf("[Server] Connected to Redis at %s", cfg.Redis.Addr)
		}
	}

	users := user.NewPostgresRepository(db)

	var cache *notification.TemplateCache
	if redisClient != nil {
		cache = notification.NewTemplateCache(redisClient)
	}
	notifSvc := notification.NewService(
		notification.NewStore(db),
		notification.NewSESChannel(cfg.SES),
		notification.NewWhatsAppChannel(cfg.WhatsApp),
		cache,
		cfg.Gym.Name,
	)

	memberSvc := membership.NewService(membership.NewStore(db), users, notifSvc)

	var uploadHandlers *uploads.Handlers
	if cfg.Storage.Enabled {
		uploadSvc, err := uploads.NewService(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to init uploads: %v", err)
		}
		uploadHandlers = uploads.NewHandlers(uploadSvc)
	}

	server := api.NewServer(cfg.Server, api.Deps{
		Auth:          auth.NewMiddleware(cfg.Auth, cfg.Server.DevMode),
		Memberships:   membership.NewHandlers(memberSvc),
		Notifications: notification.NewHandlers(notifSvc),
		Uploads:       uploadHandlers,
		Health:        api.NewHealthChecker(db, redisClient),
	})

	// The server binary can also carry the scheduled jobs for small
	// single-process deployments.
	var runners []*worker.Runner
	if cfg.Jobs.Enabled {
		lockTTL := 15 * time.Minute
		runners = []*worker.Runner{
			worker.NewExpirySweeper(memberSvc, cfg.Jobs).
				WithLock(distlock.New(redisClient, db, "jobs:expiry_sweep", lockTTL)),
			worker.NewAutoRenewer(memberSvc, cfg.Jobs).
				WithLock(distlock.New(redisClient, db, "jobs:auto_renew", lockTTL)),
			worker.NewExpiringNotifier(memberSvc, cfg.Jobs).
				WithLock(distlock.New(redisClient, db, "jobs:expiring_notify", lockTTL)),
		}
		for _, r := range runners {
			if err := r.Start(); err != nil {
				log.Fatalf("Failed to start job: %v", err)
			}
		}
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	for _, r := range runners {
		r.Stop()
	}
	log.Println("[Server] Bye")
}
