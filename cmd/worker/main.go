package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hackportal/internal/config"
	"hackportal/internal/hackathons"
	"hackportal/internal/queue"
	"hackportal/internal/store"
	"hackportal/internal/users"
)

// Worker keeps the student/proctor assignment links consistent. It runs a
// reconciliation pass whenever the API enqueues a trigger and on a fixed
// interval, so a crash between the unlink and link steps of a reassignment is
// repaired within one sweep.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "hackportal:reconcile")
	}

	userRepo := users.NewRepository(db.Client)
	hackRepo := hackathons.NewRepository(db.Client)
	svc := users.NewService(userRepo, hackRepo)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	log.Printf("worker started, sweeping every %s", cfg.ReconcileInterval)
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				log.Println("worker stopped")
				return
			}
			if msg.Type != queue.TypeReconcile {
				continue
			}
			runPass(ctx, svc)
		case <-ticker.C:
			runPass(ctx, svc)
		case <-ctx.Done():
			log.Println("worker stopped")
			return
		}
	}
}

func runPass(ctx context.Context, svc *users.Service) {
	res, err := svc.ReconcileLinks(ctx)
	if err != nil {
		log.Printf("reconcile pass failed: %v", err)
		return
	}
	if res.Removed > 0 || res.Added > 0 {
		log.Printf("reconcile pass repaired links: removed=%d added=%d", res.Removed, res.Added)
	}
}
