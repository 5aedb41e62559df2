package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollbook/internal/config"
	"rollbook/internal/queue"
	"rollbook/internal/store"
)

// Worker consumes notification events published by the API and delivers them
// out-of-band (currently to the log; the store already holds the in-app copy).
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

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		redisClient := store.NewRedis(cfg.RedisAddr)
		if !redisClient.Healthy(ctx) {
			log.Println("WARNING: redis not reachable, will retry on consume")
		}
		q = queue.NewRedisQueue(redisClient.Client, "")
	} else {
		log.Fatalf("worker requires QUEUE_BACKEND=redis; the memory queue does not cross processes")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for notifications...")
	for msg := range messages {
		if msg.Type != queue.TypeNotification {
			continue
		}
		n, err := queue.DecodeNotification(msg)
		if err != nil {
			log.Printf("bad notification payload: %v", err)
			continue
		}
		log.Printf("deliver to %s: %s", n.Lecturer, n.Message)
	}

	log.Println("worker stopped")
}
