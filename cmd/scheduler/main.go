package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/yudhapr/bpjs-reminder-engine/internal/channel"
	"github.com/yudhapr/bpjs-reminder-engine/internal/config"
	"github.com/yudhapr/bpjs-reminder-engine/internal/repository"
	"github.com/yudhapr/bpjs-reminder-engine/internal/service"
	customError "github.com/yudhapr/bpjs-reminder-engine/pkg/errors"
)

func main() {
	log.Println("Starting reminder scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	channels := channel.NewRegistry(
		channel.NewTelegramSender(cfg.Channels.TelegramBotToken),
		channel.NewWhatsAppSender(cfg.Channels.TwilioAccountSID, cfg.Channels.TwilioAuthToken, cfg.Channels.TwilioFromNumber),
	)

	schedulerService := service.NewSchedulerService(
		repository.NewDebtRepository(db),
		repository.NewMemberRepository(db),
		repository.NewReminderRepository(db),
		channels,
		redisClient,
		cfg,
	)

	// Initialize cron scheduler in the configured timezone
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetTimezone()))

	_, err = c.AddFunc(cfg.Scheduler.CronSpec, func() {
		runOnce(schedulerService)
	})
	if err != nil {
		log.Fatalf("Error scheduling reminder job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Printf("Scheduler started with spec %q", cfg.Scheduler.CronSpec)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func runOnce(s *service.SchedulerService) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.RunScheduler(ctx)
	if err != nil {
		if errors.Is(err, customError.ErrSchedulerLocked) {
			log.Println("Scheduler run skipped: another run holds the lock")
			return
		}
		// The next cron tick is the retry; nothing else to do here
		log.Printf("Scheduler run failed: %v", err)
		return
	}

	log.Printf("Scheduler run complete: generated=%d sent=%d", result.Generated, result.Sent)
}
