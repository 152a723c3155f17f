package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/nudge/internal/bot"
	"github.com/pathakanu/nudge/internal/clock"
	"github.com/pathakanu/nudge/internal/config"
	"github.com/pathakanu/nudge/internal/database"
	"github.com/pathakanu/nudge/internal/escalation"
	"github.com/pathakanu/nudge/internal/metrics"
	myopenai "github.com/pathakanu/nudge/internal/openai"
	"github.com/pathakanu/nudge/internal/server"
	"github.com/pathakanu/nudge/internal/store"
	"github.com/pathakanu/nudge/internal/timeparse"
	"github.com/pathakanu/nudge/internal/twilio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := log.New(os.Stdout, "[nudge] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Printf("database close: %v", err)
		}
	}()

	reminders := store.NewGormReminders(db)
	var sessions store.Sessions = store.NewGormSessions(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatalf("redis ping %s: %v", cfg.RedisAddr, err)
		}
		sessions = store.NewRedisSessions(rdb)
		logger.Printf("sessions: using redis at %s", cfg.RedisAddr)
	}

	var fallback timeparse.Fallback
	if openAIClient := myopenai.New(cfg.OpenAIAPIKey); openAIClient.Enabled() {
		fallback = openAIClient
	}
	resolver := timeparse.New(timeparse.NewWhenParser(), fallback, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	clk := clock.System()
	twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, cfg.TwilioCallNumber, logger)
	if !twilioClient.VoiceEnabled() {
		logger.Fatalf("TWILIO_CALL_NUMBER is required: unanswered reminders escalate to a call")
	}
	reminderBot := bot.New(cfg, reminders, sessions, resolver, clk, m, logger)
	sweeper := escalation.NewSweeper(reminders, twilioClient, clk, escalation.Config{
		EscalationWait:  cfg.EscalationWait,
		CallWindowStart: cfg.CallWindowStart,
		CallWindowEnd:   cfg.CallWindowEnd,
		Location:        cfg.LocalTimezone,
	}, m, logger)

	scheduler, err := escalation.NewScheduler(cfg.SweepSchedule, cfg.LocalTimezone, sweeper, logger)
	if err != nil {
		logger.Fatalf("scheduler init (%q): %v", cfg.SweepSchedule, err)
	}
	scheduler.Start()

	e := server.NewRouter(&server.Config{
		Bot:      reminderBot,
		Sweeper:  sweeper,
		Gatherer: reg,
		Logger:   logger,
	})

	go func() {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(e, scheduler, logger)
}

func waitForShutdown(e *echo.Echo, scheduler *escalation.Scheduler, logger *log.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	scheduler.Stop()
}
