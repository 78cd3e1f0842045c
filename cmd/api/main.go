package main

import (
	"context"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/anjiri1684/lesson_ledger/cache"
	config "github.com/anjiri1684/lesson_ledger/configs"
	"github.com/anjiri1684/lesson_ledger/database"
	"github.com/anjiri1684/lesson_ledger/handlers"
	"github.com/anjiri1684/lesson_ledger/jobs"
	"github.com/anjiri1684/lesson_ledger/notifications"
	"github.com/anjiri1684/lesson_ledger/routes"
	"github.com/anjiri1684/lesson_ledger/services"
	"github.com/anjiri1684/lesson_ledger/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.MustLoad()

	database.ConnectDB(cfg)
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	store := database.NewStore(database.DB)
	defaultLoc := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	dispatcherOpts := []notifications.DispatcherOption{notifications.WithPusher(hub)}
	if mailer := notifications.NewBrevoService(cfg); mailer != nil {
		dispatcherOpts = append(dispatcherOpts, notifications.WithMailer(mailer))
	}
	dispatcher := notifications.NewDispatcher(store, defaultLoc, dispatcherOpts...)

	lessonOpts := []services.LessonOption{services.WithEventPublisher(dispatcher)}
	statsOpts := []services.StatsOption{}
	var reminderLock *cache.ReminderLock
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(cfg.RedisAddr)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, serving stats uncached: %v", err)
		} else {
			defer client.Close()
			statsCache := cache.NewStatsCache(client, cfg.StatsCacheTTL)
			lessonOpts = append(lessonOpts, services.WithStatsInvalidator(statsCache))
			statsOpts = append(statsOpts, services.WithStatsCache(statsCache))
			reminderLock = cache.NewReminderLock(client)
			log.Println("✅ Redis stats cache connected.")
		}
	}

	h := &handlers.Handler{
		Lessons:      services.NewLessonService(store, lessonOpts...),
		Stats:        services.NewStatsService(store, defaultLoc, statsOpts...),
		Availability: services.NewAvailabilityService(store),
		Hub:          hub,
		JWTSecret:    cfg.JWTSecret,
	}

	reminderOpts := []jobs.Option{}
	if reminderLock != nil {
		reminderOpts = append(reminderOpts, jobs.WithClaimer(reminderLock))
	}
	reminders := jobs.NewReminders(store, dispatcher, cfg.CompletionReminderAfter, cfg.ConfirmationReminderAfter, reminderOpts...)
	c := cron.New()
	if err := reminders.Schedule(c, cfg.ReminderSchedule); err != nil {
		log.Fatalf("🔥 Failed to schedule reminder jobs: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron jobs for lesson reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Lesson Ledger",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: cfg.Env == "local",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.LogTimeZone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, h)

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
