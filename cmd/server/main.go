package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/config"
	"github.com/rmoreira/clinic-scheduler/internal/database"
	"github.com/rmoreira/clinic-scheduler/internal/handler"
	"github.com/rmoreira/clinic-scheduler/internal/middleware"
	"github.com/rmoreira/clinic-scheduler/internal/queue"
	"github.com/rmoreira/clinic-scheduler/internal/repository"
	"github.com/rmoreira/clinic-scheduler/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	doctors := repository.NewDoctorRepo(db)
	nurses := repository.NewNurseRepo(db)
	patients := repository.NewPatientRepo(db)
	appointments := repository.NewAppointmentRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Users:        handler.NewUserHandler(users, tokens, cfg.BcryptCost),
		Doctors:      handler.NewDoctorHandler(doctors),
		Nurses:       handler.NewNurseHandler(nurses),
		Patients:     handler.NewPatientHandler(patients),
		Appointments: handler.NewAppointmentHandler(appointments, doctors, patients, nurses),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.Register(e, h, cfg.JWTSecret, config.LoadCacheConfig(), rdb)

	// Reminder consumer runs for the lifetime of the process and reconnects
	// on broker failures.
	go func() {
		if err := queue.StartAppointmentConsumer(); err != nil {
			log.Printf("appointment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
