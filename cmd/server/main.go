package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"portal/backend/internal/auth"
	"portal/backend/internal/pkg/cache"
	"portal/backend/internal/pkg/config"
	"portal/backend/internal/pkg/repository/spreadsheet"
	"portal/backend/internal/repository/sheet/attendance"
	"portal/backend/internal/repository/sheet/person"
	"portal/backend/internal/router"
	"portal/backend/internal/service/location"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.NewConfig(os.Args[1:])
	if errors.Is(err, conf.ErrHelpWanted) {
		usage, err := conf.Usage("PORTAL", &config.Config{})
		if err != nil {
			return errors.Wrap(err, "generating usage")
		}
		fmt.Println(usage)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}

	zone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return errors.Wrapf(err, "loading timezone %q", cfg.Timezone)
	}

	store, err := spreadsheet.Open(cfg.DataDir, map[string][]string{
		person.Collection:     person.Columns,
		attendance.Collection: attendance.Columns,
		location.Collection:   location.Columns,
	})
	if err != nil {
		return errors.Wrap(err, "opening workbook store")
	}

	writer := spreadsheet.NewWriter(store,
		spreadsheet.WithAttempts(cfg.RetryAttempts),
		spreadsheet.WithBackoff(cfg.RetryBackoff),
	)

	var directory cache.Directory = person.NewRepository(store)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		directory = cache.NewPerson(client, directory, 5*time.Minute)
	}

	attendanceRepo := attendance.NewRepository(store, writer, directory, zone)
	tracker := location.NewTracker(store, writer, zone)

	var geocoder location.Geocoder
	if cfg.NominatimURL != "" {
		geocoder = location.NewNominatim(cfg.NominatimURL)
	}

	a := auth.New(cfg.JWTKey, cfg.TokenTTL)

	engine := router.NewRouter(a, directory, attendanceRepo, tracker, geocoder, cfg.AllowedOrigins).Init()

	log.Printf("server listening on %s (data dir %s, zone %s)", cfg.Address, cfg.DataDir, zone)
	return engine.Run(cfg.Address)
}
