package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/apexline-data/laptime.report/internal/cache"
	"github.com/apexline-data/laptime.report/internal/config"
	"github.com/apexline-data/laptime.report/internal/db"
	"github.com/apexline-data/laptime.report/internal/ingest"
	"github.com/apexline-data/laptime.report/internal/telemetry"
	"github.com/apexline-data/laptime.report/internal/web"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	csvPath    = flag.String("csv", "", "Session telemetry CSV (long or wide format)")
	cachePath  = flag.String("cache", "", "Parquet snapshot path (read if present, written after CSV ingest)")
	configPath = flag.String("config", "", "Track config JSON (defaults apply when omitted)")
	dbPath     = flag.String("db", "laptime.db", "SQLite analysis log path (empty disables logging)")
	layoutPath = flag.String("layout", "", "Optional track layout image served at /layout")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if *csvPath == "" && *cachePath == "" {
		log.Fatal("either -csv or -cache is required")
	}

	track := config.EmptyTrackConfig()
	if *configPath != "" {
		var err error
		track, err = config.LoadTrackConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load track config: %v", err)
		}
	}

	params := telemetry.DeriveParams{
		MinLapDistance: track.GetMinLapDistance(),
		MaxLapDistance: track.GetMaxLapDistance(),
		SpeedFloorKmh:  track.GetSpeedFloorKmh(),
	}

	var readCache func() (*telemetry.Table, error)
	var writeCache func(*telemetry.Table) error
	if *cachePath != "" {
		if cache.Exists(*cachePath) {
			readCache = func() (*telemetry.Table, error) { return cache.ReadTable(*cachePath) }
		}
		writeCache = func(t *telemetry.Table) error { return cache.WriteTable(*cachePath, t) }
	}

	table, err := ingest.LoadTableOrCache(*csvPath, params, readCache, writeCache)
	if err != nil {
		log.Fatalf("failed to load session: %v", err)
	}
	if len(table.Rows) == 0 {
		log.Fatal("session contains no usable laps")
	}

	var analysisDB *db.DB
	if *dbPath != "" {
		analysisDB, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer analysisDB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewWebServer(web.Config{
		Address:    *listen,
		Table:      table,
		Track:      track,
		DB:         analysisDB,
		LayoutPath: *layoutPath,
	})

	if err := server.Start(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}
