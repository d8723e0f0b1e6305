// Package web serves the telemetry dashboard: selector APIs, go-echarts
// chart pages and the analysis log.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/apexline-data/laptime.report/internal/config"
	"github.com/apexline-data/laptime.report/internal/db"
	"github.com/apexline-data/laptime.report/internal/httputil"
	"github.com/apexline-data/laptime.report/internal/telemetry"
)

// WebServer exposes one prepared session table over HTTP. The table is
// immutable; every request filters and sorts its own copies, so no locking
// is needed.
type WebServer struct {
	address    string
	table      *telemetry.Table
	track      *config.TrackConfig
	db         *db.DB
	layoutPath string
	server     *http.Server
}

// Config carries the web server dependencies.
type Config struct {
	Address    string
	Table      *telemetry.Table
	Track      *config.TrackConfig
	DB         *db.DB
	LayoutPath string
}

// NewWebServer creates a web server for a prepared session table.
func NewWebServer(c Config) *WebServer {
	ws := &WebServer{
		address:    c.Address,
		table:      c.Table,
		track:      c.Track,
		db:         c.DB,
		layoutPath: c.LayoutPath,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
// when the context is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", ws.handleDashboard)
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/layout", ws.handleLayout)

	mux.HandleFunc("/api/vehicles", ws.handleVehicles)
	mux.HandleFunc("/api/laps", ws.handleLaps)
	mux.HandleFunc("/api/compare", ws.handleCompare)
	mux.HandleFunc("/api/analyses", ws.handleAnalyses)

	mux.HandleFunc("/charts/speed", ws.handleSpeedChart)
	mux.HandleFunc("/charts/inputs", ws.handleInputsChart)
	mux.HandleFunc("/charts/trackmap", ws.handleTrackMapChart)
	mux.HandleFunc("/charts/trackmap.png", ws.handleTrackMapPNG)
	mux.HandleFunc("/charts/gg", ws.handleGGChart)
	mux.HandleFunc("/charts/delta", ws.handleDeltaChart)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "laptime", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleLayout serves the optional static track-layout image as-is.
func (ws *WebServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	if ws.layoutPath == "" {
		httputil.NotFound(w, "no layout image configured")
		return
	}
	if _, err := os.Stat(ws.layoutPath); err != nil {
		httputil.NotFound(w, "layout image not found")
		return
	}
	http.ServeFile(w, r, ws.layoutPath)
}

func (ws *WebServer) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"vehicles": ws.table.Vehicles(),
	})
}

// lapSelection resolves the vehicle query param and its selectable laps:
// plausible racing laps sorted fastest first, all laps when none qualify.
func (ws *WebServer) lapSelection(r *http.Request) (string, []telemetry.LapTime, error) {
	vehicle := r.URL.Query().Get("vehicle")
	if vehicle == "" {
		vehicles := ws.table.Vehicles()
		if len(vehicles) == 0 {
			return "", nil, fmt.Errorf("no vehicles in session")
		}
		vehicle = vehicles[0]
	}

	rows := ws.table.VehicleRows(vehicle)
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("unknown vehicle %q", vehicle)
	}

	times := telemetry.LapTimes(rows)
	valid := telemetry.ValidLaps(times, ws.track.GetMinLapSeconds(), ws.track.GetMaxLapSeconds())
	return vehicle, valid, nil
}

func (ws *WebServer) handleLaps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	vehicle, laps, err := ws.lapSelection(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	// Default target is the second-fastest lap, or the only one.
	defaultTarget := 0
	if len(laps) > 1 {
		defaultTarget = 1
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"vehicle":        vehicle,
		"laps":           laps,
		"default_ref":    laps[0].Lap,
		"default_target": laps[defaultTarget].Lap,
	})
}

// comparison resolves the (vehicle, ref, target) selection shared by the
// compare API and the delta chart.
type comparison struct {
	vehicle string
	ref     telemetry.LapTime
	target  telemetry.LapTime
	refRows []telemetry.Row
	tgtRows []telemetry.Row
	grid    []float64
	curve   []float64
	insight telemetry.Insight
}

func (ws *WebServer) compare(r *http.Request) (*comparison, error) {
	vehicle, laps, err := ws.lapSelection(r)
	if err != nil {
		return nil, err
	}
	if len(laps) == 0 {
		return nil, fmt.Errorf("vehicle %q has no laps", vehicle)
	}

	refLap, err := lapParam(r, "ref", laps[0].Lap)
	if err != nil {
		return nil, err
	}
	defaultTarget := laps[0].Lap
	if len(laps) > 1 {
		defaultTarget = laps[1].Lap
	}
	targetLap, err := lapParam(r, "target", defaultTarget)
	if err != nil {
		return nil, err
	}

	ref, ok := findLap(laps, refLap)
	if !ok {
		return nil, fmt.Errorf("lap %d is not selectable for vehicle %q", refLap, vehicle)
	}
	target, ok := findLap(laps, targetLap)
	if !ok {
		return nil, fmt.Errorf("lap %d is not selectable for vehicle %q", targetLap, vehicle)
	}

	c := &comparison{
		vehicle: vehicle,
		ref:     ref,
		target:  target,
		refRows: ws.table.LapRows(vehicle, ref.Lap),
		tgtRows: ws.table.LapRows(vehicle, target.Lap),
		grid:    ws.track.Grid(),
	}

	c.curve, err = telemetry.DeltaCurve(c.refRows, c.tgtRows, c.grid)
	if err != nil {
		return nil, fmt.Errorf("delta curve: %w", err)
	}
	c.insight = telemetry.BuildInsight(c.ref, c.target, c.curve, c.grid, ws.track.GetInsightEdgeInset())
	return c, nil
}

func (ws *WebServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if ws.db != nil {
		_, err := ws.db.RecordAnalysis(db.Analysis{
			VehicleID:        c.vehicle,
			RefLap:           c.ref.Lap,
			TargetLap:        c.target.Lap,
			GapSeconds:       c.insight.GapSeconds,
			CriticalDistance: c.insight.CriticalDistance,
		})
		if err != nil {
			log.Printf("failed to record analysis: %v", err)
		}
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"vehicle": c.vehicle,
		"insight": c.insight,
		"grid":    c.grid,
		"curve":   c.curve,
	})
}

func (ws *WebServer) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.db == nil {
		httputil.NotFound(w, "analysis log not configured")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	analyses, err := ws.db.ListAnalyses(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list analyses: %v", err))
		return
	}
	httputil.WriteJSONOK(w, analyses)
}

func lapParam(r *http.Request, name string, fallback int32) (int32, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %v", name, err)
	}
	return int32(v), nil
}

func findLap(laps []telemetry.LapTime, lap int32) (telemetry.LapTime, bool) {
	for _, lt := range laps {
		if lt.Lap == lap {
			return lt, true
		}
	}
	return telemetry.LapTime{}, false
}
