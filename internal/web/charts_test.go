package web

import (
	"net/http"
	"strings"
	"testing"

	"github.com/apexline-data/laptime.report/internal/telemetry"
)

func TestChartPagesRender(t *testing.T) {
	ws := testServer(t, nil)

	for _, path := range []string{
		"/charts/speed",
		"/charts/inputs",
		"/charts/delta",
		"/charts/trackmap",
		"/charts/gg",
	} {
		rec := get(t, ws, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200: %s", path, rec.Code, rec.Body.String())
			continue
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: content type = %q", path, ct)
		}
		if !strings.Contains(rec.Body.String(), "echarts") {
			t.Errorf("%s: no chart markup in response", path)
		}
	}
}

func TestChartPagesRejectUnknownVehicle(t *testing.T) {
	ws := testServer(t, nil)
	rec := get(t, ws, "/charts/speed?vehicle=car99")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrackMapChartWithoutPath(t *testing.T) {
	ws := testServer(t, nil)
	ws.table.HasPath = false

	rec := get(t, ws, "/charts/trackmap")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a derived path", rec.Code)
	}
}

func TestInputsChartWithoutChannels(t *testing.T) {
	ws := testServer(t, nil)
	delete(ws.table.Channels, telemetry.ChanThrottle)
	delete(ws.table.Channels, telemetry.ChanBrakeFront)

	rec := get(t, ws, "/charts/inputs")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without input channels", rec.Code)
	}
}

func TestGGChartWithoutAcceleration(t *testing.T) {
	ws := testServer(t, nil)
	delete(ws.table.Channels, telemetry.ChanAccLong)

	rec := get(t, ws, "/charts/gg")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without both acceleration channels", rec.Code)
	}
}

func TestTrackMapPNG(t *testing.T) {
	ws := testServer(t, nil)

	rec := get(t, ws, "/charts/trackmap.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	// PNG magic bytes.
	if body := rec.Body.Bytes(); len(body) < 8 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Error("response is not a png")
	}
}
