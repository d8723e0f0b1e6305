package web

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/apexline-data/laptime.report/internal/httputil"
	"github.com/apexline-data/laptime.report/internal/telemetry"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridisColors matches the palette used across the chart pages.
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// xyLine converts a lap trace into numeric (x, y) line points, skipping
// samples where either coordinate is NaN.
func xyLine(rows []telemetry.Row, x, y func(telemetry.Row) float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(rows))
	for _, row := range rows {
		xv, yv := x(row), y(row)
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		data = append(data, opts.LineData{Value: []interface{}{xv, yv}})
	}
	return data
}

type chartRenderer interface {
	Render(w io.Writer) error
}

func renderChart(w http.ResponseWriter, c chartRenderer) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSpeedChart renders the speed-vs-distance traces of the two selected laps.
func (ws *WebServer) handleSpeedChart(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Speed Trace", Theme: "dark", Width: "1200px", Height: "500px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Speed Trace", Subtitle: fmt.Sprintf("vehicle=%s ref=lap %d target=lap %d", c.vehicle, c.ref.Lap, c.target.Lap)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Speed (km/h)", NameLocation: "middle", NameGap: 35}),
	)

	dist := func(row telemetry.Row) float64 { return row.Dist }
	speed := func(row telemetry.Row) float64 { return row.Speed }
	line.AddSeries(fmt.Sprintf("lap %d (ref)", c.ref.Lap), xyLine(telemetry.SortByDistance(c.refRows), dist, speed),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.AddSeries(fmt.Sprintf("lap %d", c.target.Lap), xyLine(telemetry.SortByDistance(c.tgtRows), dist, speed),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	renderChart(w, line)
}

// handleInputsChart renders throttle and front brake pressure against
// distance for the target lap. Missing channels are simply omitted.
func (ws *WebServer) handleInputsChart(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if !ws.table.Channels[telemetry.ChanThrottle] && !ws.table.Channels[telemetry.ChanBrakeFront] {
		httputil.NotFound(w, "no throttle or brake channels in session")
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Driver Inputs", Theme: "dark", Width: "1200px", Height: "500px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Driver Inputs", Subtitle: fmt.Sprintf("vehicle=%s lap=%d", c.vehicle, c.target.Lap)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Input", NameLocation: "middle", NameGap: 35}),
	)

	rows := telemetry.SortByDistance(c.tgtRows)
	dist := func(row telemetry.Row) float64 { return row.Dist }
	if ws.table.Channels[telemetry.ChanThrottle] {
		line.AddSeries("throttle", xyLine(rows, dist, func(row telemetry.Row) float64 { return row.Throttle }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	if ws.table.Channels[telemetry.ChanBrakeFront] {
		line.AddSeries("brake (front)", xyLine(rows, dist, func(row telemetry.Row) float64 { return row.BrakeFront }),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	renderChart(w, line)
}

// handleDeltaChart renders the cumulative time delta of the target lap
// against the reference, with the critical loss point marked in the subtitle.
func (ws *WebServer) handleDeltaChart(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lap Delta", Theme: "dark", Width: "1200px", Height: "500px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Lap Delta", Subtitle: c.insight.Message}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Delta (s)", NameLocation: "middle", NameGap: 35}),
	)

	data := make([]opts.LineData, 0, len(c.curve))
	for i, d := range c.grid {
		data = append(data, opts.LineData{Value: []interface{}{d, c.curve[i]}})
	}
	line.AddSeries(fmt.Sprintf("lap %d vs lap %d", c.target.Lap, c.ref.Lap), data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	marker := []opts.LineData{{Value: []interface{}{c.insight.CriticalDistance, c.curve[c.insight.CriticalIndex]}}}
	line.AddSeries("biggest loss", marker,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))

	renderChart(w, line)
}

// handleTrackMapChart renders the synthesized track path of the target lap,
// colored by speed.
func (ws *WebServer) handleTrackMapChart(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if !ws.table.HasPath {
		httputil.NotFound(w, "track map unavailable: session has no lateral acceleration channel")
		return
	}

	pts := make([]opts.ScatterData, 0, len(c.tgtRows))
	maxAbs := 0.0
	maxSpeed := 0.0
	for _, row := range c.tgtRows {
		if math.IsNaN(row.MapX) || math.IsNaN(row.MapY) {
			continue
		}
		if math.Abs(row.MapX) > maxAbs {
			maxAbs = math.Abs(row.MapX)
		}
		if math.Abs(row.MapY) > maxAbs {
			maxAbs = math.Abs(row.MapY)
		}
		if row.Speed > maxSpeed {
			maxSpeed = row.Speed
		}
		pts = append(pts, opts.ScatterData{Value: []interface{}{row.MapX, row.MapY, row.Speed}})
	}
	if len(pts) == 0 {
		httputil.NotFound(w, "no track path points for lap")
		return
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track Map", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Track Map: %s", ws.track.GetTrackName()), Subtitle: fmt.Sprintf("vehicle=%s lap=%d points=%d", c.vehicle, c.target.Lap, len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("path", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	renderChart(w, scatter)
}

// handleGGChart renders the lateral vs longitudinal acceleration envelope of
// the target lap, with a 1.5 g reference circle.
func (ws *WebServer) handleGGChart(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if !ws.table.Channels[telemetry.ChanAccLat] || !ws.table.Channels[telemetry.ChanAccLong] {
		httputil.NotFound(w, "g-g diagram unavailable: session has no acceleration channels")
		return
	}

	pts := make([]opts.ScatterData, 0, len(c.tgtRows))
	maxSpeed := 0.0
	for _, row := range c.tgtRows {
		if math.IsNaN(row.AccLat) || math.IsNaN(row.AccLong) {
			continue
		}
		if row.Speed > maxSpeed {
			maxSpeed = row.Speed
		}
		pts = append(pts, opts.ScatterData{Value: []interface{}{row.AccLat, row.AccLong, row.Speed}})
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	// Reference envelope at 1.5 g.
	circle := make([]opts.ScatterData, 0, 64)
	for i := 0; i < 64; i++ {
		theta := 2 * math.Pi * float64(i) / 64
		circle = append(circle, opts.ScatterData{Value: []interface{}{1.5 * math.Cos(theta), 1.5 * math.Sin(theta)}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "G-G Diagram", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "G-G Diagram", Subtitle: fmt.Sprintf("vehicle=%s lap=%d", c.vehicle, c.target.Lap)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -2, Max: 2, Name: "Lateral (g)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -2, Max: 2, Name: "Longitudinal (g)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("samples", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("1.5g", circle,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}))

	renderChart(w, scatter)
}
