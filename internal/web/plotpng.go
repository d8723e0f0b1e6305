package web

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/apexline-data/laptime.report/internal/httputil"
)

// handleTrackMapPNG renders the synthesized track path of the target lap as
// a static PNG, suitable for saving or embedding outside the dashboard.
func (ws *WebServer) handleTrackMapPNG(w http.ResponseWriter, r *http.Request) {
	c, err := ws.compare(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if !ws.table.HasPath {
		httputil.NotFound(w, "track map unavailable: session has no lateral acceleration channel")
		return
	}

	pts := make(plotter.XYs, 0, len(c.tgtRows))
	for _, row := range c.tgtRows {
		if math.IsNaN(row.MapX) || math.IsNaN(row.MapY) {
			continue
		}
		pts = append(pts, plotter.XY{X: row.MapX, Y: row.MapY})
	}
	if len(pts) == 0 {
		httputil.NotFound(w, "no track path points for lap")
		return
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - lap %d", ws.track.GetTrackName(), c.target.Lap)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build track line: %v", err))
		return
	}
	line.Color = color.RGBA{R: 0x35, G: 0xb7, B: 0x79, A: 0xff}
	line.Width = vg.Points(1.5)
	p.Add(line)

	// Mark the start of the lap.
	start, err := plotter.NewScatter(plotter.XYs{pts[0]})
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build start marker: %v", err))
		return
	}
	start.Color = color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 0xff}
	start.Radius = vg.Points(4)
	p.Add(start)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render track map: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		log.Printf("failed to write track map png: %v", err)
	}
}
