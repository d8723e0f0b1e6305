package web

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
)

// handleDashboard renders a simple dashboard with iframes to the chart pages.
// The vehicle/ref/target query params are passed through to each chart.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := url.Values{}
	for _, name := range []string{"vehicle", "ref", "target"} {
		if v := r.URL.Query().Get(name); v != "" {
			q.Set(name, v)
		}
	}
	qs := ""
	if len(q) > 0 {
		qs = "?" + q.Encode()
	}
	safeQs := html.EscapeString(qs)

	doc := fmt.Sprintf(dashboardHTML, html.EscapeString(ws.track.GetTrackName()), safeQs)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Lap Time Report</title>
	<style>
		body { background: #111; color: #eee; font-family: sans-serif; margin: 1rem; }
		h1 { font-size: 1.4rem; }
		iframe { border: 1px solid #333; background: #1a1a1a; margin-bottom: 1rem; }
		.row { display: flex; flex-wrap: wrap; gap: 1rem; }
		a { color: #6ece58; }
	</style>
</head>
<body>
	<h1>Lap Time Report: %[1]s</h1>
	<p>
		Selectors: <a href="/api/vehicles">vehicles</a> &middot;
		<a href="/api/laps%[2]s">laps</a> &middot;
		<a href="/api/compare%[2]s">compare</a> &middot;
		<a href="/api/analyses">analyses</a>
	</p>
	<iframe src="/charts/delta%[2]s" width="1240" height="540"></iframe>
	<iframe src="/charts/speed%[2]s" width="1240" height="540"></iframe>
	<iframe src="/charts/inputs%[2]s" width="1240" height="540"></iframe>
	<div class="row">
		<iframe src="/charts/trackmap%[2]s" width="940" height="940"></iframe>
		<iframe src="/charts/gg%[2]s" width="940" height="940"></iframe>
	</div>
</body>
</html>
`
