package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/radar-sensor/internal/telemetry"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"cm": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Radar Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.scanning { color: green; font-weight: bold; }
.detecting { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Radar Sensor</h1>

<h2>Scan</h2>
<table>
<tr><th>State</th><td class="{{if .Latched}}detecting{{else}}scanning{{end}}">{{.State}}</td></tr>
<tr><th>Angle</th><td>{{.Angle}}&deg;</td></tr>
<tr><th>Distance</th><td>{{cm .Distance}} cm</td></tr>
<tr><th>Threshold</th><td>{{cm .Threshold}} cm</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} &mdash; {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Detections</th><td>{{.Counts.Detections}}</td></tr>
<tr><th>Clears</th><td>{{.Counts.Clears}}</td></tr>
<tr><th>Range changes</th><td>{{.Counts.RangeChanges}}</td></tr>
<tr><th>Resets</th><td>{{.Counts.Resets}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleMs}}ms</td></tr>
<tr><th>Telemetry</th><td>{{if eq .Config.TelemetryMs 0}}disabled{{else}}{{.Config.TelemetryMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
<tr><th>Run</th><td>{{.Config.RunID}}</td></tr>
</table>

<p><a href="/data">data</a> &middot; <a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap telemetry.Snapshot) {
	// Snapshot has Uptime() and State() methods but the template wants
	// plain fields.
	data := struct {
		telemetry.Snapshot
		Uptime time.Duration
		State  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		State:    snap.State(),
	}
	indexTmpl.Execute(w, data)
}
