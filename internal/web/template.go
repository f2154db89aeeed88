package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/morse-key/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"glyphs": patternGlyphs,
	"ms": func(v float64) string {
		return fmt.Sprintf("%.1fms", v)
	},
	"lower": strings.ToLower,
	"pad": func(s string) string {
		return fmt.Sprintf("%-16s", s)
	},
}).Parse(indexHTML))

// formatUptime drops leading zero units: 42s, 3m 5s, 1d 0h 2m 0s.
func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	parts := []struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
		{secs % 60, "s"},
	}
	for len(parts) > 1 && parts[0].n == 0 {
		parts = parts[1:]
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = fmt.Sprintf("%d%s", p.n, p.unit)
	}
	return strings.Join(out, " ")
}

// patternGlyphs renders a stored 0/1 pattern as dots and dashes.
func patternGlyphs(p string) string {
	if p == "" {
		return "(empty)"
	}
	return strings.NewReplacer("0", "·", "1", "–").Replace(p)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Morse Key</title>
<style>
body { font: 14px/1.4 monospace; max-width: 38em; margin: 1.5em auto; padding: 0 1em; color: #222; }
h1 { font-size: 1.3em; margin-bottom: .3em; }
h2 { font-size: 1em; text-transform: uppercase; color: #555; margin: 1.4em 0 .2em; }
table { width: 100%; border-spacing: 0; }
th, td { text-align: left; padding: 3px 6px; border-top: 1px dotted #ccc; }
th { width: 35%; font-weight: normal; color: #555; }
.lcd { background: #1d3fbf; color: #fff; font-size: 1.6em; padding: 8px 12px; display: inline-block; white-space: pre; letter-spacing: 2px; }
.idle { color: #888; }
.active { color: #1a4fd6; font-weight: bold; }
.valid { color: #17803d; font-weight: bold; }
.invalid { color: #c62828; font-weight: bold; }
.clearing { color: #e08600; font-weight: bold; }
.up { color: #17803d; }
.down { color: #c62828; }
#live { font-size: .7em; vertical-align: middle; margin-left: .5em; }
</style>
</head>
<body>
<h1>Morse Key{{if .Config.WSBroker}}<span id="live" class="clearing">connecting</span>{{end}}</h1>

<div class="lcd" id="lcd">{{pad (index .Display 0)}}
{{pad (index .Display 1)}}</div>

<h2>Decoder</h2>
<table>
<tr><th>State</th><td>{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Indicator</th><td id="indicator" class="{{lower (printf "%s" .Indicator)}}">{{printf "%s" .Indicator}}</td></tr>
<tr><th>Pattern</th><td>{{glyphs .Pattern}}</td></tr>
<tr><th>Key</th><td>{{if .Pressed}}down{{else}}up{{end}}</td></tr>
</table>

<h2>Timing</h2>
<table>
<tr><th>Presses</th><td>{{.Stats.PressSamples}} samples, mean {{ms .Stats.PressMean}}, sd {{ms .Stats.PressStdDev}}</td></tr>
<tr><th>Gaps</th><td>{{.Stats.GapSamples}} samples, mean {{ms .Stats.GapMean}}, sd {{ms .Stats.GapStdDev}}</td></tr>
<tr><th>Dot below</th><td>{{.Config.ShortPressCapMs}}ms</td></tr>
<tr><th>Dash above</th><td>{{.Config.LongPressCapMs}}ms</td></tr>
<tr><th>Clear after</th><td>{{.Config.ClearHoldMs}}ms</td></tr>
<tr><th>Multiplier</th><td>{{.Config.Multiplier}}</td></tr>
<tr><th>Gap window</th><td>{{.Config.GapFloorMs}}ms – {{.Config.FinalizeGapMs}}ms</td></tr>
</table>

<h2>Transcript</h2>
<p id="transcript">{{if .Transcript}}{{.Transcript}}{{else}}<span class="idle">(none)</span>{{end}}</p>

<h2>Event Counts</h2>
<table>
<tr><th>Dots</th><td>{{.Counts.Dots}}</td></tr>
<tr><th>Dashes</th><td>{{.Counts.Dashes}}</td></tr>
<tr><th>Decoded</th><td>{{.Counts.Decoded}}</td></tr>
<tr><th>Invalid</th><td>{{.Counts.Invalid}}</td></tr>
<tr><th>Clears</th><td>{{.Counts.Clears}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
{{$mqtt := "disconnected"}}{{if .MQTTConnected}}{{$mqtt = "connected"}}{{end}}
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}up{{else}}down{{end}}">{{$mqtt}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if or .MQTTBuffered .MQTTDropped}}<tr><th>Outbox</th><td>{{.MQTTBuffered}} queued, {{.MQTTDropped}} dropped</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{if .Config.Session}}<tr><th>Session</th><td>{{.Config.Session}}</td></tr>{{end}}
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var live = document.getElementById("live");
  var indicator = document.getElementById("indicator");
  var transcript = document.getElementById("transcript");
  var text = transcript.textContent === "(none)" ? "" : transcript.textContent;
  var linkStates = {
    connect: ["valid", "live"],
    reconnect: ["clearing", "reconnecting"],
    offline: ["invalid", "offline"],
    error: ["invalid", "error"]
  };

  var client = mqtt.connect("{{.Config.WSBroker}}", { reconnectPeriod: 5000 });
  Object.keys(linkStates).forEach(function(ev) {
    client.on(ev, function() {
      live.className = linkStates[ev][0];
      live.textContent = linkStates[ev][1];
    });
  });
  client.on("connect", function() {
    client.subscribe("morse/key/events");
  });

  client.on("message", function(_, payload) {
    var m;
    try {
      m = JSON.parse(payload.toString()).morse;
    } catch (e) {
      return;
    }
    if (!m) {
      return;
    }
    indicator.textContent = m.indicator;
    indicator.className = m.indicator.toLowerCase();
    text = m.event === "CLEAR" ? "" : text + (m.char || "");
    transcript.textContent = text;
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	return indexTmpl.Execute(w, snap)
}
