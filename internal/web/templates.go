package web

import (
	"html/template"
	"time"

	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
)

type dashboardData struct {
	GeneratedAt time.Time
	Stats       *model.AttemptStats
	Networks    []model.NetworkStats
	Recent      []model.LoginAttempt
}

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"formatTimePtr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	},
	"statusClass": func(status string) string {
		if login.Success(status) {
			return "ok"
		}
		return "fail"
	},
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(templateFuncs).Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>WiFi Auth Dashboard</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        :root {
            --bg-primary: #0f1419;
            --bg-card: #1a2129;
            --border-color: #2b3540;
            --text-primary: #e6edf3;
            --text-dim: #7d8590;
            --success: #3fb950;
            --danger: #f85149;
            --accent: #58a6ff;
        }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--bg-primary); color: var(--text-primary); padding: 24px; }
        h1 { font-size: 1.5rem; margin-bottom: 4px; }
        h2 { font-size: 1.1rem; margin: 24px 0 12px; }
        .subtitle { color: var(--text-dim); font-size: 0.85rem; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 12px; margin-top: 20px; }
        .card { background: var(--bg-card); border: 1px solid var(--border-color); border-radius: 8px; padding: 16px; }
        .card .label { color: var(--text-dim); font-size: 0.8rem; text-transform: uppercase; }
        .card .value { font-size: 1.6rem; margin-top: 6px; }
        table { width: 100%; border-collapse: collapse; background: var(--bg-card); border: 1px solid var(--border-color); border-radius: 8px; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid var(--border-color); font-size: 0.9rem; }
        th { color: var(--text-dim); font-weight: 600; }
        .ok { color: var(--success); }
        .fail { color: var(--danger); }
        .toolbar { display: flex; gap: 8px; margin-bottom: 12px; }
        select, button { background: var(--bg-card); color: var(--text-primary); border: 1px solid var(--border-color); border-radius: 6px; padding: 6px 10px; }
        a { color: var(--accent); }
        #hourlyChart { max-height: 260px; }
    </style>
</head>
<body>
    <h1>WiFi Auth Dashboard</h1>
    <div class="subtitle">Generated {{formatTime .GeneratedAt}} &middot; <a href="/report">Download report</a></div>

    <div class="cards">
        <div class="card"><div class="label">Total attempts</div><div class="value">{{.Stats.TotalAttempts}}</div></div>
        <div class="card"><div class="label">Successful</div><div class="value ok">{{.Stats.SuccessfulAttempts}}</div></div>
        <div class="card"><div class="label">Failed</div><div class="value fail">{{.Stats.FailedAttempts}}</div></div>
        <div class="card"><div class="label">Success rate</div><div class="value">{{printf "%.2f" .Stats.SuccessRate}}%</div></div>
        <div class="card"><div class="label">Last attempt</div><div class="value" style="font-size:1rem">{{formatTimePtr .Stats.LastAttempt}}</div></div>
    </div>

    <h2>Networks</h2>
    <table>
        <thead><tr><th>Network</th><th>Total</th><th>Successful</th><th>Failed</th><th>Success rate</th><th>Last attempt</th></tr></thead>
        <tbody>
        {{range .Networks}}
            <tr><td>{{.DisplayName}}</td><td>{{.TotalAttempts}}</td><td class="ok">{{.SuccessfulAttempts}}</td><td class="fail">{{.FailedAttempts}}</td><td>{{printf "%.2f" .SuccessRate}}%</td><td>{{formatTime .LastAttempt}}</td></tr>
        {{else}}
            <tr><td colspan="6">No login attempts recorded yet.</td></tr>
        {{end}}
        </tbody>
    </table>

    <h2>Attempts per hour (last 7 days)</h2>
    <div class="card"><canvas id="hourlyChart"></canvas></div>

    <h2>Recent attempts</h2>
    <div class="toolbar">
        <select id="statusFilter" onchange="loadAttempts()">
            <option value="">All</option>
            <option value="success">Successful</option>
            <option value="failed">Failed</option>
        </select>
        <select id="networkFilter" onchange="loadAttempts()">
            <option value="">All networks</option>
            {{range .Networks}}{{if not .Legacy}}<option value="{{.NetworkName}}">{{.NetworkName}}</option>{{end}}{{end}}
        </select>
        <button onclick="loadAttempts()">Refresh</button>
    </div>
    <table>
        <thead><tr><th>Time</th><th>Network</th><th>SSID</th><th>Username</th><th>Status</th><th>Message</th></tr></thead>
        <tbody id="attempts">
        {{range .Recent}}
            <tr><td>{{formatTime .Timestamp}}</td><td>{{orDash .NetworkName}}</td><td>{{orDash .NetworkSSID}}</td><td>{{.Username}}</td><td class="{{statusClass .ResponseStatus}}">{{.ResponseStatus}}</td><td>{{.ResponseMessage}}</td></tr>
        {{else}}
            <tr><td colspan="6">No login attempts recorded yet.</td></tr>
        {{end}}
        </tbody>
    </table>

    <script>
        function cell(text, cls) {
            const td = document.createElement('td');
            td.textContent = text || '-';
            if (cls) td.className = cls;
            return td;
        }

        async function loadAttempts() {
            const params = new URLSearchParams({ limit: '50' });
            const status = document.getElementById('statusFilter').value;
            const network = document.getElementById('networkFilter').value;
            if (status) params.set('status_filter', status);
            if (network) params.set('network_filter', network);

            const res = await fetch('/api/attempts?' + params);
            const data = await res.json();
            const body = document.getElementById('attempts');
            body.innerHTML = '';
            for (const a of data.attempts) {
                const tr = document.createElement('tr');
                tr.appendChild(cell(new Date(a.timestamp).toLocaleString()));
                tr.appendChild(cell(a.network_name));
                tr.appendChild(cell(a.network_ssid));
                tr.appendChild(cell(a.username));
                tr.appendChild(cell(a.response_status, a.response_status === '200' ? 'ok' : 'fail'));
                tr.appendChild(cell(a.response_message));
                body.appendChild(tr);
            }
        }

        async function loadHourlyChart() {
            const res = await fetch('/api/hourly-stats?days=7');
            const data = await res.json();
            const labels = data.hourly_stats.map(h => h.hour);
            new Chart(document.getElementById('hourlyChart').getContext('2d'), {
                type: 'bar',
                data: {
                    labels: labels,
                    datasets: [
                        { label: 'Successful', data: data.hourly_stats.map(h => h.successful_attempts), backgroundColor: '#3fb950' },
                        { label: 'Failed', data: data.hourly_stats.map(h => h.failed_attempts), backgroundColor: '#f85149' }
                    ]
                },
                options: { responsive: true, scales: { x: { stacked: true }, y: { stacked: true, beginAtZero: true } } }
            });
        }

        loadHourlyChart();
        setInterval(loadAttempts, 30000);
    </script>
</body>
</html>`
