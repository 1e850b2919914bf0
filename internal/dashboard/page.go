package dashboard

// pageTemplate is the dashboard page: six metric views, two sliders,
// and a WebSocket client that requests a recomputation on every
// slider change. Chart images are re-requested with the new
// parameters; the correlation matrix and VaR/ES numbers come from the
// pushed JSON snapshot.
const pageTemplate = `
<!DOCTYPE html>
<html>
<head>
    <title>Risk Analytics Dashboard</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1400px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2.2em; text-align: center; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(420px, 1fr)); gap: 20px; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .card h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .card img { width: 100%; }
        .controls { background: white; border-radius: 10px; padding: 20px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .controls label { font-weight: 600; color: #333; margin-right: 10px; }
        .controls .row { display: flex; align-items: center; gap: 15px; padding: 8px 0; }
        .controls output { font-weight: bold; color: #667eea; min-width: 4em; }
        .corr-table { width: 100%; border-collapse: collapse; }
        .corr-table th, .corr-table td { text-align: right; padding: 6px 8px; border-bottom: 1px solid #eee; }
        .corr-table th:first-child, .corr-table td:first-child { text-align: left; }
        .metric-table { width: 100%; border-collapse: collapse; }
        .metric-table th, .metric-table td { text-align: right; padding: 6px 8px; border-bottom: 1px solid #eee; }
        .metric-table th:first-child, .metric-table td:first-child { text-align: left; }
        .metric-negative { color: #dc3545; }
        .metric-undefined { color: #999; font-style: italic; }
        .error-bar { display: none; background: #dc3545; color: white; padding: 10px 15px; border-radius: 8px; margin-bottom: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Risk Analytics Dashboard</h1>
        </div>

        <div class="error-bar" id="error-bar"></div>

        <div class="controls">
            <div class="row">
                <label for="confidence-slider">Confidence Level:</label>
                <input type="range" id="confidence-slider" min="{{.ConfidenceMin}}" max="{{.ConfidenceMax}}" step="1" value="{{.Confidence}}">
                <output id="confidence-value">{{.Confidence}}%</output>
            </div>
            <div class="row">
                <label for="window-select">Window Size:</label>
                <select id="window-select">
                    {{range .WindowChoices}}<option value="{{.}}">{{.}}d</option>{{end}}
                </select>
            </div>
        </div>

        <div class="grid">
            <div class="card">
                <h3>Portfolio Value</h3>
                <img id="chart-portfolio" src="/charts/portfolio.png">
            </div>
            <div class="card">
                <h3>Returns Distribution</h3>
                <img id="chart-distribution" src="/charts/distribution.png">
            </div>
            <div class="card">
                <h3>Value at Risk</h3>
                <img id="chart-var" src="/charts/var.png">
            </div>
            <div class="card">
                <h3>Expected Shortfall</h3>
                <img id="chart-es" src="/charts/es.png">
            </div>
            <div class="card">
                <h3>Rolling Volatility</h3>
                <img id="chart-volatility" src="/charts/volatility.png">
            </div>
            <div class="card">
                <h3>Correlation Matrix</h3>
                <table class="corr-table" id="corr-table"></table>
            </div>
            <div class="card">
                <h3>Tail Risk by Asset</h3>
                <table class="metric-table" id="tail-table">
                    <thead><tr><th>Asset</th><th>VaR</th><th>ES</th></tr></thead>
                    <tbody id="tail-table-body"></tbody>
                </table>
            </div>
        </div>
    </div>

    <script>
        const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(proto + location.host + '/ws');

        const slider = document.getElementById('confidence-slider');
        const windowSelect = document.getElementById('window-select');
        windowSelect.value = '{{.Window}}';

        function currentParams() {
            return {
                confidence: parseFloat(slider.value),
                window: parseInt(windowSelect.value, 10)
            };
        }

        function refreshCharts(p) {
            const qs = '?confidence=' + p.confidence + '&window=' + p.window;
            for (const name of ['portfolio', 'distribution', 'var', 'es', 'volatility']) {
                document.getElementById('chart-' + name).src = '/charts/' + name + '.png' + qs;
            }
        }

        function requestSnapshot() {
            const p = currentParams();
            document.getElementById('confidence-value').textContent = p.confidence + '%';
            if (ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify(p));
            }
            refreshCharts(p);
        }

        let debounce = null;
        slider.addEventListener('input', () => {
            clearTimeout(debounce);
            debounce = setTimeout(requestSnapshot, 150);
        });
        windowSelect.addEventListener('change', requestSnapshot);

        ws.onmessage = function(event) {
            const data = JSON.parse(event.data);
            const errorBar = document.getElementById('error-bar');
            if (data.error) {
                errorBar.textContent = data.error;
                errorBar.style.display = 'block';
                return;
            }
            errorBar.style.display = 'none';
            updateCorrelation(data.symbols, data.correlation);
            updateTailTable(data.symbols, data.var, data.es);
        };

        ws.onclose = function() {
            setTimeout(() => location.reload(), 5000);
        };

        function updateCorrelation(symbols, corr) {
            const table = document.getElementById('corr-table');
            let html = '<tr><th></th>' + symbols.map(s => '<th>' + s + '</th>').join('') + '</tr>';
            for (let i = 0; i < symbols.length; i++) {
                html += '<tr><td>' + symbols[i] + '</td>';
                for (let j = 0; j < symbols.length; j++) {
                    const v = corr[i][j];
                    html += '<td>' + (v === null ? '–' : v.toFixed(3)) + '</td>';
                }
                html += '</tr>';
            }
            table.innerHTML = html;
        }

        function updateTailTable(symbols, varMap, esMap) {
            const tbody = document.getElementById('tail-table-body');
            tbody.innerHTML = '';
            for (const s of symbols) {
                const row = document.createElement('tr');
                const es = esMap[s];
                const esCell = es.defined
                    ? '<td class="metric-negative">' + (es.value * 100).toFixed(2) + '%</td>'
                    : '<td class="metric-undefined">no tail data</td>';
                row.innerHTML = '<td>' + s + '</td>' +
                    '<td class="metric-negative">' + (varMap[s] * 100).toFixed(2) + '%</td>' +
                    esCell;
                tbody.appendChild(row);
            }
        }
    </script>
</body>
</html>
`
