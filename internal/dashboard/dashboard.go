// Package dashboard serves the interactive risk analytics dashboard:
// an HTML page with confidence-level and window-size sliders, chart
// images rendered server-side, a JSON snapshot API, and a WebSocket
// endpoint that recomputes and pushes a fresh snapshot whenever a
// slider moves.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"riskboard/internal/cfg"
	"riskboard/internal/metrics"
	"riskboard/internal/risk"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Dashboard serves the risk analytics web UI on top of a risk engine.
// Every request recomputes from the engine's immutable price table;
// the dashboard itself holds no metric state.
type Dashboard struct {
	engine   *risk.Engine
	settings cfg.Settings
	metrics  *metrics.Metrics
	server   *http.Server
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	isRunning bool
	mu        sync.Mutex
}

// New creates a dashboard serving the given engine on the configured
// port.
func New(engine *risk.Engine, settings cfg.Settings, m *metrics.Metrics) *Dashboard {
	d := &Dashboard{
		engine:   engine,
		settings: settings,
		metrics:  m,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]bool),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", d.handlePage).Methods("GET")
	r.HandleFunc("/api/snapshot", d.handleSnapshotAPI).Methods("GET")
	r.HandleFunc("/charts/{name}.png", d.handleChart).Methods("GET")
	r.HandleFunc("/ws", d.handleWebSocket).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	d.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.ListenPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return d
}

// Start starts the dashboard server in the background.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go func() {
		log.Info().
			Str("address", d.server.Addr).
			Msg("starting dashboard server")

		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("dashboard server failed")
		}
	}()

	d.isRunning = true
	return nil
}

// Stop closes all WebSocket connections and shuts down the server.
func (d *Dashboard) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil
	}

	d.clientsMu.Lock()
	for client := range d.clients {
		client.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown dashboard server")
		return err
	}

	d.isRunning = false
	log.Info().Msg("dashboard stopped")
	return nil
}

// Handler exposes the HTTP handler for tests.
func (d *Dashboard) Handler() http.Handler { return d.server.Handler }

// compute runs one full recomputation, tracking duration and errors.
func (d *Dashboard) compute(p risk.Params) (*risk.Snapshot, error) {
	start := time.Now()
	snapshot, err := d.engine.Compute(p)
	if err != nil {
		d.metrics.RecomputeErrors.Inc()
		return nil, err
	}
	d.metrics.RecomputesTotal.Inc()
	d.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	return snapshot, nil
}

// paramsFromQuery reads confidence and window from the query string,
// falling back to configured defaults. Malformed numbers are an
// error; domain checks happen in the engine.
func (d *Dashboard) paramsFromQuery(r *http.Request) (risk.Params, error) {
	p := risk.Params{Confidence: d.settings.Confidence, Window: d.settings.Window}

	if v := r.URL.Query().Get("confidence"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return risk.Params{}, fmt.Errorf("bad confidence %q", v)
		}
		p.Confidence = c
	}
	if v := r.URL.Query().Get("window"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return risk.Params{}, fmt.Errorf("bad window %q", v)
		}
		p.Window = w
	}
	return p, nil
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// handleSnapshotAPI serves a full metrics snapshot as JSON.
func (d *Dashboard) handleSnapshotAPI(w http.ResponseWriter, r *http.Request) {
	p, err := d.paramsFromQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	snapshot, err := d.compute(p)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// handleChart renders one chart image for the requested parameters.
func (d *Dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	p, err := d.paramsFromQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	snapshot, err := d.compute(p)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	name := mux.Vars(r)["name"]
	img, err := RenderChart(name, snapshot)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	d.metrics.ChartsRendered.Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

// wsRequest is what the page sends on every slider change.
type wsRequest struct {
	Confidence float64 `json:"confidence"`
	Window     int     `json:"window"`
}

// handleWebSocket serves the recompute-on-slider-change loop: each
// inbound parameter message triggers one synchronous recomputation
// whose snapshot is written back to the same client.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()
	d.metrics.WSClients.Inc()

	defer func() {
		d.clientsMu.Lock()
		delete(d.clients, conn)
		d.clientsMu.Unlock()
		d.metrics.WSClients.Dec()
	}()

	// Initial snapshot with the configured defaults.
	d.sendSnapshot(conn, risk.Params{Confidence: d.settings.Confidence, Window: d.settings.Window})

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		d.sendSnapshot(conn, risk.Params{Confidence: req.Confidence, Window: req.Window})
	}
}

func (d *Dashboard) sendSnapshot(conn *websocket.Conn, p risk.Params) {
	snapshot, err := d.compute(p)
	if err != nil {
		if werr := conn.WriteJSON(map[string]string{"error": err.Error()}); werr != nil {
			log.Error().Err(werr).Msg("failed to send error to WebSocket client")
		}
		return
	}

	if err := conn.WriteJSON(snapshot); err != nil {
		log.Error().Err(err).Msg("failed to send snapshot to WebSocket client")
		return
	}
	d.metrics.SnapshotsDelivered.Inc()
}

// pageData feeds the dashboard template.
type pageData struct {
	Symbols       []string
	Confidence    float64
	Window        int
	ConfidenceMin int
	ConfidenceMax int
	WindowChoices []int
}

// handlePage serves the dashboard HTML page.
func (d *Dashboard) handlePage(w http.ResponseWriter, r *http.Request) {
	t, err := template.New("dashboard").Parse(pageTemplate)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Symbols:       d.engine.Table().Symbols,
		Confidence:    d.settings.Confidence,
		Window:        d.settings.Window,
		ConfidenceMin: d.settings.ConfidenceMin,
		ConfidenceMax: d.settings.ConfidenceMax,
		WindowChoices: d.settings.WindowChoices,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := t.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render dashboard page")
	}
}
