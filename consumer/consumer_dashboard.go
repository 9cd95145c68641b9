package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// Dashboard is the interactive sink: it caches the loaded dataset and serves
// the report over HTTP, recomputing every derived table per request from the
// requested season/team filter. WebSocket clients register a filter and get a
// fresh report pushed whenever the dataset is reloaded or their filter
// changes. Derived tables are never retained between requests.
type Dashboard struct {
	addr     string
	wsPath   string
	opts     processor.ReportOptions
	upgrader websocket.Upgrader
	hub      *dashboardHub
	server   *http.Server

	mu       sync.RWMutex
	snapshot *dataset.Snapshot

	processors []processor.Processor
}

type dashboardHub struct {
	mu         sync.RWMutex
	clients    map[*dashboardClient]bool
	register   chan *dashboardClient
	unregister chan *dashboardClient
}

type dashboardClient struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	filter dataset.Filter
}

func newDashboardHub() *dashboardHub {
	return &dashboardHub{
		clients:    make(map[*dashboardClient]bool),
		register:   make(chan *dashboardClient),
		unregister: make(chan *dashboardClient),
	}
}

func (h *dashboardHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("Dashboard: client connected, total clients: %d", total)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("Dashboard: client disconnected, total clients: %d", total)
		}
	}
}

func (h *dashboardHub) snapshot() []*dashboardClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*dashboardClient, 0, len(h.clients))
	for client := range h.clients {
		out = append(out, client)
	}
	return out
}

func (h *dashboardHub) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func NewDashboard(config map[string]interface{}) (*Dashboard, error) {
	port, ok := config["port"].(string)
	if !ok {
		if n, ok := config["port"].(int); ok {
			port = fmt.Sprintf("%d", n)
		} else if n, ok := config["port"].(float64); ok {
			port = fmt.Sprintf("%d", int(n))
		} else {
			port = "8080"
		}
	}

	wsPath, ok := config["ws_path"].(string)
	if !ok {
		wsPath = "/ws"
	}

	opts := processor.ReportOptions{IncludeRawTable: true}
	if topN, ok := config["top_n"].(int); ok {
		opts.TopN = topN
	} else if topN, ok := config["top_n"].(float64); ok {
		opts.TopN = int(topN)
	}
	if include, ok := config["include_no_result"].(bool); ok {
		opts.IncludeNoResult = include
	}

	d := &Dashboard{
		addr:   ":" + port,
		wsPath: wsPath,
		opts:   opts,
		hub:    newDashboardHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", d.handleHealth)
	mux.HandleFunc("/api/filters", d.handleFilters)
	mux.HandleFunc("/api/report", d.handleReport)
	mux.HandleFunc("/api/kpi", d.handleKPI)
	mux.HandleFunc(wsPath, d.handleWebSocket)

	d.server = &http.Server{Addr: d.addr, Handler: mux}

	go d.hub.run()
	go func() {
		log.Printf("Dashboard: serving on %s (websocket at %s)", d.addr, wsPath)
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Dashboard: server error: %v", err)
		}
	}()

	return d, nil
}

func (d *Dashboard) Subscribe(processor processor.Processor) {
	d.processors = append(d.processors, processor)
}

// Process receives the loaded dataset snapshot, caches it, and pushes a fresh
// report to every connected client under that client's own filter.
func (d *Dashboard) Process(ctx context.Context, msg processor.Message) error {
	snapshot, err := processor.ExtractSnapshot(msg)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snapshot = snapshot
	d.mu.Unlock()

	log.Printf("Dashboard: dataset refreshed (%d matches, %d deliveries)",
		len(snapshot.Dataset.Matches), len(snapshot.Dataset.Deliveries))

	for _, client := range d.hub.snapshot() {
		d.pushReport(client)
	}
	return nil
}

func (d *Dashboard) currentSnapshot() *dataset.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// buildReport recomputes the full report for one filter. Stateless per call.
func (d *Dashboard) buildReport(filter dataset.Filter) (processor.Report, error) {
	snapshot := d.currentSnapshot()
	if snapshot == nil {
		return processor.Report{}, fmt.Errorf("dataset not loaded yet")
	}
	scoped := &dataset.Snapshot{Dataset: snapshot.Dataset, Filter: filter}
	return processor.BuildReport(scoped, d.opts), nil
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := d.currentSnapshot()
	status := map[string]interface{}{
		"status":  "ok",
		"loaded":  snapshot != nil,
		"clients": d.hub.size(),
	}
	if snapshot != nil {
		status["matches"] = len(snapshot.Dataset.Matches)
		status["deliveries"] = len(snapshot.Dataset.Deliveries)
	}
	writeJSON(w, http.StatusOK, status)
}

func (d *Dashboard) handleFilters(w http.ResponseWriter, r *http.Request) {
	snapshot := d.currentSnapshot()
	if snapshot == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"seasons": snapshot.Dataset.Seasons(),
		"teams":   snapshot.Dataset.Teams(),
	})
}

func (d *Dashboard) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := d.buildReport(filterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (d *Dashboard) handleKPI(w http.ResponseWriter, r *http.Request) {
	report, err := d.buildReport(filterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.KPI)
}

func filterFromQuery(r *http.Request) dataset.Filter {
	q := r.URL.Query()
	return dataset.Filter{
		Season: q.Get("season"),
		Team:   q.Get("team"),
	}
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Dashboard: websocket upgrade failed: %v", err)
		return
	}

	client := &dashboardClient{
		conn:   conn,
		send:   make(chan []byte, 16),
		filter: filterFromQuery(r),
	}
	d.hub.register <- client

	go client.writePump()
	go d.readPump(client)

	// Initial report under the filter the client connected with.
	d.pushReport(client)
}

// readPump handles inbound filter messages, e.g.
// {"type":"filter","season":"2020","team":"All"}.
func (d *Dashboard) readPump(client *dashboardClient) {
	defer func() {
		d.hub.unregister <- client
		client.conn.Close()
	}()

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Dashboard: websocket read error: %v", err)
			}
			return
		}

		if gjson.GetBytes(raw, "type").String() != "filter" {
			continue
		}
		filter := dataset.Filter{
			Season: gjson.GetBytes(raw, "season").String(),
			Team:   gjson.GetBytes(raw, "team").String(),
		}

		client.mu.Lock()
		client.filter = filter
		client.mu.Unlock()

		d.pushReport(client)
	}
}

func (c *dashboardClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (d *Dashboard) pushReport(client *dashboardClient) {
	client.mu.RLock()
	filter := client.filter
	client.mu.RUnlock()

	report, err := d.buildReport(filter)
	if err != nil {
		return // nothing loaded yet; client will get data on the next refresh
	}

	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("Dashboard: error marshaling report: %v", err)
		return
	}

	select {
	case client.send <- payload:
	default:
		log.Printf("Dashboard: dropping report push, client send buffer full")
	}
}

// Close shuts the HTTP server down gracefully.
func (d *Dashboard) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Dashboard: error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
