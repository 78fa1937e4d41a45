// Package testutil provides testing utilities for the arbitrage pipeline.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// QuoteFixture holds the raw string values for one <type> entry, the
// way the goonmetrics API transmits them.
type QuoteFixture struct {
	ID             int32
	Updated        string
	WeeklyMovement string
	BuyListed      string
	BuyMax         string
	SellListed     string
	SellMin        string
}

// StationBehavior overrides the default response for one station id.
type StationBehavior struct {
	StatusCode int
	RawBody    string
	Delay      time.Duration
}

// MockGoonmetrics is a configurable mock goonmetrics server. It serves
// /api/price_data/ and answers each request with the subset of the
// station's registered quotes whose ids appear in the type_id
// parameter, mirroring the real API's batch semantics.
type MockGoonmetrics struct {
	server    *httptest.Server
	mu        sync.RWMutex
	stations  map[string][]QuoteFixture
	behaviors map[string]StationBehavior

	// Tracking
	RequestCount int
	BatchSizes   []int
}

// NewMockGoonmetrics creates a new mock goonmetrics server.
func NewMockGoonmetrics() *MockGoonmetrics {
	mock := &MockGoonmetrics{
		stations:  make(map[string][]QuoteFixture),
		behaviors: make(map[string]StationBehavior),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server base URL.
func (m *MockGoonmetrics) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGoonmetrics) Close() {
	m.server.Close()
}

// SetStation registers the quote fixtures served for a station id.
func (m *MockGoonmetrics) SetStation(stationID string, quotes []QuoteFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[stationID] = quotes
}

// SetBehavior overrides the response for a station id, for failure
// injection (non-200 status, malformed body, slow responses).
func (m *MockGoonmetrics) SetBehavior(stationID string, b StationBehavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviors[stationID] = b
}

// GetRequestCount returns the number of price_data requests served.
func (m *MockGoonmetrics) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetBatchSizes returns the id-count of every request served, in
// arrival order.
func (m *MockGoonmetrics) GetBatchSizes() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sizes := make([]int, len(m.BatchSizes))
	copy(sizes, m.BatchSizes)
	return sizes
}

func (m *MockGoonmetrics) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/price_data/" {
		http.NotFound(w, r)
		return
	}

	stationID := r.URL.Query().Get("station_id")
	requestedIDs := parseTypeIDs(r.URL.Query().Get("type_id"))

	m.mu.Lock()
	m.RequestCount++
	m.BatchSizes = append(m.BatchSizes, len(requestedIDs))
	behavior, hasBehavior := m.behaviors[stationID]
	fixtures := m.stations[stationID]
	m.mu.Unlock()

	if hasBehavior {
		if behavior.Delay > 0 {
			time.Sleep(behavior.Delay)
		}
		if behavior.StatusCode != 0 && behavior.StatusCode != http.StatusOK {
			w.WriteHeader(behavior.StatusCode)
			return
		}
		if behavior.RawBody != "" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, behavior.RawBody)
			return
		}
	}

	var body strings.Builder
	body.WriteString("<goonmetrics><price_data>")
	for _, f := range fixtures {
		if !requestedIDs[f.ID] {
			continue
		}
		fmt.Fprintf(&body,
			`<type id="%d" updated="%s"><all><weekly_movement>%s</weekly_movement></all>`+
				`<buy><listed>%s</listed><max>%s</max></buy>`+
				`<sell><listed>%s</listed><min>%s</min></sell></type>`,
			f.ID, f.Updated, f.WeeklyMovement, f.BuyListed, f.BuyMax, f.SellListed, f.SellMin)
	}
	body.WriteString("</price_data></goonmetrics>")

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body.String())
}

// parseTypeIDs reads the comma-separated type_id parameter, tolerating
// the trailing comma the client sends.
func parseTypeIDs(raw string) map[int32]bool {
	ids := make(map[int32]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var id int32
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			ids[id] = true
		}
	}
	return ids
}

// NewHealthyQuote returns a fixture with plausible values for tests
// that only care about presence, not arithmetic.
func NewHealthyQuote(id int32) QuoteFixture {
	return QuoteFixture{
		ID:             id,
		Updated:        "2024-05-03T13:36:22Z",
		WeeklyMovement: "100",
		BuyListed:      "10",
		BuyMax:         "1000000",
		SellListed:     "20",
		SellMin:        "1200000",
	}
}
