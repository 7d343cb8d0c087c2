// Package telemetry collects request and query metrics in memory and serves
// them in the Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config identifies the service in the exported build info.
type Config struct {
	ServiceName    string
	ServiceVersion string
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "claims-viewer"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

// histogram is a thread-safe histogram with fixed bucket boundaries. Bucket
// counts are non-cumulative in storage; cumulative counts are computed at
// export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits, updated with CAS
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			return
		}
	}
	// Above every boundary: only the +Inf bucket, which is the total count.
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := slices.Clone(h.bucketCounts)
	h.mu.Unlock()

	var running int64
	for i, c := range raw {
		running += c
		raw[i] = running
	}
	return raw
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(next)) {
			return
		}
	}
}

// histogramStore holds one histogram per label key.
type histogramStore struct {
	mu         sync.RWMutex
	boundaries []float64
	items      map[string]*histogram
}

func newHistogramStore(boundaries []float64) *histogramStore {
	return &histogramStore{boundaries: boundaries, items: make(map[string]*histogram)}
}

func (s *histogramStore) get(key string) *histogram {
	s.mu.RLock()
	h, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.items[key]; !ok {
		h = newHistogram(s.boundaries)
		s.items[key] = h
	}
	return h
}

func (s *histogramStore) lookup(key string) *histogram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[key]
}

func (s *histogramStore) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ---------------------------------------------------------------------------
// Counters
// ---------------------------------------------------------------------------

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{items: make(map[string]*int64)}
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if p, ok = s.items[key]; !ok {
			p = new(int64)
			s.items[key] = p
		}
		s.mu.Unlock()
	}
	atomic.AddInt64(p, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *counterStore) keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// defaultDurationBuckets are request duration boundaries in seconds.
var defaultDurationBuckets = []float64{
	0.005, 0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0,
}

// matchBuckets bound the number of claims a query matched.
var matchBuckets = []float64{0, 1, 10, 50, 100, 250, 1000}

type gaugeFunc struct {
	name string
	help string
	fn   func() float64
}

// Provider owns every metric the server exports.
type Provider struct {
	cfg Config

	active   int64
	requests *histogramStore
	queries  *counterStore
	matches  *histogramStore

	mu     sync.RWMutex
	gauges []gaugeFunc
}

func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:      cfg,
		requests: newHistogramStore(defaultDurationBuckets),
		queries:  newCounterStore(),
		matches:  newHistogramStore(matchBuckets),
	}
}

// GaugeFunc exports the value fn returns at scrape time. Registering a name
// twice replaces the earlier function.
func (p *Provider) GaugeFunc(name, help string, fn func() float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, g := range p.gauges {
		if g.name == name {
			p.gauges[i] = gaugeFunc{name, help, fn}
			return
		}
	}
	p.gauges = append(p.gauges, gaugeFunc{name, help, fn})
}

// ObserveQuery counts one run of the list pipeline. Empty labels are
// exported as "all" and "none" so every series has a value.
func (p *Provider) ObserveQuery(status, sortField string, matched int) {
	if status == "" {
		status = "all"
	}
	if sortField == "" {
		sortField = "none"
	}
	p.queries.inc(queryKey(status, sortField))
	p.matches.get("").Observe(float64(matched))
}

// QueryCount returns how many queries ObserveQuery saw with these labels.
func (p *Provider) QueryCount(status, sortField string) int64 {
	return p.queries.get(queryKey(status, sortField))
}

// RequestCount returns how many requests completed with these labels.
func (p *Provider) RequestCount(method, route, status string) int64 {
	h := p.requests.lookup(requestKey(method, route, status))
	if h == nil {
		return 0
	}
	return h.Count()
}

func (p *Provider) ActiveRequests() int64 {
	return atomic.LoadInt64(&p.active)
}

func requestKey(method, route, status string) string {
	return method + "|" + route + "|" + status
}

func queryKey(status, sortField string) string {
	return status + "|" + sortField
}

// MetricsMiddleware records the duration of every request, labeled by the
// matched route pattern rather than the raw path.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&p.active, 1)
			defer atomic.AddInt64(&p.active, -1)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			p.requests.get(requestKey(c.Request().Method, route, status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// PrometheusHandler serves every metric in the text exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP claims_viewer_build_info Build information.\n")
		b.WriteString("# TYPE claims_viewer_build_info gauge\n")
		fmt.Fprintf(&b, "claims_viewer_build_info{service=%q,version=%q} 1\n\n",
			p.cfg.ServiceName, p.cfg.ServiceVersion)

		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		for _, key := range p.requests.keys() {
			parts := strings.SplitN(key, "|", 3)
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeSingleHistogram(&b, "http_server_request_duration_seconds", labels, p.requests.lookup(key))
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_server_active_requests Number of in-flight HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", p.ActiveRequests())

		b.WriteString("# HELP claims_queries_total List queries by status filter and sort field.\n")
		b.WriteString("# TYPE claims_queries_total counter\n")
		for _, key := range p.queries.keys() {
			parts := strings.SplitN(key, "|", 2)
			fmt.Fprintf(&b, "claims_queries_total{status=%q,sort_field=%q} %d\n",
				parts[0], parts[1], p.queries.get(key))
		}
		b.WriteByte('\n')

		b.WriteString("# HELP claims_query_matches Claims matched per list query.\n")
		b.WriteString("# TYPE claims_query_matches histogram\n")
		if h := p.matches.lookup(""); h != nil {
			writeSingleHistogram(&b, "claims_query_matches", "", h)
		}
		b.WriteByte('\n')

		p.mu.RLock()
		gauges := slices.Clone(p.gauges)
		p.mu.RUnlock()
		for _, g := range gauges {
			fmt.Fprintf(&b, "# HELP %s %s\n", g.name, g.help)
			fmt.Fprintf(&b, "# TYPE %s gauge\n", g.name)
			fmt.Fprintf(&b, "%s %g\n\n", g.name, g.fn())
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
		return c.String(http.StatusOK, b.String())
	}
}

func writeSingleHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()

	prefix, suffix := "", ""
	if labels != "" {
		prefix = labels + ","
		suffix = "{" + labels + "}"
	}
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%sle=\"%g\"} %d\n", name, prefix, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%sle=\"+Inf\"} %d\n", name, prefix, total)
	fmt.Fprintf(b, "%s_sum%s %g\n", name, suffix, h.Sum())
	fmt.Fprintf(b, "%s_count%s %d\n", name, suffix, total)
}
