package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestCounterConcurrent(t *testing.T) {
	r := NewRegistry("test", "")
	c := r.Counter("events_total", "events")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()

	if c.Value() != 1000 {
		t.Errorf("expected 1000, got %d", c.Value())
	}
	if c.Name() != "test_events_total" {
		t.Errorf("unexpected name %q", c.Name())
	}
}

func TestRegistryReturnsSameMetric(t *testing.T) {
	r := NewRegistry("", "sub")
	a := r.Counter("x", "help")
	b := r.Counter("x", "other help")
	if a != b {
		t.Error("registering the same name twice should return the same counter")
	}
	if r.Gauge("depth", "") != r.Gauge("depth", "") {
		t.Error("registering the same gauge twice should return the same gauge")
	}
}

func TestHistogramBuckets(t *testing.T) {
	r := NewRegistry("kbd", "")
	h := r.Histogram("batch", "batch sizes", []float64{4, 1, 2})

	for _, v := range []float64{1, 2, 3, 100} {
		h.Observe(v)
	}

	if h.Count() != 4 {
		t.Errorf("expected 4 observations, got %d", h.Count())
	}
	if h.Sum() != 106 {
		t.Errorf("expected sum 106, got %v", h.Sum())
	}

	var buf bytes.Buffer
	if err := r.WritePrometheus(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`kbd_batch_bucket{le="1"} 1`,
		`kbd_batch_bucket{le="2"} 2`,
		`kbd_batch_bucket{le="4"} 3`,
		`kbd_batch_bucket{le="+Inf"} 4`,
		`kbd_batch_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWritePrometheusSorted(t *testing.T) {
	r := NewRegistry("kbd", "")
	r.Counter("b_total", "b").Add(2)
	r.Counter("a_total", "a").Inc()
	r.Gauge("depth", "d").Set(7)

	var buf bytes.Buffer
	if err := r.WritePrometheus(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Index(out, "kbd_a_total") > strings.Index(out, "kbd_b_total") {
		t.Error("counters should be sorted by name")
	}
	if !strings.Contains(out, "kbd_depth 7") {
		t.Errorf("missing gauge value in:\n%s", out)
	}
}

func TestKeyboardMetrics(t *testing.T) {
	r := NewRegistry("ps2kbd", "")
	m := NewKeyboardMetrics(r)

	m.CodesDropped.Inc()
	m.QueueDepth.Set(3)

	snap := r.Snapshot()
	if snap["ps2kbd_scancodes_dropped_total"] != 1 {
		t.Errorf("expected dropped 1, got %d", snap["ps2kbd_scancodes_dropped_total"])
	}
	if snap["ps2kbd_queue_depth"] != 3 {
		t.Errorf("expected depth 3, got %d", snap["ps2kbd_queue_depth"])
	}
	if m.Registry() != r {
		t.Error("metrics should live in the given registry")
	}
}

func TestHTTPHandler(t *testing.T) {
	r := NewRegistry("ps2kbd", "")
	r.Counter("chars_emitted_total", "chars").Add(5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.HTTPHandler().ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "ps2kbd_chars_emitted_total 5") {
		t.Errorf("unexpected body:\n%s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	r.HTTPHandler().ServeHTTP(rec, req)

	var got map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if got["ps2kbd_chars_emitted_total"] != 5 {
		t.Errorf("expected 5, got %d", got["ps2kbd_chars_emitted_total"])
	}
}
