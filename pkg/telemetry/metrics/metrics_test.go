package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"bqdigital/housekeeper/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		DurationBuckets: []float64{0.1, 1, 10},
	}
}

func TestCollector_RecordDestroyed(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordDestroyed("page")
	c.RecordDestroyed("page")
	c.RecordDestroyed("object")

	if got := testutil.ToFloat64(c.recordsDestroyed.WithLabelValues("page")); got != 2 {
		t.Errorf("expected 2 pages, got %v", got)
	}
	if got := testutil.ToFloat64(c.recordsDestroyed.WithLabelValues("object")); got != 1 {
		t.Errorf("expected 1 object, got %v", got)
	}
}

func TestCollector_RecordTaskRun(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.RecordTaskRun("clear", "success", 2*time.Second)
	c.RecordTaskRun("clear", "failed", 500*time.Millisecond)

	if got := testutil.ToFloat64(c.taskRuns.WithLabelValues("clear", "success")); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(c.taskRuns.WithLabelValues("clear", "failed")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.CollectAndCount(c.taskDuration); got != 1 {
		t.Errorf("expected 1 duration series, got %d", got)
	}
	if got := testutil.ToFloat64(c.lastSuccess.WithLabelValues("clear")); got <= 0 {
		t.Errorf("expected last success timestamp, got %v", got)
	}
}

func TestCollector_RecordTaskSkipped(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())
	c.RecordTaskSkipped("trim")

	expected := `
# HELP test_tasks_skipped_total Total number of task runs skipped because a previous run was still in progress
# TYPE test_tasks_skipped_total counter
test_tasks_skipped_total{task="trim"} 1
`
	if err := testutil.CollectAndCompare(c.tasksSkipped, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordDestroyed("object")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `test_records_destroyed_total{kind="object"} 1`) {
		t.Errorf("expected destroyed counter in output, got:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected Go runtime metrics in default registry")
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())
	c.RecordDestroyed("page")

	mfs, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "housekeeper_records_destroyed_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected default namespace housekeeper")
	}
}
