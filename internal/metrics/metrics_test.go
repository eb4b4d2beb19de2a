package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamavenir/auradm/internal/api"
)

func TestRecorderCounts(t *testing.T) {
	m := New()
	m.ObservePass(120*time.Millisecond, api.KindNone)
	m.ObservePass(80*time.Millisecond, api.KindTransport)
	m.ObserveDiscard("suppressed")
	m.ObserveDiscard("suppressed")
	m.ObserveCommentRender(false)

	if got := testutil.ToFloat64(m.PassesTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok passes: got %v want 1", got)
	}
	if got := testutil.ToFloat64(m.PassesTotal.WithLabelValues("transport")); got != 1 {
		t.Fatalf("transport passes: got %v want 1", got)
	}
	if got := testutil.ToFloat64(m.DiscardsTotal.WithLabelValues("suppressed")); got != 2 {
		t.Fatalf("suppressed: got %v want 2", got)
	}
	if got := testutil.ToFloat64(m.CommentRenders.WithLabelValues("skipped")); got != 1 {
		t.Fatalf("skipped renders: got %v want 1", got)
	}
}

func TestRequestPathsAreNormalized(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/dm/threads/12/messages/", 200, nil)
	m.ObserveRequest("GET", "/dm/threads/99/messages/", 200, nil)
	m.ObserveRequest("GET", "/dm/threads/", 0, io.EOF)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/dm/threads/{id}/messages/", "200")); got != 2 {
		t.Fatalf("normalized requests: got %v want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/dm/threads/", "error")); got != 1 {
		t.Fatalf("failed requests: got %v want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveDiscard("stale")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `auradm_discarded_results_total{reason="stale"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", rec.Body.String())
	}
}
