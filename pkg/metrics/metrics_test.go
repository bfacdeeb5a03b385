package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSynthesis(t *testing.T) {
	before := testutil.ToFloat64(synthesesTotal.WithLabelValues("simple_text", ResultSuccess))
	ObserveSynthesis("simple_text", true)
	ObserveSynthesis("simple_text", true)
	ObserveSynthesis("title_card", false)

	if got := testutil.ToFloat64(synthesesTotal.WithLabelValues("simple_text", ResultSuccess)); got != before+2 {
		t.Errorf("simple_text successes = %v, want %v", got, before+2)
	}
	if got := testutil.ToFloat64(synthesesTotal.WithLabelValues("title_card", ResultFailure)); got < 1 {
		t.Errorf("title_card failures = %v, want >= 1", got)
	}
}

func TestObserveUploadAndValidation(t *testing.T) {
	ObserveUpload("youtube", false)
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("youtube", ResultFailure)); got < 1 {
		t.Errorf("youtube failures = %v", got)
	}

	before := testutil.ToFloat64(validationsTotal.WithLabelValues(ResultSuccess))
	ObserveValidation(true)
	if got := testutil.ToFloat64(validationsTotal.WithLabelValues(ResultSuccess)); got != before+1 {
		t.Errorf("valid verdicts = %v, want %v", got, before+1)
	}
}

func TestMarkRun(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	MarkRun(ts)
	if got := testutil.ToFloat64(lastRunTimestamp); got != float64(ts.Unix()) {
		t.Errorf("last run = %v, want %v", got, ts.Unix())
	}
}

func TestHandler(t *testing.T) {
	ObserveEncode(3 * time.Second)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"shortgen_synthesis_encode_seconds", "shortgen_publish_last_run_timestamp_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
