package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues(CacheHit))
	setErrs := testutil.ToFloat64(cacheErrorsTotal.WithLabelValues("set"))

	ObserveCacheLookup(CacheHit)
	ObserveCacheLookup(CacheHit)
	ObserveCacheError("set")

	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues(CacheHit)) - hits; got != 2 {
		t.Errorf("expected 2 new cache hits, got %f", got)
	}
	if got := testutil.ToFloat64(cacheErrorsTotal.WithLabelValues("set")) - setErrs; got != 1 {
		t.Errorf("expected 1 new set error, got %f", got)
	}
}

func TestObserveFetch(t *testing.T) {
	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("ok"))
	bytesBefore := testutil.ToFloat64(fetchBytesTotal)

	ObserveFetch("ok", 512)
	ObserveFetch("ok", 0)

	if got := testutil.ToFloat64(fetchesTotal.WithLabelValues("ok")) - before; got != 2 {
		t.Errorf("expected 2 new fetches, got %f", got)
	}
	if got := testutil.ToFloat64(fetchBytesTotal) - bytesBefore; got != 512 {
		t.Errorf("expected 512 new bytes, got %f", got)
	}
}

func TestFetchSeriesIgnoreTargetHost(t *testing.T) {
	ObserveFetch("error", 0)
	ObserveFetch("ok", 10)

	if got := testutil.CollectAndCount(fetchesTotal); got > 2 {
		t.Errorf("expected at most 2 fetch series (ok, error), got %d", got)
	}
	if got := testutil.CollectAndCount(fetchBytesTotal); got != 1 {
		t.Errorf("expected a single fetch bytes series, got %d", got)
	}
}

func TestObserveAnalysis(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues("failure"))
	ObserveAnalysis("failure")
	if got := testutil.ToFloat64(analysesTotal.WithLabelValues("failure")) - before; got != 1 {
		t.Errorf("expected 1 new failure analysis, got %f", got)
	}
}
