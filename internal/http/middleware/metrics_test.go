package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/policies/:id", func(c *gin.Context) { c.String(http.StatusOK, "p") })

	ok := httpReqs.WithLabelValues("GET", "/policies/:id", "200")
	missing := httpReqs.WithLabelValues("GET", "unmatched", "404")
	beforeOK, beforeMissing := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	serve(r, httptest.NewRequest(http.MethodGet, "/policies/a", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/policies/b", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(ok) - beforeOK; got != 2 {
		t.Fatalf("route counter delta=%v, want 2", got)
	}
	if got := testutil.ToFloat64(missing) - beforeMissing; got != 1 {
		t.Fatalf("unmatched counter delta=%v, want 1", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight=%v after requests finished", got)
	}
}

func TestDomainCounters(t *testing.T) {
	fresh := policiesCreated.WithLabelValues("false")
	replayed := policiesCreated.WithLabelValues("true")
	f0, r0 := testutil.ToFloat64(fresh), testutil.ToFloat64(replayed)

	PolicyCreated(false)
	PolicyCreated(true)
	PolicyCreated(true)

	if testutil.ToFloat64(fresh)-f0 != 1 || testutil.ToFloat64(replayed)-r0 != 2 {
		t.Fatalf("policies_created_total not split by replay")
	}

	r := gin.New()
	r.GET("/api/v1/dashboard", func(c *gin.Context) {
		StoreFailure(c)
		c.Status(http.StatusServiceUnavailable)
	})
	c0 := testutil.ToFloat64(storeFailures.WithLabelValues("/api/v1/dashboard"))
	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	if testutil.ToFloat64(storeFailures.WithLabelValues("/api/v1/dashboard"))-c0 != 1 {
		t.Fatalf("store failure not counted")
	}
}
