package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("create", "success")
	m.ObserveOperation("create", "success")
	m.ObserveOperation("create", "conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.couponOps.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.couponOps.WithLabelValues("create", "conflict")))
}

func TestRequestLifecycle(t *testing.T) {
	m := New()

	m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInflight))

	m.RequestFinished("GET", "/api/coupons", "200", 0.01)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpReqs.WithLabelValues("GET", "/api/coupons", "200")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveOperation("delete", "not_found")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `coupon_operations_total{operation="delete",outcome="not_found"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	}, "each instance owns its registry")
}
