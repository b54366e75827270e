package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/metrics"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store/storetest"
)

func TestInstrumentedGatewayContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Gateway {
		return metrics.New(prometheus.NewRegistry()).Instrument(store.NewInMemoryStore())
	})
}

func TestCallsAreCountedByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	fake := storetest.NewFake()
	fake.Seed(store.Fields{Name: "Ana", Email: "a@x.com"})
	gw := metrics.New(reg).Instrument(fake)
	ctx := context.Background()

	_, err := gw.FetchAll(ctx)
	require.NoError(t, err)
	_, err = gw.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	fake.Fail(store.OpDelete, nil)
	require.Error(t, gw.DeleteByID(ctx, "x"))

	expected := `
# HELP userdir_gateway_calls_total Gateway calls by operation and result.
# TYPE userdir_gateway_calls_total counter
userdir_gateway_calls_total{op="delete",result="error"} 1
userdir_gateway_calls_total{op="fetch-all",result="ok"} 1
userdir_gateway_calls_total{op="get",result="not_found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "userdir_gateway_calls_total"))

	expectedUsers := `
# HELP userdir_fetched_users Number of users returned by the last successful FetchAll.
# TYPE userdir_fetched_users gauge
userdir_fetched_users 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expectedUsers), "userdir_fetched_users"))
	n, err := testutil.GatherAndCount(reg, "userdir_gateway_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCloseReachesWrappedGateway(t *testing.T) {
	fake := storetest.NewFake()
	gw := metrics.New(prometheus.NewRegistry()).Instrument(fake)

	require.NoError(t, gw.Close())
	assert.True(t, fake.Closed())
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	gw := metrics.New(reg).Instrument(store.NewInMemoryStore())
	_, err := gw.FetchAll(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `userdir_gateway_calls_total{op="fetch-all",result="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
