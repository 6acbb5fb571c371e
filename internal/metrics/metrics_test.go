package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestInterceptorCountsByCode(t *testing.T) {
	m := New()
	intercept := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/persons.v1.PersonService/GetPerson"}

	ok := func(context.Context, any) (any, error) { return "ok", nil }
	notFound := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "person not found")
	}

	_, err := intercept(context.Background(), nil, info, ok)
	require.NoError(t, err)
	_, err = intercept(context.Background(), nil, info, notFound)
	require.Error(t, err)
	_, err = intercept(context.Background(), nil, info, notFound)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues(info.FullMethod, "NotFound")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Requests.WithLabelValues("/x", "OK").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "persons_grpc_requests_total")
}

func TestIndependentInstances(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
