// Integration tests for the termdict gRPC server
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nainya/termdict/internal/logger"
	"github.com/nainya/termdict/internal/metrics"
	"github.com/nainya/termdict/pkg/dictionary"
)

const bufSize = 1024 * 1024

type testEnv struct {
	server  *Server
	client  *Client
	conn    *grpc.ClientConn
	dict    *dictionary.Dictionary
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Nop()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	dict := dictionary.New(dictionary.Options{Logger: log, Metrics: m, VerifyInvariants: true})

	srv := NewServer(dict)
	lis := bufconn.Listen(bufSize)
	grpcServer := NewGRPCServer(m, log, bufSize)
	srv.Register(grpcServer)

	go grpcServer.Serve(lis)

	bufDialer := func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(bufDialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		grpcServer.Stop()
		lis.Close()
	})

	return &testEnv{
		server:  srv,
		client:  NewClient(conn),
		conn:    conn,
		dict:    dict,
		metrics: m,
	}
}

func TestPutAndGet(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	replaced, err := env.client.Put(ctx, "کتاب", "book")
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = env.client.Put(ctx, "کتاب", "a book")
	require.NoError(t, err)
	assert.True(t, replaced)

	entry, err := env.client.Get(ctx, "کتاب")
	require.NoError(t, err)
	assert.Equal(t, "کتاب", entry.Term)
	assert.Equal(t, "a book", entry.Value)
	assert.Equal(t, uint64(1), entry.Hits)
	assert.False(t, entry.UpdatedAt.IsZero())
}

func TestPutEmptyTerm(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.client.Put(context.Background(), "  ", "x")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetMissing(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.client.Get(context.Background(), "nothing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = env.client.Get(context.Background(), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDelete(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.client.Put(ctx, "a", "1")
	require.NoError(t, err)

	deleted, err := env.client.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = env.client.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, 0, env.dict.Len())
}

func TestList(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := env.client.Put(ctx, fmt.Sprint(i), "")
		require.NoError(t, err)
	}

	page, err := env.client.List(ctx, dictionary.ListOptions{From: "5", Limit: 3, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, "6", page.Entries[0].Term)
	assert.Equal(t, "8", page.Entries[2].Term)
	assert.Equal(t, 8, page.Total)
	assert.True(t, page.HasMore)

	_, err = env.client.List(ctx, dictionary.ListOptions{Limit: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSnapshot(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	root, err := env.client.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, root)

	for _, term := range []string{"A", "B", "C", "D"} {
		_, err := env.client.Put(ctx, term, "")
		require.NoError(t, err)
	}

	root, err = env.client.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, []string{"C"}, root.Keys)
	assert.False(t, root.Leaf)
	require.Len(t, root.Children, 2)
	assert.Equal(t, []string{"A", "B"}, root.Children[0].Keys)
	assert.Equal(t, "< C", root.Children[0].Label)
	assert.Equal(t, []string{"D"}, root.Children[1].Keys)
	assert.Equal(t, "> C", root.Children[1].Label)
	assert.Equal(t, 1, root.Children[1].Depth)
}

func TestStats(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	for i := range 10 {
		_, err := env.client.Put(ctx, fmt.Sprint(i), "")
		require.NoError(t, err)
	}
	_, err := env.client.Get(ctx, "3")
	require.NoError(t, err)

	stats, err := env.client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Entries)
	assert.Equal(t, 2, stats.Height)
	assert.Equal(t, int64(10), stats.OperationCounts["Put"])
	assert.Equal(t, int64(1), stats.OperationCounts["Get"])
}

func TestInterceptorRecordsMetrics(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.client.Put(ctx, "x", "")
	require.NoError(t, err)
	_, err = env.client.Get(ctx, "missing")
	require.Error(t, err)

	put := env.metrics.GrpcRequestsTotal.WithLabelValues(fullMethod("Put"), codes.OK.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(put))
	miss := env.metrics.GrpcRequestsTotal.WithLabelValues(fullMethod("Get"), codes.NotFound.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(miss))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.GrpcRequestsInFlight))
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	health := healthpb.NewHealthClient(env.conn)

	resp, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	env.server.Shutdown()
	resp, err = health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestObservabilityEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	dict := dictionary.New(dictionary.Options{Logger: logger.Nop(), Metrics: m})
	for _, term := range []string{"A", "B", "C", "D"} {
		_, err := dict.Put(term, "")
		require.NoError(t, err)
	}

	obs := NewObservabilityServer(0, reg, dict, logger.Nop())
	ts := httptest.NewServer(obs.Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "termdict")

	code, _ = get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	obs.SetReady(true)
	code, _ = get("/ready")
	assert.Equal(t, http.StatusOK, code)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "termdict_dict_entries 4")

	code, body = get("/tree")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "### size(4)"), body)

	code, body = get("/tree?format=json")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"label":"< C"`)
}
