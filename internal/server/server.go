// Package server implements the gRPC termdict Dictionary service
package server

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nainya/termdict/internal/logger"
	"github.com/nainya/termdict/internal/metrics"
	"github.com/nainya/termdict/pkg/dictionary"
)

// Server implements the DictionaryServer interface
type Server struct {
	dict   *dictionary.Dictionary
	health *health.Server

	startTime time.Time
	mu        sync.Mutex
	opCounts  map[string]int64
}

// NewServer creates a new gRPC server instance
func NewServer(dict *dictionary.Dictionary) *Server {
	return &Server{
		dict:      dict,
		health:    health.NewServer(),
		startTime: time.Now(),
		opCounts:  make(map[string]int64),
	}
}

// NewGRPCServer creates a grpc.Server with the metrics interceptor and
// message size limits
func NewGRPCServer(m *metrics.Metrics, log *logger.Logger, maxMsgBytes int) *grpc.Server {
	return grpc.NewServer(
		grpc.ChainUnaryInterceptor(GrpcMetricsInterceptor(m, log)),
		grpc.MaxRecvMsgSize(maxMsgBytes),
		grpc.MaxSendMsgSize(maxMsgBytes),
	)
}

// Register adds the dictionary and health services to gs and marks both as
// serving
func (s *Server) Register(gs *grpc.Server) {
	RegisterDictionaryServer(gs, s)
	healthpb.RegisterHealthServer(gs, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown flips every health status to NOT_SERVING
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

func (s *Server) count(op string) {
	s.mu.Lock()
	s.opCounts[op]++
	s.mu.Unlock()
}

// errStatus maps dictionary errors onto gRPC codes
func errStatus(err error) error {
	switch {
	case errors.Is(err, dictionary.ErrEmptyTerm):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, dictionary.ErrCorrupt):
		return status.Errorf(codes.Internal, "dictionary corrupted: %v", err)
	default:
		return status.Errorf(codes.Internal, "dictionary operation failed: %v", err)
	}
}

// ========== Dictionary Operations ==========

func (s *Server) Put(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.count("Put")

	var item dictionary.Item
	if err := decodeStruct(req, &item); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid put request: %v", err)
	}

	replaced, err := s.dict.Put(item.Term, item.Value)
	if err != nil {
		return nil, errStatus(err)
	}
	return encodeStruct(putReply{Replaced: replaced})
}

func (s *Server) Get(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	s.count("Get")

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "term is required")
	}

	entry, ok := s.dict.Get(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.NotFound, "term not found: %s", req.GetValue())
	}
	return encodeStruct(entry)
}

func (s *Server) Delete(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	s.count("Delete")

	deleted, err := s.dict.Delete(req.GetValue())
	if err != nil {
		return nil, errStatus(err)
	}
	return wrapperspb.Bool(deleted), nil
}

func (s *Server) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.count("List")

	var opts dictionary.ListOptions
	if err := decodeStruct(req, &opts); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid list request: %v", err)
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit and offset must not be negative")
	}

	return encodeStruct(s.dict.List(opts))
}

// Snapshot returns the tree structure, or an empty struct for an empty
// dictionary
func (s *Server) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.count("Snapshot")

	root := s.dict.Snapshot()
	if root == nil {
		return &structpb.Struct{}, nil
	}
	return encodeStruct(root)
}

// ========== Health & Status ==========

func (s *Server) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.dict.Stats()

	s.mu.Lock()
	counts := maps.Clone(s.opCounts)
	s.mu.Unlock()

	return encodeStruct(StatsReply{
		Entries:         st.Entries,
		Height:          st.Height,
		Nodes:           st.Nodes,
		Leaves:          st.Leaves,
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
		OperationCounts: counts,
	})
}
