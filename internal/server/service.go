// Service descriptor and wire messages for termdict.v1.Dictionary
package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "termdict.v1.Dictionary"

// DictionaryServer is the server API for the Dictionary service. Requests
// and replies are protobuf well-known types; structured payloads travel as
// google.protobuf.Struct.
type DictionaryServer interface {
	Put(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Delete(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the Dictionary service for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DictionaryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[structpb.Struct]("Put", DictionaryServer.Put),
		unary[wrapperspb.StringValue]("Get", DictionaryServer.Get),
		unary[wrapperspb.StringValue]("Delete", DictionaryServer.Delete),
		unary[structpb.Struct]("List", DictionaryServer.List),
		unary[emptypb.Empty]("Snapshot", DictionaryServer.Snapshot),
		unary[emptypb.Empty]("Stats", DictionaryServer.Stats),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterDictionaryServer registers srv on s
func RegisterDictionaryServer(s grpc.ServiceRegistrar, srv DictionaryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method handler that decodes a Req, runs the interceptor
// chain and dispatches to call
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](name string, call func(DictionaryServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DictionaryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DictionaryServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type putReply struct {
	Replaced bool `json:"replaced"`
}

// StatsReply is the payload of the Stats method
type StatsReply struct {
	Entries         int              `json:"entries"`
	Height          int              `json:"height"`
	Nodes           int              `json:"nodes"`
	Leaves          int              `json:"leaves"`
	UptimeSeconds   int64            `json:"uptimeSeconds"`
	OperationCounts map[string]int64 `json:"operationCounts"`
}

// encodeStruct converts a JSON-tagged Go value into a Struct
func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeStruct fills a JSON-tagged Go value from a Struct
func decodeStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
