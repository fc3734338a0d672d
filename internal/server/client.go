// Client for the termdict Dictionary service
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nainya/termdict/pkg/dictionary"
)

// Client calls a remote Dictionary service over an established connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Put stores value under term and reports whether a value was replaced
func (c *Client) Put(ctx context.Context, term, value string, opts ...grpc.CallOption) (bool, error) {
	req, err := encodeStruct(dictionary.Item{Term: term, Value: value})
	if err != nil {
		return false, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Put"), req, out, opts...); err != nil {
		return false, err
	}

	var reply putReply
	if err := decodeStruct(out, &reply); err != nil {
		return false, err
	}
	return reply.Replaced, nil
}

// Get looks term up. A missing term yields a NotFound status error.
func (c *Client) Get(ctx context.Context, term string, opts ...grpc.CallOption) (dictionary.Entry, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Get"), wrapperspb.String(term), out, opts...); err != nil {
		return dictionary.Entry{}, err
	}

	var entry dictionary.Entry
	if err := decodeStruct(out, &entry); err != nil {
		return dictionary.Entry{}, err
	}
	return entry, nil
}

// Delete removes term and reports whether it was stored
func (c *Client) Delete(ctx context.Context, term string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, fullMethod("Delete"), wrapperspb.String(term), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

// List fetches one page of entries in natural order
func (c *Client) List(ctx context.Context, lo dictionary.ListOptions, opts ...grpc.CallOption) (dictionary.Page, error) {
	req, err := encodeStruct(lo)
	if err != nil {
		return dictionary.Page{}, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("List"), req, out, opts...); err != nil {
		return dictionary.Page{}, err
	}

	var page dictionary.Page
	if err := decodeStruct(out, &page); err != nil {
		return dictionary.Page{}, err
	}
	return page, nil
}

// Snapshot fetches the tree structure. It returns nil for an empty
// dictionary.
func (c *Client) Snapshot(ctx context.Context, opts ...grpc.CallOption) (*dictionary.SnapshotNode, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Snapshot"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	if len(out.GetFields()) == 0 {
		return nil, nil
	}

	root := new(dictionary.SnapshotNode)
	if err := decodeStruct(out, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Stats fetches tree shape and per-method call counts
func (c *Client) Stats(ctx context.Context, opts ...grpc.CallOption) (StatsReply, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Stats"), &emptypb.Empty{}, out, opts...); err != nil {
		return StatsReply{}, err
	}

	var reply StatsReply
	if err := decodeStruct(out, &reply); err != nil {
		return StatsReply{}, err
	}
	return reply, nil
}
