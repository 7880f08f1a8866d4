package enginepb

// Hand-written in the shape protoc-gen-go-grpc would produce for the
// Engine service in engine.proto, since this repo has no protoc step.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Engine_PlaceOrder_FullMethodName    = "/enginepb.Engine/PlaceOrder"
	Engine_CancelOrder_FullMethodName   = "/enginepb.Engine/CancelOrder"
	Engine_AmendOrder_FullMethodName    = "/enginepb.Engine/AmendOrder"
	Engine_Control_FullMethodName       = "/enginepb.Engine/Control"
	Engine_StreamEvents_FullMethodName  = "/enginepb.Engine/StreamEvents"
)

// EngineClient is the client API for the Engine service.
type EngineClient interface {
	PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*CommandAck, error)
	CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CommandAck, error)
	AmendOrder(ctx context.Context, in *AmendOrderRequest, opts ...grpc.CallOption) (*CommandAck, error)
	Control(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*CommandAck, error)
	StreamEvents(ctx context.Context, in *StreamEventsRequest, opts ...grpc.CallOption) (Engine_StreamEventsClient, error)
}

type engineClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineClient(cc grpc.ClientConnInterface) EngineClient {
	return &engineClient{cc}
}

func (c *engineClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*CommandAck, error) {
	out := new(CommandAck)
	if err := c.cc.Invoke(ctx, Engine_PlaceOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CommandAck, error) {
	out := new(CommandAck)
	if err := c.cc.Invoke(ctx, Engine_CancelOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) AmendOrder(ctx context.Context, in *AmendOrderRequest, opts ...grpc.CallOption) (*CommandAck, error) {
	out := new(CommandAck)
	if err := c.cc.Invoke(ctx, Engine_AmendOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) Control(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*CommandAck, error) {
	out := new(CommandAck)
	if err := c.cc.Invoke(ctx, Engine_Control_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) StreamEvents(ctx context.Context, in *StreamEventsRequest, opts ...grpc.CallOption) (Engine_StreamEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "StreamEvents",
		ServerStreams: true,
	}, Engine_StreamEvents_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &engineStreamEventsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Engine_StreamEventsClient interface {
	Recv() (*EventMessage, error)
	grpc.ClientStream
}

type engineStreamEventsClient struct {
	grpc.ClientStream
}

func (x *engineStreamEventsClient) Recv() (*EventMessage, error) {
	m := new(EventMessage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// EngineServer is the server API for the Engine service.
type EngineServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*CommandAck, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CommandAck, error)
	AmendOrder(context.Context, *AmendOrderRequest) (*CommandAck, error)
	Control(context.Context, *ControlRequest) (*CommandAck, error)
	StreamEvents(*StreamEventsRequest, Engine_StreamEventsServer) error
}

// UnimplementedEngineServer lets server implementations embed this
// instead of defining every method, matching the forward-compatible
// shape generated servers use.
type UnimplementedEngineServer struct{}

func (UnimplementedEngineServer) PlaceOrder(context.Context, *PlaceOrderRequest) (*CommandAck, error) {
	return nil, status.Error(codes.Unimplemented, "method PlaceOrder not implemented")
}
func (UnimplementedEngineServer) CancelOrder(context.Context, *CancelOrderRequest) (*CommandAck, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelOrder not implemented")
}
func (UnimplementedEngineServer) AmendOrder(context.Context, *AmendOrderRequest) (*CommandAck, error) {
	return nil, status.Error(codes.Unimplemented, "method AmendOrder not implemented")
}
func (UnimplementedEngineServer) Control(context.Context, *ControlRequest) (*CommandAck, error) {
	return nil, status.Error(codes.Unimplemented, "method Control not implemented")
}
func (UnimplementedEngineServer) StreamEvents(*StreamEventsRequest, Engine_StreamEventsServer) error {
	return status.Error(codes.Unimplemented, "method StreamEvents not implemented")
}

func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&Engine_ServiceDesc, srv)
}

func _Engine_PlaceOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PlaceOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Engine_PlaceOrder_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EngineServer).PlaceOrder(ctx, req.(*PlaceOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Engine_CancelOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Engine_CancelOrder_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EngineServer).CancelOrder(ctx, req.(*CancelOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Engine_AmendOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AmendOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).AmendOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Engine_AmendOrder_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EngineServer).AmendOrder(ctx, req.(*AmendOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Engine_Control_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ControlRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Control(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Engine_Control_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EngineServer).Control(ctx, req.(*ControlRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type Engine_StreamEventsServer interface {
	Send(*EventMessage) error
	grpc.ServerStream
}

type engineStreamEventsServer struct {
	grpc.ServerStream
}

func (x *engineStreamEventsServer) Send(m *EventMessage) error {
	return x.ServerStream.SendMsg(m)
}

func _Engine_StreamEvents_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(StreamEventsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(EngineServer).StreamEvents(m, &engineStreamEventsServer{stream})
}

var Engine_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "enginepb.Engine",
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: _Engine_PlaceOrder_Handler},
		{MethodName: "CancelOrder", Handler: _Engine_CancelOrder_Handler},
		{MethodName: "AmendOrder", Handler: _Engine_AmendOrder_Handler},
		{MethodName: "Control", Handler: _Engine_Control_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			Handler:       _Engine_StreamEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "engine.proto",
}
