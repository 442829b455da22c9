package dmv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MessageService_SendMessage_FullMethodName       = "/dm.v1.MessageService/SendMessage"
	MessageService_FetchMessages_FullMethodName     = "/dm.v1.MessageService/FetchMessages"
	MessageService_MarkRead_FullMethodName          = "/dm.v1.MessageService/MarkRead"
	MessageService_ListConversations_FullMethodName = "/dm.v1.MessageService/ListConversations"
	MessageService_PutProfile_FullMethodName        = "/dm.v1.MessageService/PutProfile"
)

type MessageServiceServer interface {
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	FetchMessages(context.Context, *FetchMessagesRequest) (*FetchMessagesResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error)
	PutProfile(context.Context, *PutProfileRequest) (*PutProfileResponse, error)
}

// UnimplementedMessageServiceServer can be embedded to stay forward compatible.
type UnimplementedMessageServiceServer struct{}

func (UnimplementedMessageServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedMessageServiceServer) FetchMessages(context.Context, *FetchMessagesRequest) (*FetchMessagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchMessages not implemented")
}
func (UnimplementedMessageServiceServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MarkRead not implemented")
}
func (UnimplementedMessageServiceServer) ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListConversations not implemented")
}
func (UnimplementedMessageServiceServer) PutProfile(context.Context, *PutProfileRequest) (*PutProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PutProfile not implemented")
}

func RegisterMessageServiceServer(s grpc.ServiceRegistrar, srv MessageServiceServer) {
	s.RegisterService(&MessageService_ServiceDesc, srv)
}

// unaryHandler builds the method handler of one unary RPC.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(MessageServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MessageServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MessageServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var MessageService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dm.v1.MessageService",
	HandlerType: (*MessageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendMessage",
			Handler:    unaryHandler(MessageService_SendMessage_FullMethodName, MessageServiceServer.SendMessage),
		},
		{
			MethodName: "FetchMessages",
			Handler:    unaryHandler(MessageService_FetchMessages_FullMethodName, MessageServiceServer.FetchMessages),
		},
		{
			MethodName: "MarkRead",
			Handler:    unaryHandler(MessageService_MarkRead_FullMethodName, MessageServiceServer.MarkRead),
		},
		{
			MethodName: "ListConversations",
			Handler:    unaryHandler(MessageService_ListConversations_FullMethodName, MessageServiceServer.ListConversations),
		},
		{
			MethodName: "PutProfile",
			Handler:    unaryHandler(MessageService_PutProfile_FullMethodName, MessageServiceServer.PutProfile),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dm/v1/message_service",
}

type MessageServiceClient interface {
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	FetchMessages(ctx context.Context, in *FetchMessagesRequest, opts ...grpc.CallOption) (*FetchMessagesResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error)
	PutProfile(ctx context.Context, in *PutProfileRequest, opts ...grpc.CallOption) (*PutProfileResponse, error)
}

type messageServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMessageServiceClient(cc grpc.ClientConnInterface) MessageServiceClient {
	return &messageServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *messageServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, MessageService_SendMessage_FullMethodName, in, opts)
}

func (c *messageServiceClient) FetchMessages(ctx context.Context, in *FetchMessagesRequest, opts ...grpc.CallOption) (*FetchMessagesResponse, error) {
	return invoke[FetchMessagesResponse](ctx, c.cc, MessageService_FetchMessages_FullMethodName, in, opts)
}

func (c *messageServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	return invoke[MarkReadResponse](ctx, c.cc, MessageService_MarkRead_FullMethodName, in, opts)
}

func (c *messageServiceClient) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error) {
	return invoke[ListConversationsResponse](ctx, c.cc, MessageService_ListConversations_FullMethodName, in, opts)
}

func (c *messageServiceClient) PutProfile(ctx context.Context, in *PutProfileRequest, opts ...grpc.CallOption) (*PutProfileResponse, error) {
	return invoke[PutProfileResponse](ctx, c.cc, MessageService_PutProfile_FullMethodName, in, opts)
}
