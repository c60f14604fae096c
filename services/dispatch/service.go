package dispatch

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName gRPC 服务全名
	ServiceName = "confutils.v1.Command"

	invokeMethod = "/" + ServiceName + "/Invoke"
	listMethod   = "/" + ServiceName + "/List"
)

// CommandServer 服务端接口
type CommandServer interface {
	// Invoke 请求 {"name": string, "args": object, "timeoutSeconds": number}，响应 {"output": string}
	Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// List 响应 {"commands": [string]}
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(CommandServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CommandServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CommandServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc 手写的服务描述，消息统一使用 google.protobuf.Struct
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    unaryHandler(invokeMethod, CommandServer.Invoke),
		},
		{
			MethodName: "List",
			Handler:    unaryHandler(listMethod, CommandServer.List),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "confutils/v1/command.proto",
}

// Client GUI 侧调用方
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient 基于已有连接创建
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Invoke 调用单个操作并返回 output
func (c *Client) Invoke(ctx context.Context, name string, args map[string]any, opts ...grpc.CallOption) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	in, err := structpb.NewStruct(map[string]any{"name": name, "args": args})
	if err != nil {
		return "", err
	}
	out := new(structpb.Struct)
	if err = c.cc.Invoke(ctx, invokeMethod, in, out, opts...); err != nil {
		return "", err
	}
	return out.GetFields()["output"].GetStringValue(), nil
}

// List 返回支持的操作名称
func (c *Client) List(ctx context.Context, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	values := out.GetFields()["commands"].GetListValue().GetValues()
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.GetStringValue())
	}
	return names, nil
}
