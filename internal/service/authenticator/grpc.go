package authenticator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const metadataAuthorization = "authorization"

// Unary interceptor adding authorization metadata to every call
func UnaryClientInterceptor(source tokenSource) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(withToken(ctx, source), method, req, reply, cc, opts...)
	}
}

// Stream interceptor adding authorization metadata when the stream is opened
func StreamClientInterceptor(source tokenSource) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		return streamer(withToken(ctx, source), desc, cc, method, opts...)
	}
}

func withToken(ctx context.Context, source tokenSource) context.Context {
	value := bearer(source)
	if value == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, metadataAuthorization, value)
}
