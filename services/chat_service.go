package services

import (
	"context"
	"time"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
)

// TurnRunner executes one customer turn.
type TurnRunner interface {
	Turn(ctx context.Context, reporter agentboot.ProgressReporter, sessionID, text string) (*agentboot.TurnResult, error)
}

// ChatServer is the booking.v1.Chat service. Requests are
// {session_id, text}; responses carry the fields of agentboot.TurnResult.
type ChatServer interface {
	Turn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StreamTurn(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

type ChatService struct {
	agent TurnRunner
}

func ProvideChatService(agent TurnRunner) *ChatService {
	return &ChatService{agent: agent}
}

func (s *ChatService) Turn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, text := turnRequest(req)
	result, err := s.agent.Turn(ctx, nil, sessionID, text)
	if err != nil {
		return nil, grpcError(err)
	}
	return structpb.NewStruct(result.Fields())
}

func (s *ChatService) StreamTurn(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	sessionID, text := turnRequest(req)
	reporter := &agentboot.GrpcProgressReporter{Stream: stream}
	if _, err := s.agent.Turn(stream.Context(), reporter, sessionID, text); err != nil {
		logger.Error("Streamed turn failed", zap.String("session", sessionID), zap.Error(err))
		return grpcError(err)
	}
	return nil
}

func turnRequest(req *structpb.Struct) (string, string) {
	fields := req.GetFields()
	return fields["session_id"].GetStringValue(), fields["text"].GetStringValue()
}

const (
	chatServiceName      = "booking.v1.Chat"
	chatTurnMethod       = "/booking.v1.Chat/Turn"
	chatStreamTurnMethod = "/booking.v1.Chat/StreamTurn"
)

var ChatServiceDesc = grpc.ServiceDesc{
	ServiceName: chatServiceName,
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Turn", Handler: chatTurnHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamTurn", Handler: chatStreamTurnHandler, ServerStreams: true},
	},
	Metadata: "booking/v1/chat.proto",
}

func RegisterChatServer(s grpc.ServiceRegistrar, srv ChatServer) {
	s.RegisterService(&ChatServiceDesc, srv)
}

func chatTurnHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServer).Turn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: chatTurnMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatServer).Turn(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func chatStreamTurnHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServer).StreamTurn(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// StreamingOptions are the server options for long lived turn streams.
func StreamingOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(4 * 1024 * 1024),
		grpc.MaxSendMsgSize(4 * 1024 * 1024),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAgeGrace: 10 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	}
}
