package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
)

const (
	// PlannerServiceName is the fully qualified gRPC service name
	PlannerServiceName = "colony.v1.Planner"

	// EvaluateStepMethod is the full method path of EvaluateStep
	EvaluateStepMethod = "/" + PlannerServiceName + "/EvaluateStep"
)

// PlannerService evaluates spawn steps for remote callers. Payloads are
// google.protobuf.Struct so no generated code is needed on either side.
type PlannerService interface {
	EvaluateStep(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var plannerServiceDesc = grpc.ServiceDesc{
	ServiceName: PlannerServiceName,
	HandlerType: (*PlannerService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EvaluateStep",
			Handler:    evaluateStepHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "colony/v1/planner.proto",
}

func evaluateStepHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlannerService).EvaluateStep(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateStepMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PlannerService).EvaluateStep(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterPlannerService registers impl on s
func RegisterPlannerService(s grpc.ServiceRegistrar, impl PlannerService) {
	s.RegisterService(&plannerServiceDesc, impl)
}

// PlannerServer exposes the planning pipeline over a unix domain socket
type PlannerServer struct {
	mediator common.Mediator
	listener net.Listener
	server   *grpc.Server

	stopOnce sync.Once
}

// NewPlannerServer listens on socketPath, replacing any stale socket file.
// logger, when not nil, is attached to the context of every call.
func NewPlannerServer(mediator common.Mediator, socketPath string, logger common.StepLogger) (*PlannerServer, error) {
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return NewPlannerServerWithListener(mediator, listener, logger), nil
}

// NewPlannerServerWithListener serves on an existing listener
func NewPlannerServerWithListener(mediator common.Mediator, listener net.Listener, logger common.StepLogger) *PlannerServer {
	var opts []grpc.ServerOption
	if logger != nil {
		opts = append(opts, grpc.UnaryInterceptor(loggerInterceptor(logger)))
	}

	s := &PlannerServer{
		mediator: mediator,
		listener: listener,
		server:   grpc.NewServer(opts...),
	}
	RegisterPlannerService(s.server, s)
	return s
}

func loggerInterceptor(logger common.StepLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(common.WithLogger(ctx, logger), req)
	}
}

// Addr returns the listening address
func (s *PlannerServer) Addr() string {
	return s.listener.Addr().String()
}

// Start serves until Stop is called
func (s *PlannerServer) Start() error {
	if err := s.server.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}

// Stop finishes in-flight calls and closes the listener
func (s *PlannerServer) Stop() {
	s.stopOnce.Do(s.server.GracefulStop)
}

// ForceStop closes every connection without waiting for in-flight calls
func (s *PlannerServer) ForceStop() {
	s.server.Stop()
}

// EvaluateStep runs the pipeline over the caller's snapshot
func (s *PlannerServer) EvaluateStep(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, err := FromProtobufStepInput(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.mediator.Send(ctx, &queries.EvaluateStepQuery{Input: input})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	plan, ok := resp.(*spawning.StepPlan)
	if !ok {
		return nil, status.Error(codes.Internal, "invalid response type from evaluate step handler")
	}

	out, err := ToProtobufStepPlan(plan)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode plan: %v", err)
	}
	return out, nil
}
