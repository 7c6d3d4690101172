package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colony-go/internal/application/spawning"
)

// PlannerClient calls a remote planner over gRPC
type PlannerClient struct {
	conn *grpc.ClientConn
}

// NewPlannerClient creates a client for the planner listening on socketPath
// (e.g. "/tmp/colony-planner.sock")
func NewPlannerClient(socketPath string, opts ...grpc.DialOption) (*PlannerClient, error) {
	return NewPlannerClientForTarget("unix:"+socketPath, opts...)
}

// NewPlannerClientForTarget creates a client for any gRPC target
func NewPlannerClientForTarget(target string, opts ...grpc.DialOption) (*PlannerClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to planner socket: %w", err)
	}
	return &PlannerClient{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *PlannerClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EvaluateStep sends in to the remote planner
func (c *PlannerClient) EvaluateStep(ctx context.Context, in spawning.StepInput) (*RemotePlan, error) {
	req, err := ToProtobufStepInput(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step input: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, EvaluateStepMethod, req, resp); err != nil {
		return nil, fmt.Errorf("failed to evaluate step: %w", err)
	}

	return FromProtobufStepPlan(resp)
}
