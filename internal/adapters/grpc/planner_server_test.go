package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpcAdapter "github.com/andrescamacho/colony-go/internal/adapters/grpc"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/test/helpers"
)

func startPlanner(t *testing.T) (*grpcAdapter.PlannerClient, *helpers.RecordingLogger) {
	t.Helper()

	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*queries.EvaluateStepQuery](m, queries.NewEvaluateStepHandler(spawning.NewDefaultPipeline())))

	logger := helpers.NewRecordingLogger()
	lis := bufconn.Listen(1 << 20)
	server := grpcAdapter.NewPlannerServerWithListener(m, lis, logger)
	go func() { _ = server.Start() }()
	t.Cleanup(server.Stop)

	client, err := grpcAdapter.NewPlannerClientForTarget(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, logger
}

func TestPlannerServer_EvaluateStep_SchedulesHarvesterForEmptySite(t *testing.T) {
	// Arrange
	client, _ := startPlanner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	input := spawning.StepInput{
		State: colony.RoomState{
			SiteID:           "W1N1",
			DevelopmentLevel: 1,
			SourceCount:      2,
			EnergyAvailable:  300,
			EnergyCapacity:   300,
		},
		Budget: 300,
		Slot:   colony.SlotFree,
	}

	// Act
	plan, err := client.EvaluateStep(ctx, input)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "W1N1", plan.SiteID)
	assert.True(t, plan.ZeroPrimary)
	assert.Empty(t, plan.Error)
	require.NotNil(t, plan.Request)
	assert.Equal(t, colony.RoleHarvester, plan.Request.Role)
	assert.Equal(t, "W1N1", plan.Request.SiteID)
	assert.Equal(t, plan.Request.Loadout.Cost(), plan.Request.Cost)
	assert.LessOrEqual(t, plan.Request.Cost, 300)
	assert.Equal(t, 4, plan.Target["harvester"])
	assert.Equal(t, 0, plan.Current["harvester"])
}

func TestPlannerServer_EvaluateStep_ReportsDeferredShortfall(t *testing.T) {
	// Arrange
	client, _ := startPlanner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	input := spawning.StepInput{
		State: colony.RoomState{
			SiteID:           "W1N1",
			DevelopmentLevel: 1,
			SourceCount:      1,
			EnergyAvailable:  300,
			EnergyCapacity:   300,
		},
		Budget: 100,
		Slot:   colony.SlotFree,
	}

	// Act
	plan, err := client.EvaluateStep(ctx, input)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, plan.Request)
	assert.NotEmpty(t, plan.Error)
	assert.True(t, plan.Deferred)
}

func TestPlannerServer_EvaluateStep_CountsOnlyOwnSite(t *testing.T) {
	// Arrange
	client, _ := startPlanner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	input := spawning.StepInput{
		State: colony.RoomState{
			SiteID:           "W1N1",
			DevelopmentLevel: 2,
			SourceCount:      1,
			EnergyAvailable:  550,
			EnergyCapacity:   550,
		},
		Workers: []colony.Worker{
			{Name: "harvester_1", Role: "harvester", SiteID: "W1N1"},
			{Name: "harvester_2", Role: "harvester", SiteID: "W2N2"},
			{Name: "scout_3", Role: "scout", SiteID: "W1N1"},
		},
		Budget: 550,
		Slot:   colony.SlotOccupied,
	}

	// Act
	plan, err := client.EvaluateStep(ctx, input)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Current["harvester"])
	assert.False(t, plan.ZeroPrimary)
	assert.Nil(t, plan.Request)
	assert.True(t, plan.Deferred)
}

func TestPlannerServer_EvaluateStep_RejectsMissingState(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	server := grpcAdapter.NewPlannerServerWithListener(m, bufconn.Listen(1024), nil)
	empty, err := structpb.NewStruct(map[string]interface{}{"workers": []interface{}{}})
	require.NoError(t, err)

	// Act
	_, err = server.EvaluateStep(context.Background(), empty)

	// Assert
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStepInputConversion_DefaultsBudgetAndSlot(t *testing.T) {
	// Arrange
	s, err := structpb.NewStruct(map[string]interface{}{
		"state": map[string]interface{}{
			"site_id":           "E5S5",
			"development_level": 3,
			"energy_available":  420,
			"energy_capacity":   800,
		},
	})
	require.NoError(t, err)

	// Act
	in, err := grpcAdapter.FromProtobufStepInput(s)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 420, in.Budget)
	assert.Equal(t, colony.SlotFree, in.Slot)
	assert.Equal(t, 3, in.State.DevelopmentLevel)
	assert.Empty(t, in.Workers)
}

func TestPlannerServer_EvaluateStep_LogsScarcityThroughServerLogger(t *testing.T) {
	// Arrange
	client, logger := startPlanner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	input := spawning.StepInput{
		State: colony.RoomState{
			SiteID:           "W3N3",
			DevelopmentLevel: 3,
			SourceCount:      2,
			EnergyAvailable:  100,
			EnergyCapacity:   800,
		},
		Budget: 100,
		Slot:   colony.SlotFree,
	}

	// Act
	plan, err := client.EvaluateStep(ctx, input)

	// Assert
	require.NoError(t, err)
	assert.True(t, plan.ScarcityApplied)
	_, found := logger.Find("WARNING", "low energy")
	assert.True(t, found)
}
