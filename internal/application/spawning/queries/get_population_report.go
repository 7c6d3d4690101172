package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// GetPopulationReportQuery asks for the needs report of a site
type GetPopulationReportQuery struct {
	SiteID string
}

// GetPopulationReportResponse is the operator view of a site's population
type GetPopulationReportResponse struct {
	SiteID      string
	Tier        colony.Tier
	EnergyRatio float64
	RatioKnown  bool
	Scarcity    bool
	Needs       colony.NeedsReport
}

// GetPopulationReportHandler handles the GetPopulationReport query
type GetPopulationReportHandler struct {
	pipeline *spawning.Pipeline
	rooms    colony.RoomStateReader
	workers  colony.WorkerRegistry
}

// NewGetPopulationReportHandler creates a new GetPopulationReportHandler
func NewGetPopulationReportHandler(
	pipeline *spawning.Pipeline,
	rooms colony.RoomStateReader,
	workers colony.WorkerRegistry,
) *GetPopulationReportHandler {
	return &GetPopulationReportHandler{
		pipeline: pipeline,
		rooms:    rooms,
		workers:  workers,
	}
}

// Handle executes the GetPopulationReport query
func (h *GetPopulationReportHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPopulationReportQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPopulationReportQuery")
	}
	if query.SiteID == "" {
		return nil, shared.NewValidationError("site_id", "required")
	}

	state, err := h.rooms.ReadState(ctx, query.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to read room state: %w", err)
	}
	state.SiteID = query.SiteID

	workers, err := h.workers.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	needs, notes := h.pipeline.Needs(state, workers)

	return &GetPopulationReportResponse{
		SiteID:      query.SiteID,
		Tier:        notes.Tier,
		EnergyRatio: notes.EnergyRatio,
		RatioKnown:  notes.RatioKnown,
		Scarcity:    notes.ScarcityApplied,
		Needs:       needs,
	}, nil
}
