package grpc

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// Step input <-> structpb conversion helpers for the planner service boundary

// ToProtobufStepInput encodes a step input as a Struct
func ToProtobufStepInput(in spawning.StepInput) (*structpb.Struct, error) {
	workers := make([]interface{}, 0, len(in.Workers))
	for _, w := range in.Workers {
		workers = append(workers, map[string]interface{}{
			"name":    w.Name,
			"role":    w.Role,
			"site_id": w.SiteID,
		})
	}

	return structpb.NewStruct(map[string]interface{}{
		"state": map[string]interface{}{
			"site_id":                      in.State.SiteID,
			"development_level":            in.State.DevelopmentLevel,
			"source_count":                 in.State.SourceCount,
			"energy_available":             in.State.EnergyAvailable,
			"energy_capacity":              in.State.EnergyCapacity,
			"has_outstanding_construction": in.State.HasOutstandingConstruction,
			"damaged_structure_count":      in.State.DamagedStructureCount,
			"construction_site_count":      in.State.ConstructionSiteCount,
		},
		"workers":          workers,
		"energy_available": in.Budget,
		"slot_free":        in.Slot.Free(),
	})
}

// FromProtobufStepInput decodes a Struct produced by ToProtobufStepInput
func FromProtobufStepInput(s *structpb.Struct) (spawning.StepInput, error) {
	if s == nil {
		return spawning.StepInput{}, errors.New("empty step input")
	}
	fields := s.GetFields()

	stateValue, ok := fields["state"]
	if !ok || stateValue.GetStructValue() == nil {
		return spawning.StepInput{}, errors.New("step input has no state")
	}
	st := stateValue.GetStructValue().GetFields()

	in := spawning.StepInput{
		State: colony.RoomState{
			SiteID:                     st["site_id"].GetStringValue(),
			DevelopmentLevel:           intField(st, "development_level"),
			SourceCount:                intField(st, "source_count"),
			EnergyAvailable:            intField(st, "energy_available"),
			EnergyCapacity:             intField(st, "energy_capacity"),
			HasOutstandingConstruction: st["has_outstanding_construction"].GetBoolValue(),
			DamagedStructureCount:      intField(st, "damaged_structure_count"),
			ConstructionSiteCount:      intField(st, "construction_site_count"),
		},
		Slot: colony.SlotOccupied,
	}

	// A missing budget falls back to the snapshot value
	if _, ok := fields["energy_available"]; ok {
		in.Budget = intField(fields, "energy_available")
	} else {
		in.Budget = in.State.EnergyAvailable
	}
	if v, ok := fields["slot_free"]; !ok || v.GetBoolValue() {
		in.Slot = colony.SlotFree
	}

	for i, v := range fields["workers"].GetListValue().GetValues() {
		w := v.GetStructValue()
		if w == nil {
			return spawning.StepInput{}, fmt.Errorf("worker %d is not an object", i)
		}
		wf := w.GetFields()
		in.Workers = append(in.Workers, colony.Worker{
			Name:   wf["name"].GetStringValue(),
			Role:   wf["role"].GetStringValue(),
			SiteID: wf["site_id"].GetStringValue(),
		})
	}

	return in, nil
}

// ToProtobufStepPlan encodes the plan trace as a Struct
func ToProtobufStepPlan(plan *spawning.StepPlan) (*structpb.Struct, error) {
	deficits := make([]interface{}, 0, len(plan.Report.Deficits))
	for _, d := range plan.Report.Deficits {
		deficits = append(deficits, map[string]interface{}{
			"role":    d.Role.String(),
			"current": d.Current,
			"target":  d.Target,
			"amount":  d.Amount,
		})
	}

	scores := map[string]interface{}{}
	for role, score := range plan.Priorities.AsScores() {
		scores[role] = score
	}

	out := map[string]interface{}{
		"site_id":               plan.SiteID,
		"tier":                  plan.Notes.Tier.String(),
		"energy_ratio":          plan.Notes.EnergyRatio,
		"ratio_known":           plan.Notes.RatioKnown,
		"scarcity_applied":      plan.Notes.ScarcityApplied,
		"target":                countsToValue(plan.Target.AsMap()),
		"current":               countsToValue(plan.Current.AsMap()),
		"deficits":              deficits,
		"priorities":            scores,
		"zero_primary":          plan.Report.ZeroPrimary,
		"primary_below_sources": plan.Report.PrimaryBelowSources,
	}

	if plan.Request != nil {
		parts := make([]interface{}, len(plan.Request.Loadout))
		for i, part := range plan.Request.Loadout {
			parts[i] = string(part)
		}
		out["request"] = map[string]interface{}{
			"site_id": plan.Request.SiteID,
			"role":    plan.Request.Role.String(),
			"cost":    plan.Request.Cost,
			"parts":   parts,
		}
	}
	if plan.Err != nil {
		out["error"] = plan.Err.Error()
		out["deferred"] = colony.IsDeferred(plan.Err)
	}

	return structpb.NewStruct(out)
}

// RemotePlan is the client-side view of an evaluated step. Errors travel as
// text, so only the deferred flag survives the wire.
type RemotePlan struct {
	SiteID              string
	Tier                string
	EnergyRatio         float64
	RatioKnown          bool
	ScarcityApplied     bool
	Target              map[string]int
	Current             map[string]int
	Deficits            []colony.Deficit
	Priorities          map[string]float64
	ZeroPrimary         bool
	PrimaryBelowSources bool
	Request             *colony.ProductionRequest
	Error               string
	Deferred            bool
}

// FromProtobufStepPlan decodes a Struct produced by ToProtobufStepPlan
func FromProtobufStepPlan(s *structpb.Struct) (*RemotePlan, error) {
	if s == nil {
		return nil, errors.New("empty step plan")
	}
	f := s.GetFields()

	plan := &RemotePlan{
		SiteID:              f["site_id"].GetStringValue(),
		Tier:                f["tier"].GetStringValue(),
		EnergyRatio:         f["energy_ratio"].GetNumberValue(),
		RatioKnown:          f["ratio_known"].GetBoolValue(),
		ScarcityApplied:     f["scarcity_applied"].GetBoolValue(),
		Target:              valueToCounts(f["target"]),
		Current:             valueToCounts(f["current"]),
		Priorities:          map[string]float64{},
		ZeroPrimary:         f["zero_primary"].GetBoolValue(),
		PrimaryBelowSources: f["primary_below_sources"].GetBoolValue(),
		Error:               f["error"].GetStringValue(),
		Deferred:            f["deferred"].GetBoolValue(),
	}

	for _, v := range f["deficits"].GetListValue().GetValues() {
		df := v.GetStructValue().GetFields()
		role, err := colony.ParseRole(df["role"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("failed to decode deficit: %w", err)
		}
		plan.Deficits = append(plan.Deficits, colony.Deficit{
			Role:    role,
			Current: intField(df, "current"),
			Target:  intField(df, "target"),
			Amount:  intField(df, "amount"),
		})
	}

	for role, v := range f["priorities"].GetStructValue().GetFields() {
		plan.Priorities[role] = v.GetNumberValue()
	}

	if rv := f["request"].GetStructValue(); rv != nil {
		rf := rv.GetFields()
		role, err := colony.ParseRole(rf["role"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		var loadout colony.Loadout
		for _, p := range rf["parts"].GetListValue().GetValues() {
			part, err := colony.ParsePartKind(p.GetStringValue())
			if err != nil {
				return nil, fmt.Errorf("failed to decode request: %w", err)
			}
			loadout = append(loadout, part)
		}
		plan.Request = &colony.ProductionRequest{
			SiteID:  rf["site_id"].GetStringValue(),
			Role:    role,
			Loadout: loadout,
			Cost:    intField(rf, "cost"),
		}
	}

	return plan, nil
}

func intField(fields map[string]*structpb.Value, key string) int {
	return int(fields[key].GetNumberValue())
}

func countsToValue(counts map[string]int) map[string]interface{} {
	out := make(map[string]interface{}, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}

func valueToCounts(v *structpb.Value) map[string]int {
	out := map[string]int{}
	for k, n := range v.GetStructValue().GetFields() {
		out[k] = int(n.GetNumberValue())
	}
	return out
}
