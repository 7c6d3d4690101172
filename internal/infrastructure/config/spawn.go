package config

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// SpawnConfig holds scheduling ranks and loadout tables, keyed by role name
type SpawnConfig struct {
	// Static rank per role; lower is more urgent. Missing roles keep the stock
	// rank. Ranks must be distinct once merged with the stock ones.
	Ranks map[string]int `mapstructure:"ranks" yaml:"ranks" validate:"unique,dive,keys,colony_role,endkeys"`

	// Loadout tiers per role
	Loadouts map[string][]LoadoutTierConfig `mapstructure:"loadouts" yaml:"loadouts" validate:"dive,keys,colony_role,endkeys,min=1,dive"`
}

// LoadoutTierConfig is one energy threshold and the parts it buys
type LoadoutTierConfig struct {
	Threshold int      `mapstructure:"threshold" yaml:"threshold" validate:"min=1"`
	Parts     []string `mapstructure:"parts" yaml:"parts,flow" validate:"min=1,dive,colony_part"`
}

// ToStaticRanks converts the ranks section to domain ranks
func (c SpawnConfig) ToStaticRanks() (colony.StaticRanks, error) {
	ranks := make(map[colony.Role]int, len(c.Ranks))
	for name, rank := range c.Ranks {
		role, err := colony.ParseRole(name)
		if err != nil {
			return colony.StaticRanks{}, fmt.Errorf("spawn.ranks: %w", err)
		}
		ranks[role] = rank
	}

	merged := colony.NewStaticRanks(ranks)
	owners := make(map[int]colony.Role, len(colony.AllRoles()))
	for _, role := range colony.AllRoles() {
		rank := merged.Rank(role)
		if other, taken := owners[rank]; taken {
			return colony.StaticRanks{}, fmt.Errorf("spawn.ranks: %s and %s share rank %d", other, role, rank)
		}
		owners[rank] = role
	}
	return merged, nil
}

// ToLoadoutTable converts the loadouts section to a validated domain table
func (c SpawnConfig) ToLoadoutTable() (*colony.LoadoutTable, error) {
	tiers := make(map[colony.Role][]colony.LoadoutTier, len(c.Loadouts))
	for name, tierConfigs := range c.Loadouts {
		role, err := colony.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("spawn.loadouts: %w", err)
		}
		for _, tc := range tierConfigs {
			parts := make(colony.Loadout, 0, len(tc.Parts))
			for _, p := range tc.Parts {
				kind, err := colony.ParsePartKind(p)
				if err != nil {
					return nil, fmt.Errorf("spawn.loadouts.%s: %w", name, err)
				}
				parts = append(parts, kind)
			}
			tiers[role] = append(tiers[role], colony.LoadoutTier{Threshold: tc.Threshold, Parts: parts})
		}
	}
	return colony.NewLoadoutTable(tiers)
}

// DefaultSpawnConfig renders the stock ranks and loadouts as config
func DefaultSpawnConfig() SpawnConfig {
	ranks := colony.DefaultStaticRanks()
	table := colony.DefaultLoadoutTable()

	cfg := SpawnConfig{
		Ranks:    make(map[string]int),
		Loadouts: make(map[string][]LoadoutTierConfig),
	}
	for _, role := range colony.AllRoles() {
		cfg.Ranks[role.String()] = ranks.Rank(role)

		tiers := table.Tiers(role)
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })
		for _, tier := range tiers {
			parts := make([]string, len(tier.Parts))
			for i, p := range tier.Parts {
				parts[i] = string(p)
			}
			cfg.Loadouts[role.String()] = append(cfg.Loadouts[role.String()], LoadoutTierConfig{
				Threshold: tier.Threshold,
				Parts:     parts,
			})
		}
	}
	return cfg
}
