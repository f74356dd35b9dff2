package spawn

import "github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"

// Policy holds the hostile placement rules for one room type.
type Policy struct {
	// MaxMobs is the number of spawn slots in the room. Zero disables
	// hostiles entirely.
	MaxMobs int `yaml:"max_mobs"`
	// SpawnChance is the per-slot roll in [0,1].
	SpawnChance float64 `yaml:"spawn_chance"`
	// EnemyTypes restricts eligible template names. Empty allows any
	// template eligible for the floor.
	EnemyTypes []string `yaml:"enemy_types"`
	// RespawnHours is the delay between a mob's death and its respawn
	// eligibility.
	RespawnHours int `yaml:"respawn_hours"`
}

// Allows reports whether a template name passes the policy's type filter.
func (p Policy) Allows(name string) bool {
	if len(p.EnemyTypes) == 0 {
		return true
	}
	for _, t := range p.EnemyTypes {
		if t == name {
			return true
		}
	}
	return false
}

// PolicyTable maps room types to their spawn policies. The table is built
// once at startup and treated as immutable; per-floor overrides become a
// config concern, not a code change.
type PolicyTable map[model.RoomType]Policy

// For returns the policy for a room type. Unknown types get the zero
// policy, which spawns nothing.
func (t PolicyTable) For(roomType model.RoomType) Policy {
	return t[roomType]
}

// DefaultPolicies returns the standard per-room-type table. Safe rooms and
// entrances never hold hostiles.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		model.RoomNormal:   {MaxMobs: 2, SpawnChance: 0.6, RespawnHours: 4},
		model.RoomTrap:     {MaxMobs: 2, SpawnChance: 0.5, RespawnHours: 4},
		model.RoomStairs:   {MaxMobs: 1, SpawnChance: 0.3, RespawnHours: 4},
		model.RoomTreasure: {MaxMobs: 3, SpawnChance: 0.8, RespawnHours: 6},
		model.RoomBoss:     {MaxMobs: 1, SpawnChance: 1.0, RespawnHours: 24},
	}
}

// Merge overlays non-zero overrides onto the table, returning a new table.
func (t PolicyTable) Merge(overrides PolicyTable) PolicyTable {
	merged := make(PolicyTable, len(t)+len(overrides))
	for roomType, p := range t {
		merged[roomType] = p
	}
	for roomType, p := range overrides {
		merged[roomType] = p
	}
	return merged
}
