package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityType classifies a tactical entity on a room's board.
type EntityType string

const (
	EntityLoot EntityType = "loot"
	EntityMob  EntityType = "mob"
	EntityNpc  EntityType = "npc"
)

// LootData is the payload of a loot tactical entity.
type LootData struct {
	Name     string `json:"name"`
	ItemType string `json:"itemType"`
	Value    int32  `json:"value"`
}

// MobData is the payload of a mob tactical entity. It carries the live
// combat snapshot the encounter system reads; it is always re-derived from
// the mob registry, never trusted from storage.
type MobData struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Rarity        Rarity    `json:"rarity"`
	HP            int32     `json:"hp"`
	MaxHP         int32     `json:"maxHp"`
	Attack        int32     `json:"attack"`
	Defense       int32     `json:"defense"`
	Speed         int32     `json:"speed"`
	ExpReward     int32     `json:"expReward"`
	CreditsReward int32     `json:"creditsReward"`
}

// NpcData is the payload of an NPC tactical entity.
type NpcData struct {
	Name        string   `json:"name"`
	Services    []string `json:"services"`
	Personality string   `json:"personality"`
}

// EntityPayload is a tagged union over the per-type payloads. Exactly one
// field is non-nil, matching the record's EntityType.
type EntityPayload struct {
	Loot *LootData `json:"loot,omitempty"`
	Mob  *MobData  `json:"mob,omitempty"`
	Npc  *NpcData  `json:"npc,omitempty"`
}

// TacticalEntityRecord is a persisted tactical entity row. Positions are
// stored as percentages of the room's extent.
type TacticalEntityRecord struct {
	ID         int64
	RoomID     int64
	EntityType EntityType
	EntityData EntityPayload
	PosX       float64
	PosY       float64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TacticalEntity is the view returned to callers of the tactical board.
type TacticalEntity struct {
	Type EntityType
	PosX float64
	PosY float64
	Data EntityPayload
}

// View converts a persisted record to the caller-facing entity.
func (r *TacticalEntityRecord) View() TacticalEntity {
	return TacticalEntity{
		Type: r.EntityType,
		PosX: r.PosX,
		PosY: r.PosY,
		Data: r.EntityData,
	}
}
