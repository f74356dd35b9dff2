package model

import (
	"time"

	"github.com/google/uuid"
)

// Rarity grades a spawned mob instance.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayPrefix returns the prefix composed into a mob's display name.
func (r Rarity) DisplayPrefix() string {
	switch r {
	case RarityUncommon:
		return "Veteran "
	case RarityRare:
		return "Elite "
	case RarityEpic:
		return "Champion "
	case RarityLegendary:
		return "Legendary "
	default:
		return ""
	}
}

// MobInstance is a snapshot of one hostile's row. The database row is the
// source of truth; lifecycle transitions (spawn, damage, kill, respawn) go
// through the mob repository so they stay correct under concurrent writers.
type MobInstance struct {
	ID            uuid.UUID
	RoomID        int64
	TemplateID    int64
	DisplayName   string
	Rarity        Rarity
	CurrentHealth int32
	MaxHealth     int32
	PosX          int32
	PosY          int32
	IsAlive       bool
	IsActive      bool
	LastKilledAt  *time.Time
	RespawnAt     *time.Time
}

// Dead reports whether the mob is killed and awaiting respawn.
func (m *MobInstance) Dead() bool {
	return !m.IsAlive
}

// DueForRespawn reports whether a dead mob's respawn window has elapsed.
func (m *MobInstance) DueForRespawn(now time.Time) bool {
	return !m.IsAlive && m.RespawnAt != nil && !m.RespawnAt.After(now)
}
