package model

import (
	"testing"
	"time"
)

func TestRarityDisplayPrefix(t *testing.T) {
	tests := []struct {
		rarity Rarity
		want   string
	}{
		{RarityCommon, "Cave Rat"},
		{RarityUncommon, "Veteran Cave Rat"},
		{RarityRare, "Elite Cave Rat"},
		{RarityEpic, "Champion Cave Rat"},
		{RarityLegendary, "Legendary Cave Rat"},
	}
	for _, tt := range tests {
		if got := tt.rarity.DisplayPrefix() + "Cave Rat"; got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.rarity, got, tt.want)
		}
	}
}

func TestMobDueForRespawn(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		mob  MobInstance
		want bool
	}{
		{"alive mob never due", MobInstance{IsAlive: true, RespawnAt: &past}, false},
		{"dead without window", MobInstance{IsAlive: false}, false},
		{"window not elapsed", MobInstance{IsAlive: false, RespawnAt: &future}, false},
		{"window elapsed", MobInstance{IsAlive: false, RespawnAt: &past}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mob.DueForRespawn(now); got != tt.want {
				t.Errorf("DueForRespawn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCostTierEnergy(t *testing.T) {
	tests := []struct {
		tier CostTier
		want int32
	}{
		{CostFirstVisit, 10},
		{CostRevisit, 5},
		{CostFloorTransition, 15},
	}
	for _, tt := range tests {
		if got := tt.tier.Energy(); got != tt.want {
			t.Errorf("%s: Energy = %d, want %d", tt.tier, got, tt.want)
		}
	}
}
