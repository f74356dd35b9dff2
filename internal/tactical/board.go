package tactical

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// merchantChance is the roll for a wandering merchant in non-safe rooms.
const merchantChance = 0.2

// TacticalStore is the source of truth for persisted tactical rows.
// Implemented by db.TacticalRepository.
type TacticalStore interface {
	ActiveByRoom(ctx context.Context, roomID int64) ([]*model.TacticalEntityRecord, error)
	InsertBatch(ctx context.Context, records []*model.TacticalEntityRecord) error
	ReplaceByType(ctx context.Context, roomID int64, entityType model.EntityType, records []*model.TacticalEntityRecord) error
	DeleteRoom(ctx context.Context, roomID int64) error
}

// MobProvider supplies live mob state. Implemented by spawn.Registry.
type MobProvider interface {
	RoomMobs(ctx context.Context, roomID int64) ([]*model.MobInstance, error)
	SpawnForRoom(ctx context.Context, room *model.Room) ([]*model.MobInstance, error)
}

// TemplateResolver resolves enemy templates for mob combat snapshots.
// Implemented by db.EnemyTemplateRepository.
type TemplateResolver interface {
	ByID(ctx context.Context, templateID int64) (*model.EnemyTemplate, error)
}

// Board generates and serves a room's tactical layout. Loot and NPC
// placements are generated once and persisted; mob entries are re-derived
// from the registry on every generation because health and alive state
// churn far faster than placement.
type Board struct {
	store     TacticalStore
	mobs      MobProvider
	templates TemplateResolver
	cache     cache.Cache
}

// NewBoard creates a tactical board.
func NewBoard(store TacticalStore, mobs MobProvider, templates TemplateResolver, c cache.Cache) *Board {
	return &Board{store: store, mobs: mobs, templates: templates, cache: c}
}

// Read returns the room's active persisted entities. Mob entries reflect
// the last generation, not necessarily live health; callers wanting the
// live view use Generate.
func (b *Board) Read(ctx context.Context, roomID int64) ([]model.TacticalEntity, error) {
	key := cache.KeyTactical(roomID)
	if entities, ok := cache.Lookup[[]model.TacticalEntity](ctx, b.cache, key); ok {
		return entities, nil
	}

	records, err := b.store.ActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	entities := make([]model.TacticalEntity, 0, len(records))
	for _, rec := range records {
		entities = append(entities, rec.View())
	}

	cache.Store(ctx, b.cache, key, entities, cache.TTLTactical)
	return entities, nil
}

// Generate builds the room's tactical view: persisted loot and NPCs are
// trusted and generated once, mobs are always re-synced from the registry.
// With force set, all persisted rows are hard-deleted and everything is
// rolled fresh.
func (b *Board) Generate(ctx context.Context, room *model.Room, force bool) ([]model.TacticalEntity, error) {
	var trustedLoot, trustedNpc []*model.TacticalEntityRecord
	if force {
		if err := b.store.DeleteRoom(ctx, room.ID); err != nil {
			return nil, err
		}
	} else {
		existing, err := b.store.ActiveByRoom(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		for _, rec := range existing {
			switch rec.EntityType {
			case model.EntityLoot:
				trustedLoot = append(trustedLoot, rec)
			case model.EntityNpc:
				trustedNpc = append(trustedNpc, rec)
			}
			// Stored mob rows are ignored: live state comes from the registry.
		}
	}

	liveMobs, err := b.liveMobs(ctx, room)
	if err != nil {
		return nil, err
	}

	// Exclusion set: live mob cells plus trusted placements. New loot and
	// NPCs must not land on any of them.
	occupied := make(map[Cell]struct{})
	for _, mob := range liveMobs {
		occupied[Cell{X: mob.PosX, Y: mob.PosY}] = struct{}{}
	}
	for _, rec := range trustedLoot {
		occupied[cellFromPercent(rec.PosX, rec.PosY)] = struct{}{}
	}
	for _, rec := range trustedNpc {
		occupied[cellFromPercent(rec.PosX, rec.PosY)] = struct{}{}
	}

	var fresh []*model.TacticalEntityRecord
	if len(trustedLoot) == 0 && room.HasLoot {
		fresh = append(fresh, rollLoot(room, occupied)...)
	}
	if len(trustedNpc) == 0 {
		if npc := rollNpc(room, occupied); npc != nil {
			fresh = append(fresh, npc)
		}
	}
	if len(fresh) > 0 {
		if err := b.store.InsertBatch(ctx, fresh); err != nil {
			return nil, err
		}
	}

	mobRecords, err := b.mobRecords(ctx, room.ID, liveMobs)
	if err != nil {
		return nil, err
	}
	if err := b.store.ReplaceByType(ctx, room.ID, model.EntityMob, mobRecords); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, b.cache, cache.KeyTactical(room.ID))

	entities := make([]model.TacticalEntity, 0, len(trustedLoot)+len(trustedNpc)+len(fresh)+len(mobRecords))
	for _, rec := range trustedLoot {
		entities = append(entities, rec.View())
	}
	for _, rec := range trustedNpc {
		entities = append(entities, rec.View())
	}
	for _, rec := range fresh {
		entities = append(entities, rec.View())
	}
	for _, rec := range mobRecords {
		entities = append(entities, rec.View())
	}
	return entities, nil
}

// liveMobs returns the room's alive, active mobs, triggering a spawn pass
// when the room holds no mob instances at all.
func (b *Board) liveMobs(ctx context.Context, room *model.Room) ([]*model.MobInstance, error) {
	if !room.CanHoldMobs() {
		return nil, nil
	}
	mobs, err := b.mobs.RoomMobs(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if len(mobs) == 0 {
		if mobs, err = b.mobs.SpawnForRoom(ctx, room); err != nil {
			return nil, err
		}
	}
	alive := mobs[:0:0]
	for _, mob := range mobs {
		if mob.IsAlive && mob.IsActive {
			alive = append(alive, mob)
		}
	}
	return alive, nil
}

// mobRecords maps live mobs to tactical rows carrying their combat snapshot.
func (b *Board) mobRecords(ctx context.Context, roomID int64, mobs []*model.MobInstance) ([]*model.TacticalEntityRecord, error) {
	records := make([]*model.TacticalEntityRecord, 0, len(mobs))
	for _, mob := range mobs {
		data := model.MobData{
			ID:     mob.ID,
			Name:   mob.DisplayName,
			Rarity: mob.Rarity,
			HP:     mob.CurrentHealth,
			MaxHP:  mob.MaxHealth,
		}
		template, err := b.templates.ByID(ctx, mob.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("resolving template %d for mob %s: %w", mob.TemplateID, mob.ID, err)
		}
		if template == nil {
			slog.Warn("mob references missing template", "mob", mob.ID, "template", mob.TemplateID)
		} else {
			data.Attack = template.Attack()
			data.Defense = template.Defense()
			data.Speed = template.Speed()
			data.ExpReward = template.ExpReward()
			data.CreditsReward = template.CreditsReward()
		}

		px, py := Cell{X: mob.PosX, Y: mob.PosY}.Percent()
		records = append(records, &model.TacticalEntityRecord{
			RoomID:     roomID,
			EntityType: model.EntityMob,
			EntityData: model.EntityPayload{Mob: &data},
			PosX:       px,
			PosY:       py,
		})
	}
	return records, nil
}

// rollLoot places the room's loot: three fixed treasures for treasure
// rooms, otherwise one or two generic drops, each worth 10..109.
func rollLoot(room *model.Room, occupied map[Cell]struct{}) []*model.TacticalEntityRecord {
	type item struct {
		name     string
		itemType string
	}
	var items []item
	if room.Type == model.RoomTreasure {
		items = []item{
			{"Treasure Chest", "treasure"},
			{"Golden Coins", "treasure"},
			{"Precious Gems", "treasure"},
		}
	} else {
		items = []item{{"Dropped Item", "item"}, {"Equipment", "equipment"}}
		items = items[:1+rand.IntN(2)]
	}

	records := make([]*model.TacticalEntityRecord, 0, len(items))
	for _, it := range items {
		px, py := pickFreeCell(occupied).Percent()
		records = append(records, &model.TacticalEntityRecord{
			RoomID:     room.ID,
			EntityType: model.EntityLoot,
			EntityData: model.EntityPayload{Loot: &model.LootData{
				Name:     it.name,
				ItemType: it.itemType,
				Value:    10 + int32(rand.IntN(100)),
			}},
			PosX: px,
			PosY: py,
		})
	}
	return records
}

// rollNpc places the room's NPC: safe rooms always get a sanctuary keeper,
// other rooms roll for a wandering merchant.
func rollNpc(room *model.Room, occupied map[Cell]struct{}) *model.TacticalEntityRecord {
	var data *model.NpcData
	switch {
	case room.IsSafe:
		data = &model.NpcData{
			Name:        "Sanctuary Keeper",
			Services:    []string{"rest", "information"},
			Personality: "serene",
		}
	case rand.Float64() < merchantChance:
		data = &model.NpcData{
			Name:        "Wandering Merchant",
			Services:    []string{"trade", "information"},
			Personality: "opportunistic",
		}
	default:
		return nil
	}

	px, py := pickFreeCell(occupied).Percent()
	return &model.TacticalEntityRecord{
		RoomID:     room.ID,
		EntityType: model.EntityNpc,
		EntityData: model.EntityPayload{Npc: data},
		PosX:       px,
		PosY:       py,
	}
}
