package tactical

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// fakeTacticalStore keeps tactical rows in memory with the repository's
// activation semantics.
type fakeTacticalStore struct {
	mu     sync.Mutex
	rows   []*model.TacticalEntityRecord
	nextID int64
}

func newFakeTacticalStore() *fakeTacticalStore {
	return &fakeTacticalStore{}
}

func (s *fakeTacticalStore) ActiveByRoom(_ context.Context, roomID int64) ([]*model.TacticalEntityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.TacticalEntityRecord
	for _, row := range s.rows {
		if row.RoomID == roomID && row.IsActive {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeTacticalStore) InsertBatch(_ context.Context, records []*model.TacticalEntityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.nextID++
		rec.ID = s.nextID
		rec.IsActive = true
		copied := *rec
		s.rows = append(s.rows, &copied)
	}
	return nil
}

func (s *fakeTacticalStore) ReplaceByType(_ context.Context, roomID int64, entityType model.EntityType, records []*model.TacticalEntityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.RoomID == roomID && row.EntityType == entityType {
			row.IsActive = false
		}
	}
	for _, rec := range records {
		s.nextID++
		rec.ID = s.nextID
		rec.IsActive = true
		copied := *rec
		s.rows = append(s.rows, &copied)
	}
	return nil
}

func (s *fakeTacticalStore) DeleteRoom(_ context.Context, roomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.RoomID != roomID {
			kept = append(kept, row)
		}
	}
	s.rows = kept
	return nil
}

type fakeMobProvider struct {
	mobs    map[int64][]*model.MobInstance
	spawned map[int64]int
}

func newFakeMobProvider() *fakeMobProvider {
	return &fakeMobProvider{
		mobs:    make(map[int64][]*model.MobInstance),
		spawned: make(map[int64]int),
	}
}

func (p *fakeMobProvider) RoomMobs(_ context.Context, roomID int64) ([]*model.MobInstance, error) {
	return p.mobs[roomID], nil
}

func (p *fakeMobProvider) SpawnForRoom(_ context.Context, room *model.Room) ([]*model.MobInstance, error) {
	p.spawned[room.ID]++
	mob := &model.MobInstance{
		ID:            uuid.New(),
		RoomID:        room.ID,
		TemplateID:    1,
		DisplayName:   "Cave Rat",
		Rarity:        model.RarityCommon,
		CurrentHealth: 30,
		MaxHealth:     30,
		PosX:          3,
		PosY:          4,
		IsAlive:       true,
		IsActive:      true,
	}
	p.mobs[room.ID] = []*model.MobInstance{mob}
	return p.mobs[room.ID], nil
}

type fakeTemplateResolver struct{}

func (fakeTemplateResolver) ByID(_ context.Context, templateID int64) (*model.EnemyTemplate, error) {
	if templateID != 1 {
		return nil, nil
	}
	return model.NewEnemyTemplate(1, "Cave Rat", 1, 3, 1, 30, 5, 2, 8, 12, 4), nil
}

func newTestBoard() (*Board, *fakeTacticalStore, *fakeMobProvider) {
	store := newFakeTacticalStore()
	mobs := newFakeMobProvider()
	return NewBoard(store, mobs, fakeTemplateResolver{}, nil), store, mobs
}

func countByType(entities []model.TacticalEntity, entityType model.EntityType) int {
	n := 0
	for _, e := range entities {
		if e.Type == entityType {
			n++
		}
	}
	return n
}

func TestGenerateTreasureRoomLoot(t *testing.T) {
	board, _, _ := newTestBoard()
	room := &model.Room{ID: 1, FloorID: 1, Type: model.RoomTreasure, HasLoot: true}

	entities, err := board.Generate(context.Background(), room, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := countByType(entities, model.EntityLoot); got != 3 {
		t.Fatalf("treasure room loot count = %d, want 3", got)
	}

	want := map[string]bool{"Treasure Chest": false, "Golden Coins": false, "Precious Gems": false}
	for _, e := range entities {
		if e.Type != model.EntityLoot {
			continue
		}
		if e.Data.Loot == nil {
			t.Fatal("loot entity carries no loot payload")
		}
		if _, ok := want[e.Data.Loot.Name]; !ok {
			t.Errorf("unexpected loot %q", e.Data.Loot.Name)
		}
		want[e.Data.Loot.Name] = true
		if e.Data.Loot.Value < 10 || e.Data.Loot.Value > 109 {
			t.Errorf("loot value %d outside [10,109]", e.Data.Loot.Value)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing treasure %q", name)
		}
	}
}

func TestGenerateKeepsLootAcrossRuns(t *testing.T) {
	board, store, _ := newTestBoard()
	room := &model.Room{ID: 1, FloorID: 1, Type: model.RoomTreasure, HasLoot: true}
	ctx := context.Background()

	if _, err := board.Generate(ctx, room, false); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	first, _ := store.ActiveByRoom(ctx, 1)

	if _, err := board.Generate(ctx, room, false); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	second, _ := store.ActiveByRoom(ctx, 1)

	firstLoot := lootByID(first)
	secondLoot := lootByID(second)
	if len(firstLoot) != len(secondLoot) {
		t.Fatalf("loot row count changed: %d -> %d", len(firstLoot), len(secondLoot))
	}
	for id, a := range firstLoot {
		b, ok := secondLoot[id]
		if !ok {
			t.Errorf("loot row %d disappeared", id)
			continue
		}
		if a.PosX != b.PosX || a.PosY != b.PosY || *a.EntityData.Loot != *b.EntityData.Loot {
			t.Errorf("loot row %d changed across regenerations", id)
		}
	}
}

func lootByID(records []*model.TacticalEntityRecord) map[int64]*model.TacticalEntityRecord {
	out := make(map[int64]*model.TacticalEntityRecord)
	for _, rec := range records {
		if rec.EntityType == model.EntityLoot {
			out[rec.ID] = rec
		}
	}
	return out
}

func TestGenerateForceRerolls(t *testing.T) {
	board, store, _ := newTestBoard()
	room := &model.Room{ID: 1, FloorID: 1, Type: model.RoomTreasure, HasLoot: true}
	ctx := context.Background()

	if _, err := board.Generate(ctx, room, false); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	first, _ := store.ActiveByRoom(ctx, 1)

	if _, err := board.Generate(ctx, room, true); err != nil {
		t.Fatalf("forced Generate failed: %v", err)
	}
	second, _ := store.ActiveByRoom(ctx, 1)

	firstLoot := lootByID(first)
	for id := range lootByID(second) {
		if _, survived := firstLoot[id]; survived {
			t.Errorf("loot row %d survived a forced regeneration", id)
		}
	}
}

func TestGenerateSpawnsMobsInEmptyRoom(t *testing.T) {
	board, _, mobs := newTestBoard()
	room := &model.Room{ID: 2, FloorID: 1, Type: model.RoomNormal}
	ctx := context.Background()

	entities, err := board.Generate(ctx, room, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if mobs.spawned[2] != 1 {
		t.Errorf("spawn pass count = %d, want 1", mobs.spawned[2])
	}
	if got := countByType(entities, model.EntityMob); got != 1 {
		t.Fatalf("mob entity count = %d, want 1", got)
	}

	for _, e := range entities {
		if e.Type != model.EntityMob {
			continue
		}
		mob := e.Data.Mob
		if mob == nil {
			t.Fatal("mob entity carries no mob payload")
		}
		if mob.Name != "Cave Rat" || mob.HP != 30 {
			t.Errorf("mob snapshot wrong: %+v", mob)
		}
		// Combat stats come from the resolved template.
		if mob.Attack != 5 || mob.Defense != 2 || mob.Speed != 8 {
			t.Errorf("template stats not carried: %+v", mob)
		}
		if mob.ExpReward != 12 || mob.CreditsReward != 4 {
			t.Errorf("rewards not carried: %+v", mob)
		}
	}

	// A room that already holds instances must not spawn again.
	if _, err := board.Generate(ctx, room, false); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	if mobs.spawned[2] != 1 {
		t.Errorf("spawn pass count after regenerate = %d, want 1", mobs.spawned[2])
	}
}

func TestGenerateIgnoresDeadMobs(t *testing.T) {
	board, _, mobs := newTestBoard()
	room := &model.Room{ID: 3, FloorID: 1, Type: model.RoomNormal}
	mobs.mobs[3] = []*model.MobInstance{
		{ID: uuid.New(), RoomID: 3, TemplateID: 1, DisplayName: "Cave Rat", CurrentHealth: 0, MaxHealth: 30, IsAlive: false, IsActive: true},
	}

	entities, err := board.Generate(context.Background(), room, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := countByType(entities, model.EntityMob); got != 0 {
		t.Errorf("dead mob rendered on the board: %d mob entities", got)
	}
}

func TestGenerateSafeRoomNpc(t *testing.T) {
	board, _, mobs := newTestBoard()
	room := &model.Room{ID: 4, FloorID: 1, Type: model.RoomSafe, IsSafe: true}

	entities, err := board.Generate(context.Background(), room, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := countByType(entities, model.EntityNpc); got != 1 {
		t.Fatalf("safe room NPC count = %d, want 1", got)
	}
	if got := countByType(entities, model.EntityMob); got != 0 {
		t.Errorf("safe room holds %d mobs", got)
	}
	if mobs.spawned[4] != 0 {
		t.Error("safe room must not trigger a spawn pass")
	}
	for _, e := range entities {
		if e.Type != model.EntityNpc {
			continue
		}
		if e.Data.Npc == nil || e.Data.Npc.Name != "Sanctuary Keeper" {
			t.Errorf("safe room NPC = %+v, want Sanctuary Keeper", e.Data.Npc)
		}
	}
}

func TestGenerateNoOverlap(t *testing.T) {
	board, _, _ := newTestBoard()
	room := &model.Room{ID: 5, FloorID: 1, Type: model.RoomTreasure, HasLoot: true}

	entities, err := board.Generate(context.Background(), room, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	cells := make(map[Cell]struct{})
	for _, e := range entities {
		c := cellFromPercent(e.PosX, e.PosY)
		if _, taken := cells[c]; taken {
			t.Errorf("two entities share cell %+v", c)
		}
		cells[c] = struct{}{}
	}
}
