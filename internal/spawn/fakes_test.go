package spawn

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// fakeMobStore keeps mob rows in memory with the same conditional-update
// semantics as the SQL repository.
type fakeMobStore struct {
	mu   sync.Mutex
	mobs map[uuid.UUID]*model.MobInstance
}

func newFakeMobStore() *fakeMobStore {
	return &fakeMobStore{mobs: make(map[uuid.UUID]*model.MobInstance)}
}

func (s *fakeMobStore) Insert(_ context.Context, m *model.MobInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.mobs[m.ID] = &copied
	return nil
}

func (s *fakeMobStore) ByID(_ context.Context, mobID uuid.UUID) (*model.MobInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mob, ok := s.mobs[mobID]
	if !ok {
		return nil, nil
	}
	copied := *mob
	return &copied, nil
}

func (s *fakeMobStore) ByRoom(_ context.Context, roomID int64) ([]*model.MobInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.MobInstance
	for _, mob := range s.mobs {
		if mob.RoomID == roomID && mob.IsActive {
			copied := *mob
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeMobStore) CountInRoom(_ context.Context, roomID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, mob := range s.mobs {
		if mob.RoomID == roomID && mob.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *fakeMobStore) UpdateHealth(_ context.Context, mobID uuid.UUID, health int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mob, ok := s.mobs[mobID]; ok && mob.IsAlive {
		mob.CurrentHealth = health
	}
	return nil
}

func (s *fakeMobStore) MarkDead(_ context.Context, mobID uuid.UUID, killedAt, respawnAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mob, ok := s.mobs[mobID]
	if !ok || !mob.IsAlive {
		return false, nil
	}
	mob.IsAlive = false
	mob.CurrentHealth = 0
	killed, respawn := killedAt, respawnAt
	mob.LastKilledAt = &killed
	mob.RespawnAt = &respawn
	return true, nil
}

func (s *fakeMobStore) ReviveDue(_ context.Context, now time.Time) ([]*model.MobInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var revived []*model.MobInstance
	for _, mob := range s.mobs {
		if mob.IsAlive || mob.RespawnAt == nil || mob.RespawnAt.After(now) {
			continue
		}
		mob.IsAlive = true
		mob.CurrentHealth = mob.MaxHealth
		mob.RespawnAt = nil
		copied := *mob
		revived = append(revived, &copied)
	}
	return revived, nil
}

type fakeTemplateStore struct {
	templates []*model.EnemyTemplate
}

func (s *fakeTemplateStore) EligibleForFloor(_ context.Context, floorNumber int32) ([]*model.EnemyTemplate, error) {
	var out []*model.EnemyTemplate
	for _, t := range s.templates {
		if t.EligibleForFloor(floorNumber) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeGraph struct {
	rooms  map[int64]*model.Room
	floors map[int64]*model.Floor
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		rooms:  make(map[int64]*model.Room),
		floors: make(map[int64]*model.Floor),
	}
}

func (g *fakeGraph) RoomByID(_ context.Context, roomID int64) (*model.Room, error) {
	return g.rooms[roomID], nil
}

func (g *fakeGraph) FloorByID(_ context.Context, floorID int64) (*model.Floor, error) {
	return g.floors[floorID], nil
}

func ratTemplate() *model.EnemyTemplate {
	return model.NewEnemyTemplate(1, "Cave Rat", 1, 3, 1, 30, 5, 2, 8, 12, 4)
}

func golemTemplate() *model.EnemyTemplate {
	return model.NewEnemyTemplate(2, "Stone Golem", 2, 9, 8, 200, 20, 30, 3, 90, 40)
}

// newTestRegistry wires a registry around one normal room on floor 1 with
// the rat template eligible.
func newTestRegistry() (*Registry, *fakeMobStore, *fakeGraph) {
	mobs := newFakeMobStore()
	graph := newFakeGraph()
	graph.floors[1] = &model.Floor{ID: 1, Number: 1}
	graph.rooms[10] = &model.Room{ID: 10, FloorID: 1, Type: model.RoomNormal}
	templates := &fakeTemplateStore{templates: []*model.EnemyTemplate{ratTemplate(), golemTemplate()}}
	return NewRegistry(mobs, templates, graph, nil, nil), mobs, graph
}
