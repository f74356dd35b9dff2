package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// MobStore is the source of truth for mob instance rows.
// Implemented by db.MobRepository.
type MobStore interface {
	Insert(ctx context.Context, m *model.MobInstance) error
	ByID(ctx context.Context, mobID uuid.UUID) (*model.MobInstance, error)
	ByRoom(ctx context.Context, roomID int64) ([]*model.MobInstance, error)
	CountInRoom(ctx context.Context, roomID int64) (int, error)
	UpdateHealth(ctx context.Context, mobID uuid.UUID, health int32) error
	MarkDead(ctx context.Context, mobID uuid.UUID, killedAt, respawnAt time.Time) (bool, error)
	ReviveDue(ctx context.Context, now time.Time) ([]*model.MobInstance, error)
}

// TemplateStore loads enemy templates.
// Implemented by db.EnemyTemplateRepository.
type TemplateStore interface {
	EligibleForFloor(ctx context.Context, floorNumber int32) ([]*model.EnemyTemplate, error)
}

// GraphReader resolves rooms and floors for spawn decisions.
// Implemented by world.Graph.
type GraphReader interface {
	RoomByID(ctx context.Context, roomID int64) (*model.Room, error)
	FloorByID(ctx context.Context, floorID int64) (*model.Floor, error)
}

// Registry owns the hostile lifecycle: spawn, damage, kill and respawn.
// The mob rows are the source of truth; every transition is a conditional
// write so concurrent nodes cannot double-apply it.
type Registry struct {
	mobs      MobStore
	templates TemplateStore
	graph     GraphReader
	policies  PolicyTable
	cache     cache.Cache
	now       func() time.Time
}

// NewRegistry creates a mob registry. A nil policy table gets the defaults.
func NewRegistry(mobs MobStore, templates TemplateStore, graph GraphReader, policies PolicyTable, c cache.Cache) *Registry {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Registry{
		mobs:      mobs,
		templates: templates,
		graph:     graph,
		policies:  policies,
		cache:     c,
		now:       time.Now,
	}
}

// RoomMobs returns the active mob instances of a room, alive and dead,
// through the short-TTL occupancy cache.
func (r *Registry) RoomMobs(ctx context.Context, roomID int64) ([]*model.MobInstance, error) {
	key := cache.KeyRoomMobs(roomID)
	if mobs, ok := cache.Lookup[[]*model.MobInstance](ctx, r.cache, key); ok {
		return mobs, nil
	}
	mobs, err := r.mobs.ByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	cache.Store(ctx, r.cache, key, mobs, cache.TTLOccupancy)
	return mobs, nil
}

// SpawnForRoom fills a room's free spawn slots according to its policy and
// returns the newly spawned instances. Rooms whose policy has no slots, and
// safe or entrance rooms, are a no-op.
func (r *Registry) SpawnForRoom(ctx context.Context, room *model.Room) ([]*model.MobInstance, error) {
	policy := r.policies.For(room.Type)
	if policy.MaxMobs == 0 || !room.CanHoldMobs() {
		return nil, nil
	}

	floor, err := r.graph.FloorByID(ctx, room.FloorID)
	if err != nil {
		return nil, fmt.Errorf("loading floor %d: %w", room.FloorID, err)
	}
	if floor == nil {
		return nil, fmt.Errorf("room %d references missing floor %d", room.ID, room.FloorID)
	}

	occupied, err := r.mobs.CountInRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if occupied >= policy.MaxMobs {
		return nil, nil
	}

	templates, err := r.eligibleTemplates(ctx, floor.Number, policy)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		slog.Warn("no eligible enemy templates for room", "room", room.ID, "floor", floor.Number)
		return nil, nil
	}

	var spawned []*model.MobInstance
	for slot := occupied; slot < policy.MaxMobs; slot++ {
		if rand.Float64() >= policy.SpawnChance {
			continue
		}
		mob := r.compose(room.ID, templates[rand.IntN(len(templates))])
		if err := r.mobs.Insert(ctx, mob); err != nil {
			return spawned, err
		}
		spawned = append(spawned, mob)
		slog.Info("mob spawned",
			"mob", mob.ID, "room", room.ID, "name", mob.DisplayName, "health", mob.MaxHealth)
	}

	if len(spawned) > 0 {
		cache.Invalidate(ctx, r.cache, cache.KeyRoomMobs(room.ID))
	}
	return spawned, nil
}

// Damage applies damage to a living mob, clamping health at zero, and
// performs the kill transition when it reaches zero. Returns whether the
// hit was lethal. Non-positive amounts and hits on an already-dead mob are
// no-ops; health only ever moves down through here.
func (r *Registry) Damage(ctx context.Context, mobID uuid.UUID, amount int32) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	mob, err := r.mobs.ByID(ctx, mobID)
	if err != nil {
		return false, err
	}
	if mob == nil {
		return false, fmt.Errorf("mob %s not found", mobID)
	}
	if mob.Dead() {
		return false, nil
	}

	health := mob.CurrentHealth - amount
	if health <= 0 {
		if err := r.Kill(ctx, mobID); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := r.mobs.UpdateHealth(ctx, mobID, health); err != nil {
		return false, err
	}
	cache.Invalidate(ctx, r.cache, cache.KeyRoomMobs(mob.RoomID))
	return false, nil
}

// Kill transitions a mob to dead and stamps its respawn window from the
// room type's policy. Killing an already-dead mob is a no-op.
func (r *Registry) Kill(ctx context.Context, mobID uuid.UUID) error {
	mob, err := r.mobs.ByID(ctx, mobID)
	if err != nil {
		return err
	}
	if mob == nil {
		return fmt.Errorf("mob %s not found", mobID)
	}

	respawnHours := r.respawnHoursFor(ctx, mob.RoomID)
	now := r.now()
	killed, err := r.mobs.MarkDead(ctx, mobID, now, now.Add(time.Duration(respawnHours)*time.Hour))
	if err != nil {
		return err
	}
	if !killed {
		return nil
	}

	cache.Invalidate(ctx, r.cache, cache.KeyRoomMobs(mob.RoomID))
	slog.Info("mob killed",
		"mob", mobID, "room", mob.RoomID, "name", mob.DisplayName, "respawnHours", respawnHours)
	return nil
}

// ProcessRespawns revives every dead mob whose respawn window has elapsed
// and returns how many transitioned. Safe to run repeatedly or from several
// nodes at once: the revive is a conditional update, so a mob already
// brought back matches nothing.
func (r *Registry) ProcessRespawns(ctx context.Context) (int, error) {
	revived, err := r.mobs.ReviveDue(ctx, r.now())
	if err != nil {
		return 0, err
	}
	if len(revived) == 0 {
		return 0, nil
	}

	rooms := make(map[int64]struct{}, len(revived))
	for _, mob := range revived {
		rooms[mob.RoomID] = struct{}{}
	}
	for roomID := range rooms {
		cache.Invalidate(ctx, r.cache, cache.KeyRoomMobs(roomID))
	}

	slog.Info("mobs respawned", "count", len(revived), "rooms", len(rooms))
	return len(revived), nil
}

// eligibleTemplates filters the floor's templates through the policy's
// enemy type list.
func (r *Registry) eligibleTemplates(ctx context.Context, floorNumber int32, policy Policy) ([]*model.EnemyTemplate, error) {
	templates, err := r.templates.EligibleForFloor(ctx, floorNumber)
	if err != nil {
		return nil, fmt.Errorf("loading templates for floor %d: %w", floorNumber, err)
	}
	if len(policy.EnemyTypes) == 0 {
		return templates, nil
	}
	filtered := templates[:0:0]
	for _, t := range templates {
		if policy.Allows(t.Name()) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// compose builds a fresh alive instance from a template: rolled rarity,
// prefixed display name and a random grid position.
func (r *Registry) compose(roomID int64, template *model.EnemyTemplate) *model.MobInstance {
	rarity := rollRarity()
	return &model.MobInstance{
		ID:            uuid.New(),
		RoomID:        roomID,
		TemplateID:    template.TemplateID(),
		DisplayName:   rarity.DisplayPrefix() + template.Name(),
		Rarity:        rarity,
		CurrentHealth: template.MaxHealth(),
		MaxHealth:     template.MaxHealth(),
		PosX:          int32(rand.IntN(15)),
		PosY:          int32(rand.IntN(15)),
		IsAlive:       true,
		IsActive:      true,
	}
}

// respawnHoursFor resolves the respawn delay from the mob's room type,
// falling back to a conservative default when the room cannot be loaded.
func (r *Registry) respawnHoursFor(ctx context.Context, roomID int64) int {
	room, err := r.graph.RoomByID(ctx, roomID)
	if err != nil || room == nil {
		slog.Warn("falling back to default respawn delay", "room", roomID, "error", err)
		return 4
	}
	policy := r.policies.For(room.Type)
	if policy.RespawnHours == 0 {
		return 4
	}
	return policy.RespawnHours
}

// rollRarity draws a rarity grade with fixed weights.
func rollRarity() model.Rarity {
	roll := rand.Float64()
	switch {
	case roll < 0.60:
		return model.RarityCommon
	case roll < 0.85:
		return model.RarityUncommon
	case roll < 0.95:
		return model.RarityRare
	case roll < 0.99:
		return model.RarityEpic
	default:
		return model.RarityLegendary
	}
}
