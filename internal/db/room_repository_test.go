package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/testutil"
)

func TestRoomRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := testutil.SetupTestDB(t)
	repo := NewRoomRepository(pool)
	ctx := context.Background()

	floorID := testutil.InsertFloor(t, pool, 1, "The Shallows")
	entrance := testutil.InsertRoom(t, pool, &model.Room{FloorID: floorID, X: 0, Y: 0, Type: model.RoomEntrance, Name: "Entrance", IsSafe: true})
	hall := testutil.InsertRoom(t, pool, &model.Room{FloorID: floorID, X: 1, Y: 0, Type: model.RoomNormal, Name: "Hall", HasLoot: true})
	testutil.InsertConnection(t, pool, entrance, hall, model.DirectionEast, false)
	testutil.InsertConnection(t, pool, hall, entrance, model.DirectionWest, false)

	t.Run("room by id", func(t *testing.T) {
		room, err := repo.RoomByID(ctx, hall)
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, "Hall", room.Name)
		assert.True(t, room.HasLoot)

		missing, err := repo.RoomByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("rooms by floor", func(t *testing.T) {
		rooms, err := repo.RoomsByFloor(ctx, floorID)
		require.NoError(t, err)
		assert.Len(t, rooms, 2)
	})

	t.Run("connections ordered by id", func(t *testing.T) {
		conns, err := repo.ConnectionsFrom(ctx, entrance)
		require.NoError(t, err)
		require.Len(t, conns, 1)
		assert.Equal(t, hall, conns[0].ToRoomID)
		assert.Equal(t, model.DirectionEast, conns[0].Direction)
	})

	t.Run("floors", func(t *testing.T) {
		floor, err := repo.FloorByID(ctx, floorID)
		require.NoError(t, err)
		require.NotNil(t, floor)
		assert.Equal(t, int32(1), floor.Number)

		floor, err = repo.FloorByNumber(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, floor)
		assert.Equal(t, floorID, floor.ID)

		floor, err = repo.FloorByNumber(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, floor)
	})

	t.Run("entrance room", func(t *testing.T) {
		room, err := repo.EntranceRoom(ctx, floorID)
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, entrance, room.ID)
	})
}

func TestEnemyTemplateRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := testutil.SetupTestDB(t)
	repo := NewEnemyTemplateRepository(pool)
	ctx := context.Background()

	ratID := testutil.InsertTemplate(t, pool, "Cave Rat", 1, 3, 30)
	testutil.InsertTemplate(t, pool, "Stone Golem", 2, 9, 200)

	t.Run("by id", func(t *testing.T) {
		template, err := repo.ByID(ctx, ratID)
		require.NoError(t, err)
		require.NotNil(t, template)
		assert.Equal(t, "Cave Rat", template.Name())
		assert.Equal(t, int32(30), template.MaxHealth())

		missing, err := repo.ByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("eligible for floor", func(t *testing.T) {
		templates, err := repo.EligibleForFloor(ctx, 1)
		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, "Cave Rat", templates[0].Name())

		templates, err = repo.EligibleForFloor(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, templates, 2)

		templates, err = repo.EligibleForFloor(ctx, 50)
		require.NoError(t, err)
		assert.Empty(t, templates)
	})
}
