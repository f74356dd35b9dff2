package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// EnemyTemplateRepository loads enemy templates authored by the content
// generator.
type EnemyTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewEnemyTemplateRepository creates a new enemy template repository.
func NewEnemyTemplateRepository(pool *pgxpool.Pool) *EnemyTemplateRepository {
	return &EnemyTemplateRepository{pool: pool}
}

// ByID loads one template. Returns nil, nil if it does not exist.
func (r *EnemyTemplateRepository) ByID(ctx context.Context, templateID int64) (*model.EnemyTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, min_floor, max_floor, level, max_health,
		        attack, defense, speed, exp_reward, credits_reward
		 FROM enemy_templates WHERE id = $1`, templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template %d: %w", templateID, err)
	}
	defer rows.Close()
	templates, err := collectTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	return templates[0], nil
}

// EligibleForFloor loads all templates whose floor range covers the floor.
func (r *EnemyTemplateRepository) EligibleForFloor(ctx context.Context, floorNumber int32) ([]*model.EnemyTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, min_floor, max_floor, level, max_health,
		        attack, defense, speed, exp_reward, credits_reward
		 FROM enemy_templates
		 WHERE min_floor <= $1 AND max_floor >= $1
		 ORDER BY id`, floorNumber)
	if err != nil {
		return nil, fmt.Errorf("querying templates for floor %d: %w", floorNumber, err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func collectTemplates(rows pgx.Rows) ([]*model.EnemyTemplate, error) {
	var templates []*model.EnemyTemplate
	for rows.Next() {
		var (
			templateID               int64
			name                     string
			minFloor, maxFloor       int32
			level, maxHealth         int32
			attack, defense, speed   int32
			expReward, creditsReward int32
		)
		if err := rows.Scan(&templateID, &name, &minFloor, &maxFloor, &level, &maxHealth,
			&attack, &defense, &speed, &expReward, &creditsReward); err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		templates = append(templates, model.NewEnemyTemplate(
			templateID, name, minFloor, maxFloor, level, maxHealth,
			attack, defense, speed, expReward, creditsReward))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template rows: %w", err)
	}
	return templates, nil
}
