package model

// EnemyTemplate represents enemy stats from the enemy_templates table.
// Templates are authored by the content generator and read-only here.
type EnemyTemplate struct {
	templateID    int64
	name          string
	minFloor      int32
	maxFloor      int32
	level         int32
	maxHealth     int32
	attack        int32
	defense       int32
	speed         int32
	expReward     int32
	creditsReward int32
}

// NewEnemyTemplate creates a new enemy template.
func NewEnemyTemplate(
	templateID int64,
	name string,
	minFloor, maxFloor int32,
	level, maxHealth int32,
	attack, defense, speed int32,
	expReward, creditsReward int32,
) *EnemyTemplate {
	return &EnemyTemplate{
		templateID:    templateID,
		name:          name,
		minFloor:      minFloor,
		maxFloor:      maxFloor,
		level:         level,
		maxHealth:     maxHealth,
		attack:        attack,
		defense:       defense,
		speed:         speed,
		expReward:     expReward,
		creditsReward: creditsReward,
	}
}

// TemplateID returns template ID
func (t *EnemyTemplate) TemplateID() int64 {
	return t.templateID
}

// Name returns enemy name
func (t *EnemyTemplate) Name() string {
	return t.name
}

// MinFloor returns the shallowest floor the enemy appears on
func (t *EnemyTemplate) MinFloor() int32 {
	return t.minFloor
}

// MaxFloor returns the deepest floor the enemy appears on
func (t *EnemyTemplate) MaxFloor() int32 {
	return t.maxFloor
}

// Level returns enemy level
func (t *EnemyTemplate) Level() int32 {
	return t.level
}

// MaxHealth returns max health
func (t *EnemyTemplate) MaxHealth() int32 {
	return t.maxHealth
}

// Attack returns attack stat
func (t *EnemyTemplate) Attack() int32 {
	return t.attack
}

// Defense returns defense stat
func (t *EnemyTemplate) Defense() int32 {
	return t.defense
}

// Speed returns speed stat
func (t *EnemyTemplate) Speed() int32 {
	return t.speed
}

// ExpReward returns experience granted on kill
func (t *EnemyTemplate) ExpReward() int32 {
	return t.expReward
}

// CreditsReward returns credits granted on kill
func (t *EnemyTemplate) CreditsReward() int32 {
	return t.creditsReward
}

// EligibleForFloor reports whether the template may spawn on the floor.
func (t *EnemyTemplate) EligibleForFloor(floorNumber int32) bool {
	return floorNumber >= t.minFloor && floorNumber <= t.maxFloor
}
