package systems

import (
	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/ecs"
)

// RegenSystem 推进生命恢复和护盾充能
type RegenSystem struct {
	entityManager *ecs.EntityManager
}

// NewRegenSystem 创建恢复系统
func NewRegenSystem(em *ecs.EntityManager) *RegenSystem {
	return &RegenSystem{entityManager: em}
}

// Update 每个实体的生命值和护盾各推进一次
func (s *RegenSystem) Update(deltaTime float64) {
	if !(deltaTime > 0) {
		return
	}

	for _, id := range ecs.GetEntitiesWith1[*components.HealthComponent](s.entityManager) {
		if health, ok := ecs.GetComponent[*components.HealthComponent](s.entityManager, id); ok {
			health.Tick(deltaTime)
		}
	}

	for _, id := range ecs.GetEntitiesWith1[*components.ShieldComponent](s.entityManager) {
		if shield, ok := ecs.GetComponent[*components.ShieldComponent](s.entityManager, id); ok {
			shield.Tick(deltaTime)
		}
	}
}
