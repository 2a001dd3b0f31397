package systems

import (
	"log"
	"sort"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/ecs"
)

// maxDrainPasses Update 中处理队列的最大轮数
// 事件处理函数互相投递伤害时，超出的部分留到下一帧
const maxDrainPasses = 64

// ControllerLookup 查询实体所属的控制者
type ControllerLookup interface {
	ControllerOf(id ecs.EntityID) components.ControllerID
}

// EntityControllerLookup 基于 ControllerComponent 的默认实现
type EntityControllerLookup struct {
	EntityManager *ecs.EntityManager
}

// ControllerOf 实现 ControllerLookup，实体没有 ControllerComponent 时返回 NoController
func (l EntityControllerLookup) ControllerOf(id ecs.EntityID) components.ControllerID {
	if l.EntityManager == nil || id == 0 {
		return components.NoController
	}
	ctrl, ok := ecs.GetComponent[*components.ControllerComponent](l.EntityManager, id)
	if !ok || ctrl == nil {
		return components.NoController
	}
	return ctrl.ID
}

// DamageResolvedEvent 一次伤害结算完成
type DamageResolvedEvent struct {
	Target   ecs.EntityID
	Envelope components.DamageEnvelope
	Result   components.DamageResult
}

// DamageSystem 伤害结算系统
//
// 设计说明:
//   - 每个目标实体一个 FIFO 队列，Update 按实体 ID 升序处理
//   - 结算过程中（事件处理函数里）投递给同一目标的伤害排在当前伤害之后
//   - 来源只有实体没有控制者时，通过 ControllerLookup 补全控制者（用于自伤判定）
type DamageSystem struct {
	entityManager *ecs.EntityManager
	lookup        ControllerLookup

	queues    map[ecs.EntityID][]components.DamageEnvelope
	resolving map[ecs.EntityID]bool

	// OnResolved 每次结算后触发（包括 Ignored）
	OnResolved components.Signal[DamageResolvedEvent]
}

// NewDamageSystem 创建伤害结算系统，lookup 为 nil 时使用 EntityControllerLookup
func NewDamageSystem(em *ecs.EntityManager, lookup ControllerLookup) *DamageSystem {
	if lookup == nil {
		lookup = EntityControllerLookup{EntityManager: em}
	}
	return &DamageSystem{
		entityManager: em,
		lookup:        lookup,
		queues:        make(map[ecs.EntityID][]components.DamageEnvelope),
		resolving:     make(map[ecs.EntityID]bool),
	}
}

// Enqueue 投递一次伤害，在下一次 Update 中结算
// 目标实体不存在时返回 false
func (s *DamageSystem) Enqueue(target ecs.EntityID, env components.DamageEnvelope) bool {
	if !s.entityManager.Exists(target) {
		log.Printf("[DamageSystem] 警告：目标实体 %d 不存在，丢弃伤害", target)
		return false
	}
	s.queues[target] = append(s.queues[target], env)
	return true
}

// Pending 返回目标实体尚未结算的伤害数量
func (s *DamageSystem) Pending(target ecs.EntityID) int {
	return len(s.queues[target])
}

// Resolve 立即结算一次伤害
// 目标正在结算中时（事件处理函数重入），伤害改为排队并返回 Ignored
func (s *DamageSystem) Resolve(target ecs.EntityID, env components.DamageEnvelope) components.DamageResult {
	if s.resolving[target] {
		log.Printf("[DamageSystem] 实体 %d 正在结算，伤害延后处理", target)
		s.Enqueue(target, env)
		return components.DamageResultIgnored
	}
	return s.resolve(target, env)
}

// Update 处理所有排队的伤害
func (s *DamageSystem) Update() {
	for pass := 0; pass < maxDrainPasses; pass++ {
		targets := s.pendingTargets()
		if len(targets) == 0 {
			return
		}
		for _, target := range targets {
			s.drain(target)
		}
	}
	if len(s.queues) > 0 {
		log.Printf("[DamageSystem] 警告：%d 个实体的伤害队列未能在本帧处理完", len(s.queues))
	}
}

// pendingTargets 返回有排队伤害的实体（按 ID 升序）
func (s *DamageSystem) pendingTargets() []ecs.EntityID {
	if len(s.queues) == 0 {
		return nil
	}
	targets := make([]ecs.EntityID, 0, len(s.queues))
	for id := range s.queues {
		targets = append(targets, id)
	}
	sortEntityIDs(targets)
	return targets
}

// drain 按 FIFO 顺序处理目标在本轮开始时已排队的伤害
// 处理期间新加入的伤害留到下一轮
func (s *DamageSystem) drain(target ecs.EntityID) {
	batch := s.queues[target]
	delete(s.queues, target)
	for _, env := range batch {
		s.resolve(target, env)
	}
}

func (s *DamageSystem) resolve(target ecs.EntityID, env components.DamageEnvelope) components.DamageResult {
	env = s.fillController(env)

	result := components.DamageResultIgnored
	defense, ok := ecs.GetComponent[*components.DefenseComponent](s.entityManager, target)
	if ok && defense != nil {
		s.resolving[target] = true
		result = defense.Chain.Apply(env)
		delete(s.resolving, target)
	}

	s.OnResolved.Emit(DamageResolvedEvent{Target: target, Envelope: env, Result: result})
	return result
}

// fillController 为只有来源实体的伤害补全控制者，不修改调用方的 DamageSource
func (s *DamageSystem) fillController(env components.DamageEnvelope) components.DamageEnvelope {
	src := env.Source
	if src == nil || src.Controller != components.NoController || src.Entity == 0 {
		return env
	}
	controller := s.lookup.ControllerOf(src.Entity)
	if controller == components.NoController {
		return env
	}
	filled := *src
	filled.Controller = controller
	env.Source = &filled
	return env
}

func sortEntityIDs(ids []ecs.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
