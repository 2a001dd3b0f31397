package components

import (
	"log"
	"math"

	"github.com/gonewx/defense/pkg/types"
)

// HealthEpsilon 生命值比较容差，低于该值视为 0
const HealthEpsilon = 1e-6

// HealthChangedEvent 生命值变化事件
type HealthChangedEvent struct {
	From     float64
	To       float64
	Critical bool
	Source   *DamageSource // 可为 nil
}

// HealthMaxChangedEvent 最大生命值变化事件
type HealthMaxChangedEvent struct {
	From float64
	To   float64
}

// HealthComponent 生命值管理器
// 用于所有可被攻击的实体，是防御链的终点资源
//
// 设计说明:
//   - 生命值始终在 [0, HealthMax] 范围内
//   - alive 是一次性锁存：生命值降到 0 时只触发一次 OnAliveChanged(false)，
//     从 0 恢复为正数时只触发一次 OnAliveChanged(true)
//   - 只能通过 AddDamage / AddHealth / SetHealth / SetHealthMax 修改
type HealthComponent struct {
	health    float64
	healthMax float64
	alive     bool

	// Owner 目标所属控制者，用于自伤判定
	Owner ControllerID
	// SelfDamage 是否允许受到自己造成的伤害
	SelfDamage bool
	// SelfDamageExceptions 即使禁用自伤也总是生效的伤害类型（如坠落、溺水）
	SelfDamageExceptions types.DamageType

	// Regen 生命恢复计时器，nil 表示不恢复
	Regen *RegenInterruptTimer

	OnHealthChanged    Signal[HealthChangedEvent]
	OnAliveChanged     Signal[bool]
	OnHealthMaxChanged Signal[HealthMaxChangedEvent]
}

// NewHealthComponent 创建生命值组件
// healthMax <= 0 时使用 1；health 会被钳制到 [0, healthMax]
func NewHealthComponent(health, healthMax float64) *HealthComponent {
	if !isFinite(healthMax) || healthMax <= 0 {
		log.Printf("[HealthComponent] 警告：最大生命值 %v 无效，使用 1", healthMax)
		healthMax = 1
	}
	h := &HealthComponent{
		healthMax: healthMax,
		health:    clampHealth(health, healthMax),
	}
	h.alive = h.health > 0
	return h
}

// Health 返回当前生命值
func (h *HealthComponent) Health() float64 {
	if h == nil {
		return 0
	}
	return h.health
}

// HealthMax 返回最大生命值
func (h *HealthComponent) HealthMax() float64 {
	if h == nil {
		return 0
	}
	return h.healthMax
}

// IsAlive 检查是否存活
func (h *HealthComponent) IsAlive() bool {
	return h != nil && h.alive
}

// Normalized 返回生命值比例 [0, 1]
func (h *HealthComponent) Normalized() float64 {
	if h == nil || h.healthMax <= 0 {
		return 0
	}
	return h.health / h.healthMax
}

// AddDamage 造成伤害
// 返回 false 表示伤害被丢弃（参数无效或被自伤规则过滤），此时不触发任何事件
func (h *HealthComponent) AddDamage(amount float64, critical bool, source *DamageSource) bool {
	return h.AddDamageWithHit(amount, critical, source, nil)
}

// AddDamageWithHit 造成伤害并附带命中信息
// hit 仅供表现层使用，不影响数值结果
func (h *HealthComponent) AddDamageWithHit(amount float64, critical bool, source *DamageSource, hit *HitInfo) bool {
	if h == nil {
		return false
	}
	if !isFinite(amount) || amount < 0 {
		log.Printf("[HealthComponent] 警告：伤害值 %v 无效，忽略", amount)
		return false
	}
	if h.FiltersSelfDamage(source) {
		return false
	}

	old := h.health
	h.setHealthInternal(old-amount, critical, source)
	if decrease := old - h.health; decrease > 0 && h.Regen != nil {
		h.Regen.Notify(decrease)
	}
	return true
}

// AddHealth 恢复生命值
func (h *HealthComponent) AddHealth(amount float64, source *DamageSource) {
	if h == nil {
		return
	}
	if !isFinite(amount) || amount < 0 {
		log.Printf("[HealthComponent] 警告：治疗值 %v 无效，忽略", amount)
		return
	}
	h.setHealthInternal(h.health+amount, false, source)
}

// SetHealth 直接设置生命值（钳制后触发正常的变化事件和锁存）
func (h *HealthComponent) SetHealth(v float64) {
	if h == nil {
		return
	}
	if !isFinite(v) {
		log.Printf("[HealthComponent] 警告：生命值 %v 无效，忽略", v)
		return
	}
	h.setHealthInternal(v, false, nil)
}

// SetHealthMax 设置最大生命值
// 新上限低于当前生命值时会先下调生命值（触发 OnHealthChanged），再触发 OnHealthMaxChanged
func (h *HealthComponent) SetHealthMax(v float64) {
	if h == nil {
		return
	}
	if !isFinite(v) {
		log.Printf("[HealthComponent] 警告：最大生命值 %v 无效，忽略", v)
		return
	}
	if v <= 0 {
		log.Printf("[HealthComponent] 警告：最大生命值必须大于 0，忽略 %v", v)
		return
	}
	if v == h.healthMax {
		return
	}

	old := h.healthMax
	h.healthMax = v
	if h.health > v {
		h.setHealthInternal(v, false, nil)
	}
	h.OnHealthMaxChanged.Emit(HealthMaxChangedEvent{From: old, To: v})
}

// SetAlive 直接设置存活状态（存档恢复用），状态改变时触发 OnAliveChanged
func (h *HealthComponent) SetAlive(alive bool) {
	if h == nil || h.alive == alive {
		return
	}
	h.alive = alive
	h.OnAliveChanged.Emit(alive)
}

// Tick 推进生命恢复，只在存活时生效
func (h *HealthComponent) Tick(dt float64) {
	if h == nil || h.Regen == nil || !h.alive {
		return
	}
	next := h.Regen.Tick(dt, h.health, h.healthMax)
	if next > h.health {
		h.setHealthInternal(next, false, nil)
	}
}

// FiltersSelfDamage 自伤过滤：同一控制者造成的伤害在禁用自伤时被丢弃，
// 除非伤害类型属于例外集合
func (h *HealthComponent) FiltersSelfDamage(source *DamageSource) bool {
	if h == nil || h.SelfDamage || source == nil {
		return false
	}
	if source.Controller == NoController || source.Controller != h.Owner {
		return false
	}
	return source.Filter.DamageType()&h.SelfDamageExceptions == 0
}

// setHealthInternal 钳制并写入生命值，按顺序触发变化事件和存活锁存
func (h *HealthComponent) setHealthInternal(v float64, critical bool, source *DamageSource) {
	next := clampHealth(v, h.healthMax)
	old := h.health
	if next == old {
		return
	}
	h.health = next
	h.OnHealthChanged.Emit(HealthChangedEvent{From: old, To: next, Critical: critical, Source: source})

	if next == 0 && h.alive {
		h.alive = false
		h.OnAliveChanged.Emit(false)
	} else if next > 0 && !h.alive {
		h.alive = true
		h.OnAliveChanged.Emit(true)
	}
}

func clampHealth(v, healthMax float64) float64 {
	if math.IsNaN(v) || v < HealthEpsilon {
		return 0
	}
	if v > healthMax {
		return healthMax
	}
	return v
}
