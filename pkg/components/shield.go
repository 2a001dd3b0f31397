package components

import (
	"log"
	"math"

	"github.com/gonewx/defense/pkg/types"
)

// shieldEpsilon 护盾分段计算容差
const shieldEpsilon = 1e-4

// ShieldState 护盾状态
type ShieldState int

const (
	// ShieldStable 稳定：未在恢复中
	ShieldStable ShieldState = iota
	// ShieldEmpty 护盾为空且不会自动恢复
	ShieldEmpty
	// ShieldRecharging 正在充能
	ShieldRecharging
	// ShieldInterrupted 受击后的打断等待中
	ShieldInterrupted
)

// String 返回护盾状态的字符串表示
func (s ShieldState) String() string {
	switch s {
	case ShieldStable:
		return "stable"
	case ShieldEmpty:
		return "empty"
	case ShieldRecharging:
		return "recharging"
	case ShieldInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ShieldMode 护盾减伤模式
type ShieldMode int

const (
	// ShieldModeOverflow 默认模式：伤害可以跨分段消耗护盾
	ShieldModeOverflow ShieldMode = iota
	// ShieldModeActiveStep 只消耗当前分段，溢出的伤害穿透护盾
	ShieldModeActiveStep
)

// ShieldValueChangedEvent 护盾值变化事件
type ShieldValueChangedEvent struct {
	From float64
	To   float64
}

// ShieldParams 护盾初始参数
type ShieldParams struct {
	Shield            float64 // 初始护盾值
	StepCapacity      float64 // 每段容量，必须 > 0
	StepCount         int     // 分段数，必须 >= 1
	ChargeRate        float64 // 每秒充能量
	ChargeDelay       float64 // 受击后的充能延迟（秒）
	Mitigation        float64 // 减伤系数，0 表示护盾不吸收伤害
	RechargeFromEmpty bool    // 护盾为空时是否允许第一段自动充满
	Mode              ShieldMode
	TypeMultipliers   map[types.DamageType]float64
}

// ShieldComponent 分段护盾管理器
//
// 设计说明:
//   - 护盾值范围 [0, StepCount*StepCapacity]
//   - 伤害可以连续消耗护盾；拾取物只能按整段填充或清空
//   - 受击后进入 Interrupted 状态，ChargeDelay 秒内不充能；
//     之后只充到当前分段的边界
//   - 不变量：state == ShieldInterrupted 当且仅当 InterruptRemaining() > 0
type ShieldComponent struct {
	shield       float64
	stepCapacity float64
	stepCount    int
	mitigation   float64
	state        ShieldState
	timer        RegenInterruptTimer

	// RechargeFromEmpty 护盾为空时是否允许第一段自动充满
	RechargeFromEmpty bool
	// Mode 减伤模式
	Mode ShieldMode
	// TypeMultipliers 按伤害类型的倍率（护盾变体的扩展点），未配置的类型为 1
	TypeMultipliers map[types.DamageType]float64

	OnShieldValueChanged  Signal[ShieldValueChangedEvent]
	OnShieldStateChanged  Signal[ShieldState]
	OnShieldConfigChanged Signal[struct{}]
}

// NewShieldComponent 根据参数创建护盾组件，非法参数会被修正并记录警告
func NewShieldComponent(p ShieldParams) *ShieldComponent {
	if !(p.StepCapacity > 0) || !isFinite(p.StepCapacity) {
		log.Printf("[ShieldComponent] 警告：分段容量 %v 无效，使用 1", p.StepCapacity)
		p.StepCapacity = 1
	}
	if p.StepCount < 1 {
		log.Printf("[ShieldComponent] 警告：分段数 %d 无效，使用 1", p.StepCount)
		p.StepCount = 1
	}

	s := &ShieldComponent{
		stepCapacity:      p.StepCapacity,
		stepCount:         p.StepCount,
		mitigation:        nonNegative(p.Mitigation),
		RechargeFromEmpty: p.RechargeFromEmpty,
		Mode:              p.Mode,
		TypeMultipliers:   p.TypeMultipliers,
		timer: RegenInterruptTimer{
			Rate:  nonNegative(p.ChargeRate),
			Delay: nonNegative(p.ChargeDelay),
		},
	}
	s.shield = s.clampShield(p.Shield)
	s.state = s.evaluateState()
	return s
}

// Shield 返回当前护盾值
func (s *ShieldComponent) Shield() float64 { return s.shield }

// StepCapacity 返回每段容量
func (s *ShieldComponent) StepCapacity() float64 { return s.stepCapacity }

// StepCount 返回分段数
func (s *ShieldComponent) StepCount() int { return s.stepCount }

// ChargeRate 返回每秒充能量
func (s *ShieldComponent) ChargeRate() float64 { return s.timer.Rate }

// ChargeDelay 返回受击后的充能延迟
func (s *ShieldComponent) ChargeDelay() float64 { return s.timer.Delay }

// Mitigation 返回减伤系数
func (s *ShieldComponent) Mitigation() float64 { return s.mitigation }

// InterruptRemaining 返回剩余打断时间
func (s *ShieldComponent) InterruptRemaining() float64 { return s.timer.Remaining }

// State 返回当前状态
func (s *ShieldComponent) State() ShieldState { return s.state }

// MaxShield 返回护盾上限
func (s *ShieldComponent) MaxShield() float64 {
	return float64(s.stepCount) * s.stepCapacity
}

// CurrentStep 返回当前所在分段 ceil((shield-ε)/capacity)，范围 [0, StepCount]
func (s *ShieldComponent) CurrentStep() int {
	if s.stepCapacity <= 0 {
		return 0
	}
	step := int(math.Ceil((s.shield - shieldEpsilon) / s.stepCapacity))
	return clampInt(step, 0, s.stepCount)
}

// FullSteps 返回已充满的分段数
func (s *ShieldComponent) FullSteps() int {
	if s.stepCapacity <= 0 {
		return 0
	}
	steps := int(math.Floor((s.shield + shieldEpsilon) / s.stepCapacity))
	return clampInt(steps, 0, s.stepCount)
}

// PerTypeMultiplier 返回伤害类型对应的倍率
// 先查完整掩码，再按从低到高的单个类型位查找，都没有配置时返回 1
func (s *ShieldComponent) PerTypeMultiplier(damageType types.DamageType) float64 {
	if len(s.TypeMultipliers) == 0 {
		return 1
	}
	if m, ok := s.TypeMultipliers[damageType]; ok {
		return m
	}
	for bit := types.DamageType(1); bit != 0; bit <<= 1 {
		if damageType&bit == 0 {
			continue
		}
		if m, ok := s.TypeMultipliers[bit]; ok {
			return m
		}
	}
	return 1
}

// GetShieldedDamage 用护盾吸收伤害，返回未被吸收的伤害
//
// 计算方式：
//
//	scaled   = damage * mitigation * typeMultiplier
//	absorbed = min(scaled, shield)
//	返回 damage - absorbed/typeMultiplier，完全吸收时为 damage*(1-mitigation)
//	剩余小于 shieldEpsilon 时返回 0
//
// 减伤系数不为 1 时，护盾消耗与实际抵挡的伤害不对称
func (s *ShieldComponent) GetShieldedDamage(damage float64, damageType types.DamageType) float64 {
	typeMultiplier := s.PerTypeMultiplier(damageType)
	if s.shield <= 0 || !(damage > 0) || s.mitigation <= 0 || !(typeMultiplier > 0) {
		return damage
	}

	available := s.shield
	if s.Mode == ShieldModeActiveStep {
		available = s.shield - float64(s.CurrentStep()-1)*s.stepCapacity
	}

	scaled := damage * s.mitigation * typeMultiplier
	absorbed := math.Min(scaled, available)
	if absorbed <= 0 {
		return damage
	}

	s.drain(absorbed)
	remaining := damage - absorbed/typeMultiplier
	if absorbed >= scaled {
		remaining = damage * (1 - s.mitigation)
	}
	if remaining < shieldEpsilon {
		return 0
	}
	return remaining
}

// FillShieldSteps 填充 count 个整段，返回实际填充的段数
// 已满时返回 0；填充后状态强制为 Stable
func (s *ShieldComponent) FillShieldSteps(count int) int {
	if count <= 0 || s.stepCapacity <= 0 {
		return 0
	}
	full := s.FullSteps()
	filled := clampInt(count, 0, s.stepCount-full)
	if filled <= 0 {
		return 0
	}
	target := full + filled

	s.setShieldInternal(float64(target) * s.stepCapacity)
	s.timer.Reset()
	s.setState(ShieldStable)
	return filled
}

// EmptyShieldSteps 清空 count 个整段（当前不完整的分段算作一段），返回实际清空的段数
func (s *ShieldComponent) EmptyShieldSteps(count int) int {
	if count <= 0 || s.stepCapacity <= 0 {
		return 0
	}
	step := s.CurrentStep()
	cleared := clampInt(count, 0, step)
	if cleared <= 0 {
		return 0
	}

	s.setShieldInternal(float64(step-cleared) * s.stepCapacity)
	s.refreshState()
	return cleared
}

// SetShield 直接设置护盾值（钳制到 [0, MaxShield]），不触发打断
func (s *ShieldComponent) SetShield(v float64) {
	if !isFinite(v) {
		log.Printf("[ShieldComponent] 警告：护盾值 %v 无效，忽略", v)
		return
	}
	s.setShieldInternal(s.clampShield(v))
	s.refreshState()
}

// SetStepCapacity 设置每段容量，按比例缩放当前护盾值以保持填充比例
func (s *ShieldComponent) SetStepCapacity(capacity float64) {
	if !(capacity > 0) || !isFinite(capacity) {
		log.Printf("[ShieldComponent] 警告：分段容量必须大于 0，忽略 %v", capacity)
		return
	}
	if capacity == s.stepCapacity {
		return
	}

	old := s.stepCapacity
	s.stepCapacity = capacity
	next := s.shield
	if old > 0 {
		next = s.shield / old * capacity
	}
	s.setShieldInternal(s.clampShield(next))
	s.OnShieldConfigChanged.Emit(struct{}{})
	s.refreshState()
}

// SetStepCount 设置分段数，当前护盾值会被钳制到新的上限
func (s *ShieldComponent) SetStepCount(count int) {
	if count < 1 {
		log.Printf("[ShieldComponent] 警告：分段数必须 >= 1，忽略 %d", count)
		return
	}
	if count == s.stepCount {
		return
	}

	s.stepCount = count
	s.setShieldInternal(s.clampShield(s.shield))
	s.OnShieldConfigChanged.Emit(struct{}{})
	s.refreshState()
}

// SetChargeRate 设置每秒充能量，负值钳制为 0
func (s *ShieldComponent) SetChargeRate(rate float64) {
	rate = nonNegative(rate)
	if rate == s.timer.Rate {
		return
	}
	s.timer.Rate = rate
	s.OnShieldConfigChanged.Emit(struct{}{})
	s.refreshState()
}

// SetChargeDelay 设置充能延迟，负值钳制为 0（不影响正在进行的打断）
func (s *ShieldComponent) SetChargeDelay(delay float64) {
	delay = nonNegative(delay)
	if delay == s.timer.Delay {
		return
	}
	s.timer.Delay = delay
	s.OnShieldConfigChanged.Emit(struct{}{})
}

// SetMitigation 设置减伤系数，负值钳制为 0
func (s *ShieldComponent) SetMitigation(mitigation float64) {
	mitigation = nonNegative(mitigation)
	if mitigation == s.mitigation {
		return
	}
	s.mitigation = mitigation
	s.OnShieldConfigChanged.Emit(struct{}{})
}

// SetInterruptRemaining 设置剩余打断时间（存档恢复用），状态随之更新
func (s *ShieldComponent) SetInterruptRemaining(v float64) {
	s.timer.SetRemaining(v)
	s.refreshState()
}

// SetState 设置状态（存档恢复用）
// 与打断计时器不一致的状态会被拒绝
func (s *ShieldComponent) SetState(state ShieldState) {
	if (state == ShieldInterrupted) != (s.timer.Remaining > 0) {
		log.Printf("[ShieldComponent] 警告：状态 %s 与剩余打断时间 %.2f 不一致，忽略",
			state, s.timer.Remaining)
		return
	}
	s.setState(state)
}

// Tick 推进一个模拟步长
// 打断中只递减计时器；否则按充能速率充到当前分段边界
func (s *ShieldComponent) Tick(dt float64) {
	if !(dt > 0) {
		return
	}
	next := s.timer.Tick(dt, s.shield, s.rechargeLimit())
	if next > s.shield {
		s.setShieldInternal(next)
	}
	s.refreshState()
}

// rechargeLimit 返回自动充能的上限（当前分段边界）
// 分段容量为 0 时没有充能目标
func (s *ShieldComponent) rechargeLimit() float64 {
	if s.stepCapacity <= 0 {
		return 0
	}
	step := s.CurrentStep()
	if step == 0 {
		if s.RechargeFromEmpty {
			return s.stepCapacity
		}
		return 0
	}
	return float64(step) * s.stepCapacity
}

// drain 扣除护盾并触发打断
func (s *ShieldComponent) drain(amount float64) {
	next := s.shield - amount
	if next < shieldEpsilon {
		next = 0
	}
	s.setShieldInternal(next)

	if s.shield < s.MaxShield() {
		s.timer.Notify(amount)
	}
	s.refreshState()
}

func (s *ShieldComponent) setShieldInternal(v float64) {
	if v == s.shield {
		return
	}
	old := s.shield
	s.shield = v
	s.OnShieldValueChanged.Emit(ShieldValueChangedEvent{From: old, To: v})
}

func (s *ShieldComponent) refreshState() {
	s.setState(s.evaluateState())
}

func (s *ShieldComponent) evaluateState() ShieldState {
	switch {
	case s.timer.Remaining > 0:
		return ShieldInterrupted
	case s.timer.Rate > 0 && s.shield < s.rechargeLimit()-shieldEpsilon:
		return ShieldRecharging
	case s.shield <= 0:
		return ShieldEmpty
	default:
		return ShieldStable
	}
}

func (s *ShieldComponent) setState(state ShieldState) {
	if state == s.state {
		return
	}
	s.state = state
	s.OnShieldStateChanged.Emit(state)
}

func (s *ShieldComponent) clampShield(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if limit := s.MaxShield(); v > limit {
		return limit
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
