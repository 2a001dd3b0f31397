package components

import "math"

// DamageResult 一次伤害结算的结果
type DamageResult int

const (
	// DamageResultStandard 伤害到达生命值
	DamageResultStandard DamageResult = iota
	// DamageResultCritical 伤害到达生命值，且终点阶段标记为暴击部位
	DamageResultCritical
	// DamageResultIgnored 碰撞检测失败、倍率为 0、没有生命值组件或被自伤规则过滤
	DamageResultIgnored
	// DamageResultBlocked 伤害在到达终点阶段之前被完全吸收
	DamageResultBlocked
)

// String 返回结果的字符串表示
func (r DamageResult) String() string {
	switch r {
	case DamageResultStandard:
		return "standard"
	case DamageResultCritical:
		return "critical"
	case DamageResultIgnored:
		return "ignored"
	case DamageResultBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// BasicStage 终点阶段
// 唯一应用目标伤害倍率和暴击标记的阶段，也是唯一把伤害转交给生命值的阶段
type BasicStage struct {
	Health     *HealthComponent
	Multiplier float64 // 目标伤害倍率（如头部 2.0），0 表示忽略伤害
	Critical   bool    // 命中该目标是否视为暴击
}

// NewBasicStage 创建倍率为 1 的终点阶段
func NewBasicStage(health *HealthComponent) *BasicStage {
	return &BasicStage{Health: health, Multiplier: 1}
}

// DefenseChain 按固定顺序排列的防御链
//
// 设计说明:
//   - 阶段顺序在创建时确定（如 护甲 → 护盾 → 终点），运行时不会重新排序
//   - 入口只做一次碰撞检测，失败时整条链短路返回 Ignored
//   - Apply 同步执行完毕后才返回，调用方需保证同一实体的结算不重入
type DefenseChain struct {
	InFilter     DamageFilter // 目标接受的伤害过滤器
	FriendlyFire bool         // 是否开启友军伤害

	stages   []DefenseStage
	terminal *BasicStage
}

// NewDefenseChain 创建防御链，stages 按传入顺序执行，nil 阶段会被跳过
func NewDefenseChain(inFilter DamageFilter, friendlyFire bool, terminal *BasicStage, stages ...DefenseStage) *DefenseChain {
	ordered := make([]DefenseStage, 0, len(stages))
	for _, stage := range stages {
		if stage != nil {
			ordered = append(ordered, stage)
		}
	}
	return &DefenseChain{
		InFilter:     inFilter,
		FriendlyFire: friendlyFire,
		stages:       ordered,
		terminal:     terminal,
	}
}

// Stages 返回阶段列表的副本
func (c *DefenseChain) Stages() []DefenseStage {
	out := make([]DefenseStage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Terminal 返回终点阶段
func (c *DefenseChain) Terminal() *BasicStage {
	return c.terminal
}

// Apply 结算一次伤害
func (c *DefenseChain) Apply(env DamageEnvelope) DamageResult {
	if c == nil {
		return DamageResultIgnored
	}
	if !env.Filter.CollidesWith(c.InFilter, c.FriendlyFire) {
		return DamageResultIgnored
	}
	if math.IsNaN(env.Amount) || math.IsInf(env.Amount, 0) || env.Amount < 0 {
		return DamageResultIgnored
	}
	terminal := c.terminal
	if terminal == nil || terminal.Health == nil || terminal.Multiplier == 0 {
		return DamageResultIgnored
	}
	// 被丢弃的自伤不经过任何阶段
	if terminal.Health.FiltersSelfDamage(env.Source) {
		return DamageResultIgnored
	}

	damageType := env.Filter.DamageType()
	amount := env.Amount
	for _, stage := range c.stages {
		amount = stage.Mitigate(amount, damageType)
		if amount <= 0 {
			return DamageResultBlocked
		}
	}

	critical := env.Critical || terminal.Critical
	if !terminal.Health.AddDamageWithHit(amount*terminal.Multiplier, critical, env.Source, env.Hit) {
		return DamageResultIgnored
	}
	if terminal.Critical {
		return DamageResultCritical
	}
	return DamageResultStandard
}

// DefenseComponent 挂载在实体上的防御链
type DefenseComponent struct {
	Profile string // 创建实体时使用的防御配置名称
	Chain   *DefenseChain
}
