package components

import (
	"math"

	"github.com/gonewx/defense/pkg/types"
)

// DefenseStage 防御链中的一个减伤阶段
// Mitigate 返回经过本阶段后剩余的伤害
type DefenseStage interface {
	Mitigate(amount float64, damageType types.DamageType) float64
}

// ArmorStage 护甲阶段：按比例减伤并消耗库存中的护甲
//
// 设计说明:
//   - Stock 为 nil 或存量为 0 时透明
//   - 消耗按整数向上取整，且不会超过剩余存量；存量不足时只抵挡存量能覆盖的部分
type ArmorStage struct {
	Stock          StockProvider
	Key            string           // 护甲物品键
	Mitigation     float64          // 可被护甲抵挡的伤害比例 [0, 1]
	CostMultiplier float64          // 每点被抵挡的伤害消耗的护甲存量
	AffectedTypes  types.DamageType // 护甲生效的伤害类型，零值表示所有类型
}

// NewArmorStage 创建护甲阶段
func NewArmorStage(stock StockProvider, key string, mitigation, costMultiplier float64) *ArmorStage {
	return &ArmorStage{
		Stock:          stock,
		Key:            key,
		Mitigation:     mitigation,
		CostMultiplier: costMultiplier,
	}
}

// Mitigate 实现 DefenseStage
func (a *ArmorStage) Mitigate(amount float64, damageType types.DamageType) float64 {
	if a == nil || a.Stock == nil || a.Key == "" || !(amount > 0) {
		return amount
	}
	if a.AffectedTypes != types.DamageTypeNone && damageType&a.AffectedTypes == 0 {
		return amount
	}
	if a.CostMultiplier <= 0 {
		return amount
	}
	mitigation := math.Min(a.Mitigation, 1)
	if mitigation <= 0 {
		return amount
	}
	stock := a.Stock.GetStock(a.Key)
	if stock <= 0 {
		return amount
	}

	mitigated := amount * mitigation
	consumed := int(math.Ceil(mitigated*a.CostMultiplier - timerEpsilon))
	if consumed > stock {
		consumed = stock
		mitigated = float64(stock) / a.CostMultiplier
	}
	if consumed > 0 {
		a.Stock.DecrementStock(a.Key, consumed)
	}
	return amount - mitigated
}

// ShieldStage 护盾阶段，包装 ShieldComponent
type ShieldStage struct {
	Shield *ShieldComponent
}

// NewShieldStage 创建护盾阶段
func NewShieldStage(shield *ShieldComponent) *ShieldStage {
	return &ShieldStage{Shield: shield}
}

// Mitigate 实现 DefenseStage；未挂载护盾时透明
func (s *ShieldStage) Mitigate(amount float64, damageType types.DamageType) float64 {
	if s == nil || s.Shield == nil {
		return amount
	}
	return s.Shield.GetShieldedDamage(amount, damageType)
}

// PassThroughStage 透明阶段，原样传递伤害
type PassThroughStage struct{}

// Mitigate 实现 DefenseStage
func (PassThroughStage) Mitigate(amount float64, _ types.DamageType) float64 {
	return amount
}

// ImmunityStage 免疫阶段：完全挡下指定类型的伤害
type ImmunityStage struct {
	Immune types.DamageType
}

// Mitigate 实现 DefenseStage
func (s ImmunityStage) Mitigate(amount float64, damageType types.DamageType) float64 {
	if damageType&s.Immune != 0 {
		return 0
	}
	return amount
}
