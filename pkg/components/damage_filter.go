package components

import (
	"log"

	"github.com/gonewx/defense/pkg/types"
)

// DamageFilter 伤害过滤器
// 16 位打包值：低 8 位为伤害类型掩码，高 8 位为队伍掩码
//
// 设计说明:
//   - 与原始整数之间只能通过 NewDamageFilterFromRaw / Raw 显式转换
//   - 所有构造辅助函数只写入对应字段的 8 位，不会越界
type DamageFilter struct {
	value uint16
}

const (
	damageTypeMask uint16 = 0x00FF
	teamMask       uint16 = 0xFF00
	teamShift             = 8
)

// DamageFilterNone 不与任何过滤器碰撞
var DamageFilterNone = DamageFilter{}

// DamageFilterAll 所有类型、所有队伍
var DamageFilterAll = FromTypeAndTeam(types.DamageTypeAll, types.TeamAll)

// FromTypeAndTeam 使用伤害类型和队伍创建过滤器
func FromTypeAndTeam(damageType types.DamageType, team types.Team) DamageFilter {
	return DamageFilter{value: uint16(damageType) | uint16(team)<<teamShift}
}

// FromTypeExcludingTeam 创建对除指定队伍以外所有队伍生效的过滤器
func FromTypeExcludingTeam(damageType types.DamageType, team types.Team) DamageFilter {
	return FromTypeAndTeam(damageType, types.TeamAll&^team)
}

// NewDamageFilterFromRaw 从原始 16 位值创建过滤器（用于存档恢复）
func NewDamageFilterFromRaw(raw uint16) DamageFilter {
	return DamageFilter{value: raw}
}

// Raw 返回原始 16 位值
func (f DamageFilter) Raw() uint16 {
	return f.value
}

// DamageType 返回伤害类型掩码
func (f DamageFilter) DamageType() types.DamageType {
	return types.DamageType(f.value & damageTypeMask)
}

// TeamFilter 返回队伍掩码
func (f DamageFilter) TeamFilter() types.Team {
	return types.Team((f.value & teamMask) >> teamShift)
}

// SetDamageType 替换伤害类型字段，队伍字段保持不变
func (f *DamageFilter) SetDamageType(damageType types.DamageType) {
	f.value = (f.value & teamMask) | uint16(damageType)
}

// SetTeamFilter 替换队伍字段，伤害类型字段保持不变
func (f *DamageFilter) SetTeamFilter(team types.Team) {
	f.value = (f.value & damageTypeMask) | uint16(team)<<teamShift
}

// AddTeam 添加一个队伍（序号 1~8）
// 序号越界时记录警告并保持过滤器不变，返回 false
func (f *DamageFilter) AddTeam(index int) bool {
	team, ok := types.TeamFromIndex(index)
	if !ok {
		log.Printf("[DamageFilter] 警告：队伍序号 %d 越界（有效范围 %d~%d），忽略 AddTeam",
			index, types.MinTeamIndex, types.MaxTeamIndex)
		return false
	}
	f.SetTeamFilter(f.TeamFilter() | team)
	return true
}

// RemoveTeam 移除一个队伍（序号 1~8）
// 序号越界时记录警告并保持过滤器不变，返回 false
func (f *DamageFilter) RemoveTeam(index int) bool {
	team, ok := types.TeamFromIndex(index)
	if !ok {
		log.Printf("[DamageFilter] 警告：队伍序号 %d 越界（有效范围 %d~%d），忽略 RemoveTeam",
			index, types.MinTeamIndex, types.MaxTeamIndex)
		return false
	}
	f.SetTeamFilter(f.TeamFilter() &^ team)
	return true
}

// CollidesWith 判断两个过滤器是否产生碰撞
//
// 规则：
//  1. 伤害类型没有交集 → 不碰撞（与队伍无关）
//  2. 开启友军伤害 → 碰撞
//  3. 否则要求队伍掩码有交集
//
// 在 friendlyFire 相同时结果是对称的
func (f DamageFilter) CollidesWith(other DamageFilter, friendlyFire bool) bool {
	if f.DamageType()&other.DamageType() == 0 {
		return false
	}
	if friendlyFire {
		return true
	}
	return f.TeamFilter()&other.TeamFilter() != 0
}
