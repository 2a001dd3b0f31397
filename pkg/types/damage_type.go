// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"strings"
)

// DamageType 伤害类型位掩码（占用 DamageFilter 的低 8 位）
// 一次伤害可以同时携带多个类型标志
type DamageType uint8

const (
	// DamageTypeNone 无类型，不与任何类型碰撞
	DamageTypeNone DamageType = 0

	// DamageTypeDefault 普通伤害（子弹、啃咬等）
	DamageTypeDefault DamageType = 1 << (iota - 1)
	// DamageTypeFire 火焰伤害
	DamageTypeFire
	// DamageTypeExplosive 爆炸伤害
	DamageTypeExplosive
	// DamageTypeEnergy 能量伤害（护盾通常对其更敏感）
	DamageTypeEnergy
	// DamageTypeMelee 近战伤害
	DamageTypeMelee
	// DamageTypePoison 毒素伤害
	DamageTypePoison
	// DamageTypeFalling 坠落伤害（环境）
	DamageTypeFalling
	// DamageTypeDrowning 溺水伤害（环境）
	DamageTypeDrowning

	// DamageTypeAll 所有类型
	DamageTypeAll DamageType = 0xFF
)

var damageTypeNames = []struct {
	t    DamageType
	name string
}{
	{DamageTypeDefault, "default"},
	{DamageTypeFire, "fire"},
	{DamageTypeExplosive, "explosive"},
	{DamageTypeEnergy, "energy"},
	{DamageTypeMelee, "melee"},
	{DamageTypePoison, "poison"},
	{DamageTypeFalling, "falling"},
	{DamageTypeDrowning, "drowning"},
}

// Has 检查是否包含指定类型的任意一位
func (d DamageType) Has(other DamageType) bool {
	return d&other != 0
}

// String 返回伤害类型的字符串表示，多个标志用 "|" 连接
func (d DamageType) String() string {
	switch d {
	case DamageTypeNone:
		return "none"
	case DamageTypeAll:
		return "all"
	}

	parts := make([]string, 0, 2)
	for _, entry := range damageTypeNames {
		if d&entry.t != 0 {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseDamageType 将配置中的名称解析为伤害类型
// 支持 "none"、"all" 以及用 "|" 连接的组合（如 "fire|explosive"）
func ParseDamageType(name string) (DamageType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "none":
		return DamageTypeNone, nil
	case "all":
		return DamageTypeAll, nil
	}

	var result DamageType
	for _, part := range strings.Split(name, "|") {
		part = strings.TrimSpace(part)
		found := false
		for _, entry := range damageTypeNames {
			if entry.name == part {
				result |= entry.t
				found = true
				break
			}
		}
		if !found {
			return DamageTypeNone, fmt.Errorf("unknown damage type %q", part)
		}
	}
	return result, nil
}

// ParseDamageTypes 解析名称列表并合并为一个掩码
func ParseDamageTypes(names []string) (DamageType, error) {
	var result DamageType
	for _, name := range names {
		t, err := ParseDamageType(name)
		if err != nil {
			return DamageTypeNone, err
		}
		result |= t
	}
	return result, nil
}
