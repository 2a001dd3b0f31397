package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gonewx/defense/pkg/embedded"
	"github.com/gonewx/defense/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultDefenseConfigPath 嵌入的默认防御配置路径
const DefaultDefenseConfigPath = "data/defense_profiles.yaml"

// 防御链阶段名称
const (
	StageArmor       = "armor"
	StageShield      = "shield"
	StageImmunity    = "immunity"
	StagePassThrough = "passthrough"
)

// 护盾减伤模式名称
const (
	ShieldModeOverflow   = "overflow"
	ShieldModeActiveStep = "activeStep"
)

// RegenConfig 生命恢复配置
type RegenConfig struct {
	Rate      float64 `yaml:"rate"`      // 每秒恢复量
	Delay     float64 `yaml:"delay"`     // 受伤后暂停恢复的时间（秒）
	Threshold float64 `yaml:"threshold"` // 超过该伤害量才打断恢复
}

// HealthConfig 生命值配置
type HealthConfig struct {
	Max        float64      `yaml:"max"`                  // 最大生命值，必须 > 0
	Initial    *float64     `yaml:"initial,omitempty"`    // 初始生命值，缺省为 Max
	SelfDamage bool         `yaml:"selfDamage,omitempty"` // 是否允许自伤
	Regen      *RegenConfig `yaml:"regen,omitempty"`      // 生命恢复，缺省不恢复
}

// ShieldConfig 分段护盾配置
type ShieldConfig struct {
	Initial           float64            `yaml:"initial"`
	StepCapacity      float64            `yaml:"stepCapacity"`
	StepCount         int                `yaml:"stepCount"`
	ChargeRate        float64            `yaml:"chargeRate"`
	ChargeDelay       float64            `yaml:"chargeDelay"`
	Mitigation        float64            `yaml:"mitigation"`
	RechargeFromEmpty bool               `yaml:"rechargeFromEmpty,omitempty"`
	Mode              string             `yaml:"mode,omitempty"`            // overflow（默认）| activeStep
	TypeMultipliers   map[string]float64 `yaml:"typeMultipliers,omitempty"` // 伤害类型名 -> 倍率
}

// ArmorConfig 护甲配置
type ArmorConfig struct {
	Key            string   `yaml:"key"`                     // 库存物品键
	Stock          int      `yaml:"stock"`                   // 初始存量
	Max            int      `yaml:"max,omitempty"`           // 存量上限，0 表示不限
	Mitigation     float64  `yaml:"mitigation"`              // 可抵挡的伤害比例 [0, 1]
	CostMultiplier float64  `yaml:"costMultiplier"`          // 每点抵挡伤害消耗的存量
	AffectedTypes  []string `yaml:"affectedTypes,omitempty"` // 生效的伤害类型，缺省为全部
}

// BasicConfig 终点阶段配置
type BasicConfig struct {
	Multiplier *float64 `yaml:"multiplier,omitempty"` // 目标伤害倍率，缺省为 1
	Critical   bool     `yaml:"critical,omitempty"`   // 命中视为暴击
}

// DefenseProfile 单个可受伤实体的防御配置
type DefenseProfile struct {
	Team       int           `yaml:"team"`                 // 队伍序号 1-8，0 表示无队伍
	Accepts    []string      `yaml:"accepts,omitempty"`    // 接受的伤害类型，缺省为全部
	Health     HealthConfig  `yaml:"health"`               // 生命值
	Shield     *ShieldConfig `yaml:"shield,omitempty"`     // 护盾，可选
	Armor      *ArmorConfig  `yaml:"armor,omitempty"`      // 护甲，可选
	Basic      BasicConfig   `yaml:"basic,omitempty"`      // 终点阶段
	Immunities []string      `yaml:"immunities,omitempty"` // 免疫的伤害类型
	Stages     []string      `yaml:"stages,omitempty"`     // 终点阶段之前的阶段顺序
}

// DefenseConfig 防御配置文件结构
type DefenseConfig struct {
	FriendlyFire         bool                      `yaml:"friendlyFire"`
	SelfDamageExceptions []string                  `yaml:"selfDamageExceptions,omitempty"`
	Profiles             map[string]DefenseProfile `yaml:"profiles"`
}

// LoadDefenseConfig 加载防御配置
// "data/" 开头的路径在 embedded 已初始化时从嵌入资源读取，否则从文件系统读取
func LoadDefenseConfig(path string) (*DefenseConfig, error) {
	var (
		data []byte
		err  error
	)
	if embedded.IsEmbeddedPath(path) && embedded.IsInitialized() {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read defense config file %s: %w", path, err)
	}

	cfg, err := ParseDefenseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseDefenseConfig 解析并验证 YAML 格式的防御配置
// 未知字段会被视为错误，避免拼写错误的配置项被静默忽略
func ParseDefenseConfig(data []byte) (*DefenseConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg DefenseConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("defense config is empty")
		}
		return nil, fmt.Errorf("failed to parse defense config YAML: %w", err)
	}

	if err := validateDefenseConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid defense config: %w", err)
	}
	return &cfg, nil
}

// validateDefenseConfig 验证防御配置的完整性和合法性
func validateDefenseConfig(cfg *DefenseConfig) error {
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	if _, err := types.ParseDamageTypes(cfg.SelfDamageExceptions); err != nil {
		return fmt.Errorf("selfDamageExceptions: %w", err)
	}

	for _, name := range cfg.ProfileNames() {
		profile := cfg.Profiles[name]
		if err := validateProfile(&profile); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return nil
}

func validateProfile(p *DefenseProfile) error {
	if p.Team != 0 && (p.Team < types.MinTeamIndex || p.Team > types.MaxTeamIndex) {
		return fmt.Errorf("team must be 0 or in [%d, %d], got %d", types.MinTeamIndex, types.MaxTeamIndex, p.Team)
	}
	if _, err := types.ParseDamageTypes(p.Accepts); err != nil {
		return fmt.Errorf("accepts: %w", err)
	}
	if _, err := types.ParseDamageTypes(p.Immunities); err != nil {
		return fmt.Errorf("immunities: %w", err)
	}

	if err := validateHealth(&p.Health); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if p.Shield != nil {
		if err := validateShield(p.Shield); err != nil {
			return fmt.Errorf("shield: %w", err)
		}
	}
	if p.Armor != nil {
		if err := validateArmor(p.Armor); err != nil {
			return fmt.Errorf("armor: %w", err)
		}
	}
	if p.Basic.Multiplier != nil && *p.Basic.Multiplier < 0 {
		return fmt.Errorf("basic: multiplier cannot be negative, got %v", *p.Basic.Multiplier)
	}

	seen := make(map[string]bool, len(p.Stages))
	for _, stage := range p.Stages {
		if seen[stage] {
			return fmt.Errorf("stage %q listed more than once", stage)
		}
		seen[stage] = true

		switch stage {
		case StageArmor:
			if p.Armor == nil {
				return fmt.Errorf("stage %q requires an armor section", stage)
			}
		case StageShield:
			if p.Shield == nil {
				return fmt.Errorf("stage %q requires a shield section", stage)
			}
		case StageImmunity:
			if len(p.Immunities) == 0 {
				return fmt.Errorf("stage %q requires immunities", stage)
			}
		case StagePassThrough:
		default:
			return fmt.Errorf("unknown stage %q", stage)
		}
	}
	return nil
}

func validateHealth(h *HealthConfig) error {
	if h.Max <= 0 {
		return fmt.Errorf("max must be positive, got %v", h.Max)
	}
	if h.Initial != nil && (*h.Initial < 0 || *h.Initial > h.Max) {
		return fmt.Errorf("initial must be in [0, %v], got %v", h.Max, *h.Initial)
	}
	if r := h.Regen; r != nil {
		if r.Rate < 0 || r.Delay < 0 || r.Threshold < 0 {
			return fmt.Errorf("regen values cannot be negative: %+v", *r)
		}
	}
	return nil
}

func validateShield(s *ShieldConfig) error {
	if s.StepCapacity <= 0 {
		return fmt.Errorf("stepCapacity must be positive, got %v", s.StepCapacity)
	}
	if s.StepCount < 1 {
		return fmt.Errorf("stepCount must be at least 1, got %d", s.StepCount)
	}
	if s.Initial < 0 || s.Initial > s.StepCapacity*float64(s.StepCount) {
		return fmt.Errorf("initial must be in [0, %v], got %v", s.StepCapacity*float64(s.StepCount), s.Initial)
	}
	if s.ChargeRate < 0 {
		return fmt.Errorf("chargeRate cannot be negative, got %v", s.ChargeRate)
	}
	if s.ChargeDelay < 0 {
		return fmt.Errorf("chargeDelay cannot be negative, got %v", s.ChargeDelay)
	}
	if s.Mitigation < 0 {
		return fmt.Errorf("mitigation cannot be negative, got %v", s.Mitigation)
	}
	switch s.Mode {
	case "", ShieldModeOverflow, ShieldModeActiveStep:
	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	for name, m := range s.TypeMultipliers {
		if _, err := types.ParseDamageType(name); err != nil {
			return fmt.Errorf("typeMultipliers: %w", err)
		}
		if m < 0 {
			return fmt.Errorf("typeMultipliers: %s cannot be negative, got %v", name, m)
		}
	}
	return nil
}

func validateArmor(a *ArmorConfig) error {
	if a.Key == "" {
		return fmt.Errorf("key is required")
	}
	if a.Stock < 0 {
		return fmt.Errorf("stock cannot be negative, got %d", a.Stock)
	}
	if a.Max < 0 {
		return fmt.Errorf("max cannot be negative, got %d", a.Max)
	}
	if a.Max > 0 && a.Stock > a.Max {
		return fmt.Errorf("stock %d exceeds max %d", a.Stock, a.Max)
	}
	if a.Mitigation < 0 || a.Mitigation > 1 {
		return fmt.Errorf("mitigation must be in [0, 1], got %v", a.Mitigation)
	}
	if a.CostMultiplier < 0 {
		return fmt.Errorf("costMultiplier cannot be negative, got %v", a.CostMultiplier)
	}
	if _, err := types.ParseDamageTypes(a.AffectedTypes); err != nil {
		return fmt.Errorf("affectedTypes: %w", err)
	}
	return nil
}

// GetProfile 获取指定名称的防御配置
// 如果不存在，返回 nil 和 false
func (c *DefenseConfig) GetProfile(name string) (*DefenseProfile, bool) {
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, false
	}
	return &profile, true
}

// ProfileNames 返回按名称排序的配置列表
func (c *DefenseConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelfDamageExceptionMask 返回自伤例外类型掩码
func (c *DefenseConfig) SelfDamageExceptionMask() types.DamageType {
	return mustDamageTypes(c.SelfDamageExceptions)
}

// AcceptedTypes 返回接受的伤害类型，未配置时为全部类型
func (p *DefenseProfile) AcceptedTypes() types.DamageType {
	if len(p.Accepts) == 0 {
		return types.DamageTypeAll
	}
	return mustDamageTypes(p.Accepts)
}

// ImmuneTypes 返回免疫的伤害类型
func (p *DefenseProfile) ImmuneTypes() types.DamageType {
	return mustDamageTypes(p.Immunities)
}

// TeamMask 返回实体所属队伍，0 号队伍返回 TeamNone
func (p *DefenseProfile) TeamMask() types.Team {
	team, ok := types.TeamFromIndex(p.Team)
	if !ok {
		return types.TeamNone
	}
	return team
}

// InitialHealth 返回初始生命值
func (p *DefenseProfile) InitialHealth() float64 {
	if p.Health.Initial != nil {
		return *p.Health.Initial
	}
	return p.Health.Max
}

// BasicMultiplier 返回终点阶段倍率
func (p *DefenseProfile) BasicMultiplier() float64 {
	if p.Basic.Multiplier != nil {
		return *p.Basic.Multiplier
	}
	return 1
}

// AffectedTypeMask 返回护甲生效的伤害类型，未配置时返回 DamageTypeNone（表示全部）
func (a *ArmorConfig) AffectedTypeMask() types.DamageType {
	return mustDamageTypes(a.AffectedTypes)
}

// TypeMultiplierMap 返回按伤害类型索引的护盾倍率
func (s *ShieldConfig) TypeMultiplierMap() map[types.DamageType]float64 {
	if len(s.TypeMultipliers) == 0 {
		return nil
	}
	out := make(map[types.DamageType]float64, len(s.TypeMultipliers))
	for name, m := range s.TypeMultipliers {
		dt, err := types.ParseDamageType(name)
		if err != nil {
			continue
		}
		out[dt] = m
	}
	return out
}

// mustDamageTypes 解析已通过验证的伤害类型列表
func mustDamageTypes(names []string) types.DamageType {
	dt, err := types.ParseDamageTypes(names)
	if err != nil {
		return types.DamageTypeNone
	}
	return dt
}
