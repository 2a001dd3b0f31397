package entities

import (
	"fmt"
	"log"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/config"
	"github.com/gonewx/defense/pkg/ecs"
	"github.com/gonewx/defense/pkg/types"
)

// DefenderOptions 创建可受伤实体时的全局规则
type DefenderOptions struct {
	FriendlyFire         bool                    // 是否开启友军伤害
	SelfDamageExceptions types.DamageType        // 自伤例外类型
	Controller           components.ControllerID // 实体所属控制者
}

// OptionsFromConfig 从配置文件读取全局规则
func OptionsFromConfig(cfg *config.DefenseConfig, controller components.ControllerID) DefenderOptions {
	return DefenderOptions{
		FriendlyFire:         cfg.FriendlyFire,
		SelfDamageExceptions: cfg.SelfDamageExceptionMask(),
		Controller:           controller,
	}
}

// NewDefender 根据防御配置创建可受伤实体
//
// 参数:
//   - em: 实体管理器
//   - name: 配置名称（记录在 DefenseComponent 中，存档时作为键的一部分）
//   - profile: 防御配置
//   - opts: 全局规则
//
// 创建的组件：HealthComponent、DefenseComponent、ControllerComponent，
// 以及按配置可选的 ShieldComponent 和 ArmorComponent
func NewDefender(em *ecs.EntityManager, name string, profile *config.DefenseProfile, opts DefenderOptions) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	if profile == nil {
		return 0, fmt.Errorf("defense profile %q cannot be nil", name)
	}

	health := newHealth(profile, opts)

	var shield *components.ShieldComponent
	if profile.Shield != nil {
		shield = newShield(profile.Shield)
	}

	var armor *components.ArmorComponent
	if profile.Armor != nil {
		armor = newArmor(profile.Armor)
	}

	stages, err := buildStages(profile, shield, armor)
	if err != nil {
		return 0, fmt.Errorf("defense profile %q: %w", name, err)
	}

	terminal := components.NewBasicStage(health)
	terminal.Multiplier = profile.BasicMultiplier()
	terminal.Critical = profile.Basic.Critical

	inFilter := components.FromTypeAndTeam(profile.AcceptedTypes(), types.TeamAll)
	if team := profile.TeamMask(); team != types.TeamNone {
		inFilter = components.FromTypeExcludingTeam(profile.AcceptedTypes(), team)
	}
	chain := components.NewDefenseChain(inFilter, opts.FriendlyFire, terminal, stages...)

	entityID := em.CreateEntity()
	ecs.AddComponent(em, entityID, health)
	ecs.AddComponent(em, entityID, &components.DefenseComponent{Profile: name, Chain: chain})
	ecs.AddComponent(em, entityID, &components.ControllerComponent{ID: opts.Controller})
	if shield != nil {
		ecs.AddComponent(em, entityID, shield)
	}
	if armor != nil {
		ecs.AddComponent(em, entityID, armor)
	}

	log.Printf("[DefenderFactory] 创建实体 %d (profile=%s, team=%d, stages=%d)", entityID, name, profile.Team, len(stages))
	return entityID, nil
}

// NewDefenderFromConfig 按名称查找配置并创建实体
func NewDefenderFromConfig(em *ecs.EntityManager, cfg *config.DefenseConfig, name string, controller components.ControllerID) (ecs.EntityID, error) {
	if cfg == nil {
		return 0, fmt.Errorf("defense config cannot be nil")
	}
	profile, ok := cfg.GetProfile(name)
	if !ok {
		return 0, fmt.Errorf("unknown defense profile %q", name)
	}
	return NewDefender(em, name, profile, OptionsFromConfig(cfg, controller))
}

func newHealth(profile *config.DefenseProfile, opts DefenderOptions) *components.HealthComponent {
	health := components.NewHealthComponent(profile.InitialHealth(), profile.Health.Max)
	health.Owner = opts.Controller
	health.SelfDamage = profile.Health.SelfDamage
	health.SelfDamageExceptions = opts.SelfDamageExceptions
	if r := profile.Health.Regen; r != nil {
		health.Regen = components.NewRegenInterruptTimer(r.Rate, r.Delay, r.Threshold)
	}
	return health
}

func newShield(cfg *config.ShieldConfig) *components.ShieldComponent {
	mode := components.ShieldModeOverflow
	if cfg.Mode == config.ShieldModeActiveStep {
		mode = components.ShieldModeActiveStep
	}
	return components.NewShieldComponent(components.ShieldParams{
		Shield:            cfg.Initial,
		StepCapacity:      cfg.StepCapacity,
		StepCount:         cfg.StepCount,
		ChargeRate:        cfg.ChargeRate,
		ChargeDelay:       cfg.ChargeDelay,
		Mitigation:        cfg.Mitigation,
		RechargeFromEmpty: cfg.RechargeFromEmpty,
		Mode:              mode,
		TypeMultipliers:   cfg.TypeMultiplierMap(),
	})
}

func newArmor(cfg *config.ArmorConfig) *components.ArmorComponent {
	armor := components.NewArmorComponent()
	if cfg.Max > 0 {
		armor.SetMax(cfg.Key, cfg.Max)
	}
	armor.Add(cfg.Key, cfg.Stock)
	return armor
}

// buildStages 按配置顺序创建减伤阶段
// 未配置 stages 时使用默认顺序：免疫 → 护甲 → 护盾
func buildStages(profile *config.DefenseProfile, shield *components.ShieldComponent, armor *components.ArmorComponent) ([]components.DefenseStage, error) {
	names := profile.Stages
	if len(names) == 0 {
		if len(profile.Immunities) > 0 {
			names = append(names, config.StageImmunity)
		}
		if armor != nil {
			names = append(names, config.StageArmor)
		}
		if shield != nil {
			names = append(names, config.StageShield)
		}
	}

	stages := make([]components.DefenseStage, 0, len(names))
	for _, name := range names {
		switch name {
		case config.StageImmunity:
			stages = append(stages, components.ImmunityStage{Immune: profile.ImmuneTypes()})
		case config.StageArmor:
			if armor == nil {
				return nil, fmt.Errorf("stage %q has no armor", name)
			}
			stage := components.NewArmorStage(armor, profile.Armor.Key, profile.Armor.Mitigation, profile.Armor.CostMultiplier)
			stage.AffectedTypes = profile.Armor.AffectedTypeMask()
			stages = append(stages, stage)
		case config.StageShield:
			if shield == nil {
				return nil, fmt.Errorf("stage %q has no shield", name)
			}
			stages = append(stages, components.NewShieldStage(shield))
		case config.StagePassThrough:
			stages = append(stages, components.PassThroughStage{})
		default:
			return nil, fmt.Errorf("unknown stage %q", name)
		}
	}
	return stages, nil
}
