// Package app 提供无界面的防御模拟器
//
// 该包把配置加载、实体创建和系统更新组合在一起，
// 根目录 main.go 和 cmd/verify_defense 共用同一套初始化逻辑。
package app

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/config"
	"github.com/gonewx/defense/pkg/ecs"
	"github.com/gonewx/defense/pkg/entities"
	"github.com/gonewx/defense/pkg/game"
	"github.com/gonewx/defense/pkg/systems"
	"github.com/gonewx/defense/pkg/types"
)

// DefaultTimeStep 默认模拟步长（秒）
const DefaultTimeStep = 0.1

// Config 定义模拟器启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 防御配置路径，为空时使用嵌入的默认配置
	ConfigPath string
	// Saves 存档管理器，为 nil 时使用内存存档
	Saves *game.DefenseSaveManager
}

// App 防御模拟器
type App struct {
	defense *config.DefenseConfig
	saves   *game.DefenseSaveManager

	entityManager *ecs.EntityManager
	damageSystem  *systems.DamageSystem
	regenSystem   *systems.RegenSystem

	elapsed float64
}

// NewApp 加载配置并创建模拟器
//
// 使用嵌入配置前，必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	path := cfg.ConfigPath
	if path == "" {
		path = config.DefaultDefenseConfigPath
	}
	defense, err := config.LoadDefenseConfig(path)
	if err != nil {
		return nil, fmt.Errorf("防御配置加载失败: %w", err)
	}
	log.Printf("[App] 加载防御配置 %s：%d 个 profile", path, len(defense.Profiles))

	return NewAppWithConfig(defense, cfg.Saves), nil
}

// NewAppWithConfig 使用已解析的配置创建模拟器
func NewAppWithConfig(defense *config.DefenseConfig, saves *game.DefenseSaveManager) *App {
	if saves == nil {
		saves = game.NewDefenseSaveManager(nil)
	}
	a := &App{defense: defense, saves: saves}
	a.Reset()
	return a
}

// Reset 清空所有实体并重新创建系统
func (a *App) Reset() {
	a.entityManager = ecs.NewEntityManager()
	a.damageSystem = systems.NewDamageSystem(a.entityManager, nil)
	a.regenSystem = systems.NewRegenSystem(a.entityManager)
	a.elapsed = 0
}

// DefenseConfig 返回当前使用的防御配置
func (a *App) DefenseConfig() *config.DefenseConfig { return a.defense }

// EntityManager 返回实体管理器
func (a *App) EntityManager() *ecs.EntityManager { return a.entityManager }

// DamageSystem 返回伤害结算系统
func (a *App) DamageSystem() *systems.DamageSystem { return a.damageSystem }

// Elapsed 返回自 Reset 以来的模拟时间
func (a *App) Elapsed() float64 { return a.elapsed }

// Spawn 按配置名称创建实体
func (a *App) Spawn(profile string, controller components.ControllerID) (ecs.EntityID, error) {
	return entities.NewDefenderFromConfig(a.entityManager, a.defense, profile, controller)
}

// Hit 立即对目标结算一次伤害
func (a *App) Hit(target ecs.EntityID, amount float64, damageType types.DamageType, team types.Team, controller components.ControllerID) components.DamageResult {
	src := &components.DamageSource{
		Name:       damageType.String(),
		Controller: controller,
		Filter:     components.FromTypeAndTeam(damageType, team),
	}
	return a.damageSystem.Resolve(target, components.NewDamageEnvelope(amount, src, false))
}

// Step 推进一个模拟步长：先结算排队的伤害，再推进恢复
func (a *App) Step(dt float64) {
	a.damageSystem.Update()
	a.regenSystem.Update(dt)
	a.elapsed += dt
}

// Advance 以固定步长推进 seconds 秒
func (a *App) Advance(seconds, dt float64) {
	if !(dt > 0) || !(seconds > 0) {
		return
	}
	steps := int(math.Round(seconds / dt))
	for i := 0; i < steps; i++ {
		a.Step(dt)
	}
}

// Health 返回实体的生命值组件
func (a *App) Health(id ecs.EntityID) *components.HealthComponent {
	health, _ := ecs.GetComponent[*components.HealthComponent](a.entityManager, id)
	return health
}

// Shield 返回实体的护盾组件，没有护盾时返回 nil
func (a *App) Shield(id ecs.EntityID) *components.ShieldComponent {
	shield, _ := ecs.GetComponent[*components.ShieldComponent](a.entityManager, id)
	return shield
}

// Save 保存当前所有实体的防御状态
func (a *App) Save(slot string) error {
	return a.saves.Save(slot, game.CaptureDefense(a.entityManager))
}

// Load 把存档恢复到当前实体上（实体需按相同顺序和配置创建）
func (a *App) Load(slot string) error {
	data, err := a.saves.Load(slot)
	if err != nil {
		return err
	}
	return game.RestoreDefense(a.entityManager, data)
}
