package app

import (
	"fmt"
	"io"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/types"
)

// Scenario 一个可重放的验证场景
// Run 返回 error 表示结果与预期不符
type Scenario struct {
	Name        string
	Description string
	Run         func(a *App, out io.Writer) error
}

// Scenarios 返回内置场景（按名称排序）
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "A", Description: "满血 100 受到 150 伤害后死亡", Run: scenarioOverkill},
		{Name: "B", Description: "空护盾填充 2 段", Run: scenarioFillSteps},
		{Name: "C", Description: "不同队伍且未开启友伤时不碰撞", Run: scenarioTeamFilter},
		{Name: "D", Description: "护盾受击打断 5 秒后恢复充能", Run: scenarioInterrupt},
		{Name: "E", Description: "护甲、免疫和护盾按顺序减伤", Run: scenarioLayered},
		{Name: "F", Description: "存档后恢复防御状态", Run: scenarioSaveRestore},
	}
}

// RunScenario 重置模拟器并运行指定场景
func (a *App) RunScenario(name string, out io.Writer) error {
	for _, sc := range Scenarios() {
		if sc.Name != name {
			continue
		}
		a.Reset()
		fmt.Fprintf(out, "== 场景 %s：%s\n", sc.Name, sc.Description)
		if err := sc.Run(a, out); err != nil {
			fmt.Fprintf(out, "   失败：%v\n", err)
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		fmt.Fprintf(out, "   通过\n")
		return nil
	}
	return fmt.Errorf("unknown scenario %q", name)
}

// RunAll 依次运行所有场景，返回失败的场景数量
func (a *App) RunAll(out io.Writer) int {
	failed := 0
	for _, sc := range Scenarios() {
		if err := a.RunScenario(sc.Name, out); err != nil {
			failed++
		}
	}
	return failed
}

func scenarioOverkill(a *App, out io.Writer) error {
	id, err := a.Spawn("dummy", 1)
	if err != nil {
		return err
	}
	result := a.Hit(id, 150, types.DamageTypeDefault, types.Team2, 2)
	health := a.Health(id)
	fmt.Fprintf(out, "   结果=%s 生命值=%.1f 存活=%v\n", result, health.Health(), health.IsAlive())
	if health.Health() != 0 || health.IsAlive() {
		return fmt.Errorf("want health 0 and dead, got %.2f alive=%v", health.Health(), health.IsAlive())
	}
	return nil
}

func scenarioFillSteps(a *App, out io.Writer) error {
	id, err := a.Spawn("trooper", 1)
	if err != nil {
		return err
	}
	shield := a.Shield(id)
	shield.SetShield(0)
	filled := shield.FillShieldSteps(2)
	fmt.Fprintf(out, "   填充段数=%d 护盾=%.1f 状态=%s\n", filled, shield.Shield(), shield.State())
	if filled != 2 || shield.Shield() != 200 {
		return fmt.Errorf("want 2 steps and shield 200, got %d and %.2f", filled, shield.Shield())
	}
	return nil
}

func scenarioTeamFilter(a *App, out io.Writer) error {
	team1 := components.FromTypeAndTeam(types.DamageTypeDefault, types.Team1)
	team2 := components.FromTypeAndTeam(types.DamageTypeDefault, types.Team2)
	collides := team1.CollidesWith(team2, false)
	fmt.Fprintf(out, "   队伍1 vs 队伍2（无友伤）碰撞=%v\n", collides)
	if collides {
		return fmt.Errorf("filters of different teams should not collide")
	}

	// 同队伍的实体不会被队友伤害
	id, err := a.Spawn("trooper", 1)
	if err != nil {
		return err
	}
	result := a.Hit(id, 50, types.DamageTypeDefault, types.Team1, 2)
	fmt.Fprintf(out, "   队友命中 trooper 结果=%s\n", result)
	if result != components.DamageResultIgnored {
		return fmt.Errorf("friendly hit should be ignored, got %s", result)
	}
	return nil
}

func scenarioInterrupt(a *App, out io.Writer) error {
	id, err := a.Spawn("trooper", 1)
	if err != nil {
		return err
	}
	shield := a.Shield(id)

	a.Hit(id, 10, types.DamageTypeDefault, types.Team2, 2)
	fmt.Fprintf(out, "   t=0.0s 护盾=%.1f 状态=%s\n", shield.Shield(), shield.State())
	if shield.Shield() != 240 || shield.State() != components.ShieldInterrupted {
		return fmt.Errorf("after hit want 240/interrupted, got %.2f/%s", shield.Shield(), shield.State())
	}

	a.Advance(4.9, DefaultTimeStep)
	fmt.Fprintf(out, "   t=%.1fs 护盾=%.1f 状态=%s\n", a.Elapsed(), shield.Shield(), shield.State())
	if shield.Shield() != 240 || shield.State() != components.ShieldInterrupted {
		return fmt.Errorf("at 4.9s want 240/interrupted, got %.2f/%s", shield.Shield(), shield.State())
	}

	a.Advance(0.2, DefaultTimeStep)
	fmt.Fprintf(out, "   t=%.1fs 护盾=%.1f 状态=%s\n", a.Elapsed(), shield.Shield(), shield.State())
	if shield.State() == components.ShieldInterrupted || shield.Shield() <= 240 {
		return fmt.Errorf("at 5.1s regeneration should have resumed, got %.2f/%s", shield.Shield(), shield.State())
	}

	a.Advance(10, DefaultTimeStep)
	fmt.Fprintf(out, "   t=%.1fs 护盾=%.1f 状态=%s\n", a.Elapsed(), shield.Shield(), shield.State())
	if shield.Shield() != shield.MaxShield() {
		return fmt.Errorf("shield should recharge to %.0f, got %.2f", shield.MaxShield(), shield.Shield())
	}
	return nil
}

func scenarioLayered(a *App, out io.Writer) error {
	id, err := a.Spawn("heavy", 2)
	if err != nil {
		return err
	}
	health := a.Health(id)
	shield := a.Shield(id)

	poison := a.Hit(id, 40, types.DamageTypePoison, types.Team1, 1)
	fmt.Fprintf(out, "   毒素 40 → 结果=%s\n", poison)
	if poison != components.DamageResultBlocked {
		return fmt.Errorf("poison should be blocked, got %s", poison)
	}

	melee := a.Hit(id, 240, types.DamageTypeMelee, types.Team1, 1)
	fmt.Fprintf(out, "   近战 240 → 结果=%s 护盾=%.1f 生命值=%.1f\n", melee, shield.Shield(), health.Health())
	if melee != components.DamageResultStandard || health.Health() >= health.HealthMax() {
		return fmt.Errorf("heavy melee hit should reach health, got %s", melee)
	}
	return nil
}

func scenarioSaveRestore(a *App, out io.Writer) error {
	id, err := a.Spawn("trooper", 1)
	if err != nil {
		return err
	}
	a.Hit(id, 300, types.DamageTypeEnergy, types.Team2, 2)
	before := a.Health(id).Snapshot()
	if err := a.Save("scenario"); err != nil {
		return err
	}

	a.Reset()
	id, err = a.Spawn("trooper", 1)
	if err != nil {
		return err
	}
	if err := a.Load("scenario"); err != nil {
		return err
	}
	after := a.Health(id).Snapshot()
	fmt.Fprintf(out, "   存档前 生命值=%.1f 恢复后 生命值=%.1f 护盾=%.1f\n", before.Health, after.Health, a.Shield(id).Shield())
	if before != after {
		return fmt.Errorf("restored health %+v differs from saved %+v", after, before)
	}
	return nil
}
