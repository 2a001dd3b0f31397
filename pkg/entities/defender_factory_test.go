package entities

import (
	"testing"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/config"
	"github.com/gonewx/defense/pkg/ecs"
	"github.com/gonewx/defense/pkg/types"
)

const testProfilesYAML = `
selfDamageExceptions: [falling]
profiles:
  trooper:
    team: 1
    health:
      max: 100
      regen: {rate: 5, delay: 3, threshold: 10}
    shield:
      initial: 250
      stepCapacity: 100
      stepCount: 3
      chargeRate: 10
      chargeDelay: 5
      mitigation: 1
    stages: [shield]
  heavy:
    team: 2
    health: {max: 200}
    armor: {key: plate, stock: 80, max: 100, mitigation: 0.5, costMultiplier: 1}
    shield: {initial: 100, stepCapacity: 50, stepCount: 2, chargeRate: 20, chargeDelay: 3, mitigation: 1, mode: activeStep}
    immunities: [poison]
  crate:
    accepts: [explosive]
    health: {max: 10}
`

func loadTestConfig(t *testing.T) *config.DefenseConfig {
	t.Helper()
	cfg, err := config.ParseDefenseConfig([]byte(testProfilesYAML))
	if err != nil {
		t.Fatalf("ParseDefenseConfig: %v", err)
	}
	return cfg
}

func source(team types.Team, dt types.DamageType, controller components.ControllerID) *components.DamageSource {
	return &components.DamageSource{Controller: controller, Filter: components.FromTypeAndTeam(dt, team)}
}

func TestNewDefenderTrooper(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadTestConfig(t)

	id, err := NewDefenderFromConfig(em, cfg, "trooper", 7)
	if err != nil {
		t.Fatalf("NewDefenderFromConfig: %v", err)
	}

	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok {
		t.Fatal("HealthComponent missing")
	}
	if health.Health() != 100 || health.Owner != 7 || health.Regen == nil {
		t.Errorf("health: %v owner=%d regen=%v", health.Health(), health.Owner, health.Regen)
	}
	if health.SelfDamageExceptions != types.DamageTypeFalling {
		t.Errorf("self damage exceptions: got %v", health.SelfDamageExceptions)
	}

	shield, ok := ecs.GetComponent[*components.ShieldComponent](em, id)
	if !ok || shield.Shield() != 250 || shield.MaxShield() != 300 {
		t.Fatalf("shield component: ok=%v", ok)
	}
	if ecs.HasComponent[*components.ArmorComponent](em, id) {
		t.Error("trooper should not have armor")
	}

	ctrl, ok := ecs.GetComponent[*components.ControllerComponent](em, id)
	if !ok || ctrl.ID != 7 {
		t.Errorf("controller component: %+v", ctrl)
	}

	defense, ok := ecs.GetComponent[*components.DefenseComponent](em, id)
	if !ok || defense.Profile != "trooper" {
		t.Fatalf("defense component: %+v", defense)
	}

	// 同队伍的伤害被忽略
	if got := defense.Chain.Apply(components.NewDamageEnvelope(10, source(types.Team1, types.DamageTypeDefault, 9), false)); got != components.DamageResultIgnored {
		t.Errorf("same team: got %s", got)
	}
	// 敌方伤害先被护盾吸收
	if got := defense.Chain.Apply(components.NewDamageEnvelope(10, source(types.Team2, types.DamageTypeDefault, 9), false)); got != components.DamageResultBlocked {
		t.Errorf("enemy hit: got %s", got)
	}
	if shield.Shield() != 240 || shield.State() != components.ShieldInterrupted {
		t.Errorf("shield after hit: %v %s", shield.Shield(), shield.State())
	}
}

func TestNewDefenderDefaultStageOrder(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadTestConfig(t)

	id, err := NewDefenderFromConfig(em, cfg, "heavy", 1)
	if err != nil {
		t.Fatalf("NewDefenderFromConfig: %v", err)
	}
	defense, _ := ecs.GetComponent[*components.DefenseComponent](em, id)

	stages := defense.Chain.Stages()
	if len(stages) != 3 {
		t.Fatalf("stages: got %d, want 3", len(stages))
	}
	if _, ok := stages[0].(components.ImmunityStage); !ok {
		t.Errorf("stage 0: got %T", stages[0])
	}
	if _, ok := stages[1].(*components.ArmorStage); !ok {
		t.Errorf("stage 1: got %T", stages[1])
	}
	if _, ok := stages[2].(*components.ShieldStage); !ok {
		t.Errorf("stage 2: got %T", stages[2])
	}

	armor, _ := ecs.GetComponent[*components.ArmorComponent](em, id)
	if armor.GetStock("plate") != 80 {
		t.Errorf("armor stock: got %d", armor.GetStock("plate"))
	}
	shield, _ := ecs.GetComponent[*components.ShieldComponent](em, id)
	if shield.Mode != components.ShieldModeActiveStep {
		t.Error("shield mode should be active step")
	}

	poison := components.NewDamageEnvelope(50, source(types.Team1, types.DamageTypePoison, 2), false)
	if got := defense.Chain.Apply(poison); got != components.DamageResultBlocked {
		t.Errorf("poison: got %s", got)
	}
}

func TestNewDefenderAcceptsFilter(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := loadTestConfig(t)

	id, err := NewDefenderFromConfig(em, cfg, "crate", components.NoController)
	if err != nil {
		t.Fatalf("NewDefenderFromConfig: %v", err)
	}
	defense, _ := ecs.GetComponent[*components.DefenseComponent](em, id)
	health, _ := ecs.GetComponent[*components.HealthComponent](em, id)

	fire := components.NewDamageEnvelope(5, source(types.Team1, types.DamageTypeFire, 1), false)
	if got := defense.Chain.Apply(fire); got != components.DamageResultIgnored {
		t.Errorf("fire on crate: got %s", got)
	}
	boom := components.NewDamageEnvelope(5, source(types.Team1, types.DamageTypeExplosive, 1), false)
	if got := defense.Chain.Apply(boom); got != components.DamageResultStandard {
		t.Errorf("explosive on crate: got %s", got)
	}
	if health.Health() != 5 {
		t.Errorf("crate health: got %v", health.Health())
	}
}

func TestNewDefenderErrors(t *testing.T) {
	cfg := loadTestConfig(t)

	if _, err := NewDefenderFromConfig(nil, cfg, "trooper", 1); err == nil {
		t.Error("nil entity manager should fail")
	}
	if _, err := NewDefenderFromConfig(ecs.NewEntityManager(), cfg, "ghost", 1); err == nil {
		t.Error("unknown profile should fail")
	}
	if _, err := NewDefender(ecs.NewEntityManager(), "x", nil, DefenderOptions{}); err == nil {
		t.Error("nil profile should fail")
	}
}
