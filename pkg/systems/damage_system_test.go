package systems

import (
	"testing"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/ecs"
	"github.com/gonewx/defense/pkg/types"
)

// newTestDefender 创建只有生命值（可选护盾）的测试实体，接受除 team 以外所有队伍的伤害
func newTestDefender(em *ecs.EntityManager, hp float64, shield *components.ShieldComponent, controller components.ControllerID) (ecs.EntityID, *components.HealthComponent) {
	id := em.CreateEntity()
	health := components.NewHealthComponent(hp, hp)
	health.Owner = controller

	var stages []components.DefenseStage
	if shield != nil {
		stages = append(stages, components.NewShieldStage(shield))
		ecs.AddComponent(em, id, shield)
	}
	chain := components.NewDefenseChain(components.DamageFilterAll, false, components.NewBasicStage(health), stages...)

	ecs.AddComponent(em, id, health)
	ecs.AddComponent(em, id, &components.DefenseComponent{Profile: "test", Chain: chain})
	ecs.AddComponent(em, id, &components.ControllerComponent{ID: controller})
	return id, health
}

func hit(amount float64) components.DamageEnvelope {
	return components.NewDamageEnvelope(amount, nil, false)
}

func TestDamageSystemResolve(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)
	id, health := newTestDefender(em, 100, nil, 1)

	var events []DamageResolvedEvent
	system.OnResolved.Subscribe(func(e DamageResolvedEvent) { events = append(events, e) })

	if got := system.Resolve(id, hit(150)); got != components.DamageResultStandard {
		t.Errorf("result: got %s", got)
	}
	if health.Health() != 0 || health.IsAlive() {
		t.Errorf("health=%v alive=%v", health.Health(), health.IsAlive())
	}
	if len(events) != 1 || events[0].Target != id || events[0].Result != components.DamageResultStandard {
		t.Errorf("events: %+v", events)
	}

	// 没有 DefenseComponent 的实体
	bare := em.CreateEntity()
	if got := system.Resolve(bare, hit(10)); got != components.DamageResultIgnored {
		t.Errorf("entity without defense: got %s", got)
	}
}

func TestDamageSystemQueueOrder(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)
	first, _ := newTestDefender(em, 100, nil, 1)
	second, _ := newTestDefender(em, 100, nil, 2)

	var order []string
	system.OnResolved.Subscribe(func(e DamageResolvedEvent) {
		name := "first"
		if e.Target == second {
			name = "second"
		}
		order = append(order, name+":"+e.Envelope.Source.Name)
	})

	envelope := func(name string) components.DamageEnvelope {
		return components.NewDamageEnvelope(1, &components.DamageSource{Name: name, Filter: components.DamageFilterAll}, false)
	}

	// 投递顺序与实体 ID 顺序相反
	system.Enqueue(second, envelope("a"))
	system.Enqueue(first, envelope("b"))
	system.Enqueue(second, envelope("c"))
	if system.Pending(second) != 2 {
		t.Errorf("Pending: got %d, want 2", system.Pending(second))
	}

	system.Update()

	want := []string{"first:b", "second:a", "second:c"}
	if len(order) != len(want) {
		t.Fatalf("order: got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d]: got %s, want %s", i, order[i], want[i])
		}
	}
	if system.Pending(second) != 0 {
		t.Error("queues should be empty after Update")
	}
}

func TestDamageSystemEnqueueDuringResolution(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)
	id, health := newTestDefender(em, 100, nil, 1)

	// 第一次受伤时追加一次伤害，追加的伤害在当前伤害之后结算
	var seen []float64
	health.OnHealthChanged.Subscribe(func(e components.HealthChangedEvent) {
		seen = append(seen, e.To)
		if len(seen) == 1 {
			if got := system.Resolve(id, hit(5)); got != components.DamageResultIgnored {
				t.Errorf("reentrant Resolve should be deferred, got %s", got)
			}
		}
	})

	system.Enqueue(id, hit(10))
	system.Update()

	if len(seen) != 2 || seen[0] != 90 || seen[1] != 85 {
		t.Errorf("health sequence: %v", seen)
	}
}

func TestDamageSystemReflectedDamageIsBounded(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)
	id, _ := newTestDefender(em, 1e9, nil, 1)

	// 每次结算后都向同一目标反弹一次伤害
	resolved := 0
	system.OnResolved.Subscribe(func(e DamageResolvedEvent) {
		resolved++
		system.Enqueue(e.Target, hit(1))
	})

	system.Enqueue(id, hit(1))
	system.Update()

	if resolved != maxDrainPasses {
		t.Errorf("resolved in one Update: got %d, want %d", resolved, maxDrainPasses)
	}
	if system.Pending(id) != 1 {
		t.Errorf("Pending after Update: got %d, want 1", system.Pending(id))
	}

	// 剩余的伤害留到下一帧
	system.Update()
	if resolved != 2*maxDrainPasses {
		t.Errorf("resolved after second Update: got %d, want %d", resolved, 2*maxDrainPasses)
	}
}

func TestDamageSystemEnqueueUnknownTarget(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)
	if system.Enqueue(42, hit(1)) {
		t.Error("enqueue to a missing entity should fail")
	}
}

func TestDamageSystemFillsController(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, nil)

	// 自己发射的爆炸物命中自己：来源实体的控制者与目标相同
	id, health := newTestDefender(em, 100, nil, 5)
	rocket := em.CreateEntity()
	ecs.AddComponent(em, rocket, &components.ControllerComponent{ID: 5})

	src := &components.DamageSource{
		Name:   "rocket",
		Entity: rocket,
		Filter: components.FromTypeAndTeam(types.DamageTypeExplosive, types.TeamAll),
	}
	if got := system.Resolve(id, components.NewDamageEnvelope(30, src, false)); got != components.DamageResultIgnored {
		t.Errorf("self damage: got %s, want ignored", got)
	}
	if health.Health() != 100 {
		t.Errorf("health changed to %v", health.Health())
	}
	if src.Controller != components.NoController {
		t.Error("caller's source must not be modified")
	}

	// 其他控制者的实体
	enemy := em.CreateEntity()
	ecs.AddComponent(em, enemy, &components.ControllerComponent{ID: 6})
	src2 := &components.DamageSource{Entity: enemy, Filter: src.Filter}
	if got := system.Resolve(id, components.NewDamageEnvelope(30, src2, false)); got != components.DamageResultStandard {
		t.Errorf("enemy damage: got %s", got)
	}
}

type staticLookup map[ecs.EntityID]components.ControllerID

func (l staticLookup) ControllerOf(id ecs.EntityID) components.ControllerID { return l[id] }

func TestDamageSystemCustomLookup(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewDamageSystem(em, staticLookup{99: 3})
	id, health := newTestDefender(em, 100, nil, 3)

	src := &components.DamageSource{Entity: 99, Filter: components.DamageFilterAll}
	system.Resolve(id, components.NewDamageEnvelope(10, src, false))
	if health.Health() != 100 {
		t.Errorf("custom lookup should mark the hit as self damage, health=%v", health.Health())
	}
}
