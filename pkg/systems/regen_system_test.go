package systems

import (
	"math"
	"testing"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/ecs"
)

func TestRegenSystemUpdate(t *testing.T) {
	em := ecs.NewEntityManager()
	regen := NewRegenSystem(em)
	damage := NewDamageSystem(em, nil)

	shield := components.NewShieldComponent(components.ShieldParams{
		Shield:       250,
		StepCapacity: 100,
		StepCount:    3,
		ChargeRate:   10,
		ChargeDelay:  5,
		Mitigation:   1,
	})
	id, health := newTestDefender(em, 100, shield, 1)
	health.Regen = components.NewRegenInterruptTimer(2, 1, 0)

	if got := damage.Resolve(id, hit(10)); got != components.DamageResultBlocked {
		t.Fatalf("shield should block, got %s", got)
	}

	for i := 0; i < 49; i++ {
		regen.Update(0.1)
	}
	if shield.State() != components.ShieldInterrupted || shield.Shield() != 240 {
		t.Fatalf("at 4.9s: shield=%v state=%s", shield.Shield(), shield.State())
	}

	regen.Update(0.2)
	if shield.State() == components.ShieldInterrupted {
		t.Fatal("interrupt should be over at 5.1s")
	}

	regen.Update(1)
	if math.Abs(shield.Shield()-250) > 1e-6 {
		t.Errorf("shield after recharge: got %v, want 250", shield.Shield())
	}
	if health.Health() != 100 {
		t.Errorf("health should be untouched, got %v", health.Health())
	}
}

func TestRegenSystemHealth(t *testing.T) {
	em := ecs.NewEntityManager()
	regen := NewRegenSystem(em)
	damage := NewDamageSystem(em, nil)

	id, health := newTestDefender(em, 100, nil, 1)
	health.Regen = components.NewRegenInterruptTimer(10, 0.5, 0)

	damage.Resolve(id, hit(40))
	regen.Update(0.5) // 打断计时归零
	regen.Update(1)
	if math.Abs(health.Health()-70) > 1e-9 {
		t.Errorf("health: got %v, want 70", health.Health())
	}

	regen.Update(0)
	regen.Update(-1)
	if math.Abs(health.Health()-70) > 1e-9 {
		t.Errorf("non-positive dt should be ignored, got %v", health.Health())
	}
}
