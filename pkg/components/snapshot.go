package components

// HealthSnapshot 生命值组件的可持久化字段
type HealthSnapshot struct {
	Health    float64 `yaml:"health"`
	HealthMax float64 `yaml:"healthMax"`
	Alive     bool    `yaml:"alive"`
	// RegenRemaining 生命恢复的剩余打断时间
	RegenRemaining float64 `yaml:"regenRemaining,omitempty"`
}

// ShieldSnapshot 护盾组件的可持久化字段
type ShieldSnapshot struct {
	Shield             float64 `yaml:"shield"`
	StepCapacity       float64 `yaml:"stepCapacity"`
	StepCount          int     `yaml:"stepCount"`
	ChargeRate         float64 `yaml:"chargeRate"`
	InterruptRemaining float64 `yaml:"interruptRemaining"`
	State              string  `yaml:"state"`
}

// Snapshot 采集生命值组件的当前状态
func (h *HealthComponent) Snapshot() HealthSnapshot {
	snap := HealthSnapshot{
		Health:    h.Health(),
		HealthMax: h.HealthMax(),
		Alive:     h.IsAlive(),
	}
	if h != nil && h.Regen != nil {
		snap.RegenRemaining = h.Regen.Remaining
	}
	return snap
}

// Restore 通过 setter 恢复状态，顺序为 上限 → 生命值 → 存活标记
func (h *HealthComponent) Restore(snap HealthSnapshot) {
	if h == nil {
		return
	}
	h.SetHealthMax(snap.HealthMax)
	h.SetHealth(snap.Health)
	h.SetAlive(snap.Alive)
	if h.Regen != nil {
		h.Regen.SetRemaining(snap.RegenRemaining)
	}
}

// Snapshot 采集护盾组件的当前状态
func (s *ShieldComponent) Snapshot() ShieldSnapshot {
	return ShieldSnapshot{
		Shield:             s.shield,
		StepCapacity:       s.stepCapacity,
		StepCount:          s.stepCount,
		ChargeRate:         s.timer.Rate,
		InterruptRemaining: s.timer.Remaining,
		State:              s.state.String(),
	}
}

// Restore 通过 setter 恢复状态
// 先恢复配置再恢复数值，最后恢复打断计时和状态
func (s *ShieldComponent) Restore(snap ShieldSnapshot) {
	s.SetStepCount(snap.StepCount)
	if snap.StepCapacity > 0 && snap.StepCapacity != s.stepCapacity {
		// 直接替换容量，存档中的护盾值已经是按新容量计算的
		s.stepCapacity = snap.StepCapacity
		s.OnShieldConfigChanged.Emit(struct{}{})
	}
	s.SetChargeRate(snap.ChargeRate)
	s.SetShield(snap.Shield)
	s.SetInterruptRemaining(snap.InterruptRemaining)
	if state, ok := ParseShieldState(snap.State); ok {
		s.SetState(state)
	}
}

// ParseShieldState 解析状态字符串
func ParseShieldState(name string) (ShieldState, bool) {
	for _, st := range []ShieldState{ShieldStable, ShieldEmpty, ShieldRecharging, ShieldInterrupted} {
		if st.String() == name {
			return st, true
		}
	}
	return ShieldStable, false
}
