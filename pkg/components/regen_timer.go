package components

import "math"

// timerEpsilon 计时器归零容差，避免浮点累计误差导致多等一帧
const timerEpsilon = 1e-9

// RegenInterruptTimer 恢复打断计时器
// 生命恢复与护盾充能共用的倒计时模式：资源减少后在 Delay 秒内暂停恢复
//
// 设计说明:
//   - Remaining > 0 时处于打断状态，Tick 只递减计时器，不恢复资源
//   - Remaining == 0 时按 Rate 每秒恢复，最多恢复到调用方给出的上限
//   - 计时器由被恢复的资源持有，不跨实体共享
type RegenInterruptTimer struct {
	Delay     float64 // 打断后的等待时间（秒）
	Rate      float64 // 每秒恢复量
	Threshold float64 // 超过该减少量才会打断恢复，0 表示任何减少都打断
	Remaining float64 // 剩余打断时间（秒）
}

// NewRegenInterruptTimer 创建计时器，负值会被钳制为 0
func NewRegenInterruptTimer(rate, delay, threshold float64) *RegenInterruptTimer {
	return &RegenInterruptTimer{
		Rate:      nonNegative(rate),
		Delay:     nonNegative(delay),
		Threshold: nonNegative(threshold),
	}
}

// Notify 通知资源减少了 decrease
// 减少量超过阈值时重置打断计时，返回是否发生了打断
func (t *RegenInterruptTimer) Notify(decrease float64) bool {
	if t == nil || !(decrease > 0) {
		return false
	}
	if decrease <= t.Threshold {
		return false
	}
	t.Remaining = t.Delay
	return t.Remaining > 0
}

// Interrupted 检查是否处于打断状态
func (t *RegenInterruptTimer) Interrupted() bool {
	return t != nil && t.Remaining > 0
}

// Tick 推进 dt 秒，返回恢复后的资源值
//
// 打断状态下只递减计时器，本帧不恢复；
// 否则返回 min(current + Rate*dt, ceiling)，结果不会低于 current
func (t *RegenInterruptTimer) Tick(dt, current, ceiling float64) float64 {
	if t == nil || !(dt > 0) {
		return current
	}

	if t.Remaining > 0 {
		t.Remaining -= dt
		if t.Remaining < timerEpsilon {
			t.Remaining = 0
		}
		return current
	}

	if t.Rate <= 0 || current >= ceiling {
		return current
	}

	next := current + t.Rate*dt
	if next > ceiling {
		next = ceiling
	}
	return next
}

// Reset 清除打断状态
func (t *RegenInterruptTimer) Reset() {
	if t == nil {
		return
	}
	t.Remaining = 0
}

// SetRemaining 直接设置剩余打断时间（存档恢复用），负值钳制为 0
func (t *RegenInterruptTimer) SetRemaining(v float64) {
	if t == nil {
		return
	}
	t.Remaining = nonNegative(v)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
