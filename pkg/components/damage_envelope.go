package components

import (
	"github.com/gonewx/defense/pkg/ecs"
	"github.com/gonewx/defense/pkg/types"
)

// ControllerID 控制者标识（玩家或 AI），0 表示无控制者
type ControllerID uint64

// NoController 表示伤害来源没有所属控制者（如环境伤害）
const NoController ControllerID = 0

// ControllerComponent 标记实体所属的控制者
// 用于自伤判定：伤害来源与目标属于同一控制者时可能被过滤
type ControllerComponent struct {
	ID ControllerID
}

// DamageSource 伤害来源
type DamageSource struct {
	Name       string       // 来源名称（调试用，如 "rocket"）
	Entity     ecs.EntityID // 来源实体，0 表示无实体
	Controller ControllerID // 来源所属控制者
	Filter     DamageFilter // 来源的伤害分类
}

// HitInfo 命中信息（仅供表现层使用，不参与减伤计算）
type HitInfo struct {
	PosX, PosY, PosZ          float64
	NormalX, NormalY, NormalZ float64
}

// DamageEnvelope 一次伤害事件的不可变描述
//
// 设计说明:
//   - 按值传递，各减伤阶段只修改局部的 amount，不修改信封本身
//   - Source 和 Hit 可以为 nil
type DamageEnvelope struct {
	Amount   float64
	Filter   DamageFilter
	Critical bool
	Source   *DamageSource
	Hit      *HitInfo
}

// NewDamageEnvelope 创建伤害信封，过滤器取自来源
// source 为 nil 时使用 DamageFilterAll 作为分类
func NewDamageEnvelope(amount float64, source *DamageSource, critical bool) DamageEnvelope {
	filter := DamageFilterAll
	if source != nil {
		filter = source.Filter
	}
	return DamageEnvelope{
		Amount:   amount,
		Filter:   filter,
		Critical: critical,
		Source:   source,
	}
}

// WithHit 返回附带命中信息的副本
func (e DamageEnvelope) WithHit(hit *HitInfo) DamageEnvelope {
	e.Hit = hit
	return e
}

// WithFilter 返回使用指定过滤器的副本
func (e DamageEnvelope) WithFilter(filter DamageFilter) DamageEnvelope {
	e.Filter = filter
	return e
}

// DamageType 返回信封的伤害类型
func (e DamageEnvelope) DamageType() types.DamageType {
	return e.Filter.DamageType()
}

// SourceController 返回来源控制者，无来源时返回 NoController
func (e DamageEnvelope) SourceController() ControllerID {
	if e.Source == nil {
		return NoController
	}
	return e.Source.Controller
}
