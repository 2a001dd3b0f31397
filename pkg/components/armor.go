package components

import "log"

// StockProvider 库存查询接口
// 护甲阶段通过它读取和消耗护甲存量（由背包/库存系统提供）
type StockProvider interface {
	GetStock(key string) int
	DecrementStock(key string, n int)
}

// ArmorComponent 存储实体的护甲库存
// 用于防弹衣、头盔等按物品键计数的防护层
//
// 设计说明:
//   - 当实体拥有 ArmorComponent 且防御链中配置了护甲阶段时，伤害优先消耗护甲
//   - 存量耗尽后护甲阶段变为透明，伤害继续向后传递
//   - 实现 StockProvider，可以直接交给 ArmorStage 使用
type ArmorComponent struct {
	Items    map[string]int // 物品键 -> 当前存量
	MaxItems map[string]int // 物品键 -> 存量上限，未配置表示不限
}

// NewArmorComponent 创建空的护甲库存
func NewArmorComponent() *ArmorComponent {
	return &ArmorComponent{
		Items:    make(map[string]int),
		MaxItems: make(map[string]int),
	}
}

// SetMax 设置物品存量上限，当前存量超过上限时被下调
func (a *ArmorComponent) SetMax(key string, max int) {
	if max < 0 {
		log.Printf("[ArmorComponent] 警告：%s 存量上限 %d 无效，忽略", key, max)
		return
	}
	if a.MaxItems == nil {
		a.MaxItems = make(map[string]int)
	}
	a.MaxItems[key] = max
	if a.Items[key] > max {
		a.Items[key] = max
	}
}

// Add 增加物品存量（拾取），返回实际增加的数量
func (a *ArmorComponent) Add(key string, n int) int {
	if n <= 0 {
		return 0
	}
	if a.Items == nil {
		a.Items = make(map[string]int)
	}
	current := a.Items[key]
	next := current + n
	if max, ok := a.MaxItems[key]; ok && next > max {
		next = max
	}
	if next < current {
		next = current
	}
	a.Items[key] = next
	return next - current
}

// GetStock 返回物品存量
func (a *ArmorComponent) GetStock(key string) int {
	if a == nil {
		return 0
	}
	return a.Items[key]
}

// DecrementStock 扣除物品存量，结果不会低于 0
func (a *ArmorComponent) DecrementStock(key string, n int) {
	if a == nil || n <= 0 {
		return
	}
	current := a.Items[key]
	if n > current {
		n = current
	}
	a.Items[key] = current - n
}
