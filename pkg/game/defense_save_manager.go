package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 存储路径常量
const defenseSaveObject = "defense"

// DefenseSaveManager 防御存档管理器
// 负责把 DefenseSaveData 以 YAML 格式保存到 gdata
type DefenseSaveManager struct {
	gdataManager *gdata.Manager   // gdata 跨平台存储管理器，可为 nil（降级模式）
	memory       map[string][]byte // 降级模式下的内存存档
}

// NewDefenseSaveManager 创建防御存档管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，存档只保存在内存中）
func NewDefenseSaveManager(gdataManager *gdata.Manager) *DefenseSaveManager {
	if gdataManager == nil {
		log.Printf("[DefenseSaveManager] 警告：没有存储管理器，存档只保存在内存中")
	}
	return &DefenseSaveManager{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
	}
}

// IsPersistent 返回存档是否会写入磁盘
func (m *DefenseSaveManager) IsPersistent() bool {
	return m.gdataManager != nil
}

// Save 保存存档到指定槽位
func (m *DefenseSaveManager) Save(slot string, data *DefenseSaveData) error {
	if slot == "" {
		return fmt.Errorf("save slot cannot be empty")
	}
	if data == nil {
		return fmt.Errorf("defense save data cannot be nil")
	}

	payload, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal defense save: %w", err)
	}

	if m.gdataManager == nil {
		m.memory[slot] = payload
		return nil
	}
	if err := m.gdataManager.SaveObjectProp(defenseSaveObject, slot, payload); err != nil {
		return fmt.Errorf("failed to save defense slot %s: %w", slot, err)
	}

	log.Printf("[DefenseSaveManager] 存档已保存：%s（%d 个实体）", slot, len(data.Entities))
	return nil
}

// Exists 检查槽位是否有存档
func (m *DefenseSaveManager) Exists(slot string) bool {
	if m.gdataManager == nil {
		_, ok := m.memory[slot]
		return ok
	}
	return m.gdataManager.ObjectPropExists(defenseSaveObject, slot)
}

// Load 读取指定槽位的存档
func (m *DefenseSaveManager) Load(slot string) (*DefenseSaveData, error) {
	if !m.Exists(slot) {
		return nil, fmt.Errorf("defense save slot %s not found", slot)
	}

	var (
		payload []byte
		err     error
	)
	if m.gdataManager == nil {
		payload = m.memory[slot]
	} else {
		payload, err = m.gdataManager.LoadObjectProp(defenseSaveObject, slot)
		if err != nil {
			return nil, fmt.Errorf("failed to load defense slot %s: %w", slot, err)
		}
	}

	var data DefenseSaveData
	if err := yaml.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defense slot %s: %w", slot, err)
	}
	if data.Version != DefenseSaveVersion {
		return nil, fmt.Errorf("defense slot %s has unsupported version %d", slot, data.Version)
	}
	return &data, nil
}
