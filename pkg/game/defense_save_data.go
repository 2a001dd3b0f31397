package game

import (
	"fmt"
	"time"

	"github.com/gonewx/defense/pkg/components"
	"github.com/gonewx/defense/pkg/ecs"
)

// DefenseSaveVersion 防御存档版本号
// 数据结构发生不兼容变更时递增
const DefenseSaveVersion = 1

// DefenseSaveData 防御状态存档
// 按实体 ID 升序记录每个拥有 DefenseComponent 的实体
type DefenseSaveData struct {
	Version  int              `yaml:"version"`
	SaveTime time.Time        `yaml:"saveTime"`
	Entities []DefenderRecord `yaml:"entities"`
}

// DefenderRecord 单个实体的防御状态
type DefenderRecord struct {
	Profile string                     `yaml:"profile"`
	Health  components.HealthSnapshot  `yaml:"health"`
	Shield  *components.ShieldSnapshot `yaml:"shield,omitempty"`
	Armor   map[string]int             `yaml:"armor,omitempty"`
}

// CaptureDefense 采集实体管理器中所有可受伤实体的状态
func CaptureDefense(em *ecs.EntityManager) *DefenseSaveData {
	data := &DefenseSaveData{
		Version:  DefenseSaveVersion,
		SaveTime: time.Now(),
	}

	for _, id := range defenderIDs(em) {
		defense, _ := ecs.GetComponent[*components.DefenseComponent](em, id)
		health, _ := ecs.GetComponent[*components.HealthComponent](em, id)

		record := DefenderRecord{
			Profile: defense.Profile,
			Health:  health.Snapshot(),
		}
		if shield, ok := ecs.GetComponent[*components.ShieldComponent](em, id); ok {
			snap := shield.Snapshot()
			record.Shield = &snap
		}
		if armor, ok := ecs.GetComponent[*components.ArmorComponent](em, id); ok && len(armor.Items) > 0 {
			record.Armor = make(map[string]int, len(armor.Items))
			for key, n := range armor.Items {
				record.Armor[key] = n
			}
		}
		data.Entities = append(data.Entities, record)
	}
	return data
}

// RestoreDefense 把存档状态恢复到已创建的实体上
//
// 实体必须已经按相同的配置创建（通常由 entities.NewDefender 完成），
// 存档记录与实体按 ID 顺序一一对应，配置名称不一致时返回错误且不修改任何实体
func RestoreDefense(em *ecs.EntityManager, data *DefenseSaveData) error {
	if data == nil {
		return fmt.Errorf("defense save data cannot be nil")
	}
	if data.Version != DefenseSaveVersion {
		return fmt.Errorf("unsupported defense save version %d (want %d)", data.Version, DefenseSaveVersion)
	}

	ids := defenderIDs(em)
	if len(ids) != len(data.Entities) {
		return fmt.Errorf("save has %d defenders, world has %d", len(data.Entities), len(ids))
	}
	for i, id := range ids {
		defense, _ := ecs.GetComponent[*components.DefenseComponent](em, id)
		if defense.Profile != data.Entities[i].Profile {
			return fmt.Errorf("defender %d: profile %q does not match saved %q", id, defense.Profile, data.Entities[i].Profile)
		}
	}

	for i, id := range ids {
		record := data.Entities[i]
		if health, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok {
			health.Restore(record.Health)
		}
		if shield, ok := ecs.GetComponent[*components.ShieldComponent](em, id); ok && record.Shield != nil {
			shield.Restore(*record.Shield)
		}
		if armor, ok := ecs.GetComponent[*components.ArmorComponent](em, id); ok {
			for key := range armor.Items {
				armor.Items[key] = 0
			}
			for key, n := range record.Armor {
				armor.Add(key, n)
			}
		}
	}
	return nil
}

// defenderIDs 返回同时拥有 DefenseComponent 和 HealthComponent 的实体（按 ID 升序）
func defenderIDs(em *ecs.EntityManager) []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.DefenseComponent, *components.HealthComponent](em)
}
