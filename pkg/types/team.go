package types

// Team 队伍位掩码（占用 DamageFilter 的高 8 位）
type Team uint8

const (
	// TeamNone 无队伍，不与任何队伍碰撞
	TeamNone Team = 0

	Team1 Team = 1 << (iota - 1)
	Team2
	Team3
	Team4
	Team5
	Team6
	Team7
	Team8

	// TeamAll 所有队伍
	TeamAll Team = 0xFF
)

// MinTeamIndex 和 MaxTeamIndex 定义合法的队伍序号范围（从 1 开始）
const (
	MinTeamIndex = 1
	MaxTeamIndex = 8
)

// TeamFromIndex 将 1~8 的队伍序号转换为对应的位
// 序号越界时返回 TeamNone 和 false
func TeamFromIndex(index int) (Team, bool) {
	if index < MinTeamIndex || index > MaxTeamIndex {
		return TeamNone, false
	}
	return Team(1 << (index - 1)), true
}

// Has 检查是否包含指定队伍的任意一位
func (t Team) Has(other Team) bool {
	return t&other != 0
}
