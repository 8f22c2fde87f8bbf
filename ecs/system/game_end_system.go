package system

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/ecs/component"
)

// CheckGameEnd は、勝敗の成立を判定します。
// リーダーの機能停止、またはチーム全滅で相手チームの勝利です。
func CheckGameEnd(ctx *BattleContext) core.GameEndResult {
	for _, team := range []core.TeamID{core.Team1, core.Team2} {
		opponent := core.Team2
		if team == core.Team2 {
			opponent = core.Team1
		}
		if teamDefeated(ctx.World, team) {
			return core.GameEndResult{
				IsGameOver: true,
				Winner:     opponent,
				Message:    fmt.Sprintf("チーム%dの勝利です。", int(opponent)+1),
			}
		}
	}
	return core.GameEndResult{}
}

// teamDefeated は、リーダーの機能停止または全ユニットの機能停止を判定します。
func teamDefeated(world donburi.World, team core.TeamID) bool {
	leaderAlive := false
	anyAlive := false
	query.NewQuery(filter.Contains(component.SettingsComponent, component.StateComponent)).Each(world, func(e *donburi.Entry) {
		settings := component.SettingsComponent.Get(e)
		if settings.Team != team {
			return
		}
		state := component.StateComponent.Get(e)
		if state.Is(core.StateBroken) {
			return
		}
		anyAlive = true
		if settings.IsLeader {
			leaderAlive = true
		}
	})
	return !leaderAlive || !anyAlive
}
