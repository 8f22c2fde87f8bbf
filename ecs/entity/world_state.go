package entity

import (
	"log"
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"medasim/core"
	"medasim/ecs/component"
)

// GetSelectionQueue はワールド状態エンティティから SelectionQueueData を取得します。
// InitializeBattleWorld で初期化済みであることを期待します。
func GetSelectionQueue(world donburi.World) *component.SelectionQueueData {
	entry, ok := query.NewQuery(filter.Contains(component.SelectionQueueComponent)).First(world)
	if !ok {
		log.Panicln("SelectionQueueComponent がワールドに見つかりません。InitializeBattleWorld を先に呼び出してください。")
	}
	return component.SelectionQueueComponent.Get(entry)
}

// GetExecutionQueue はワールド状態エンティティから ExecutionQueueData を取得します。
func GetExecutionQueue(world donburi.World) *component.ExecutionQueueData {
	entry, ok := query.NewQuery(filter.Contains(component.ExecutionQueueComponent)).First(world)
	if !ok {
		log.Panicln("ExecutionQueueComponent がワールドに見つかりません。InitializeBattleWorld を先に呼び出してください。")
	}
	return component.ExecutionQueueComponent.Get(entry)
}

// GetTeamContext はチーム履歴のシングルトンコンポーネントを取得します。
func GetTeamContext(world donburi.World) *component.TeamContextData {
	entry, ok := query.NewQuery(filter.Contains(component.TeamContextComponent)).First(world)
	if !ok {
		log.Panicln("TeamContextComponent がワールドに見つかりません。InitializeBattleWorld を先に呼び出してください。")
	}
	return component.TeamContextComponent.Get(entry)
}

// EnsureWorldStateEntity はキューとチーム履歴を保持するシングルトンエンティティを保証します。
func EnsureWorldStateEntity(world donburi.World) *donburi.Entry {
	entry, ok := query.NewQuery(filter.Contains(component.WorldStateTag)).First(world)
	if ok {
		return entry
	}

	newEntry := world.Entry(world.Create(
		component.WorldStateTag,
		component.SelectionQueueComponent,
		component.ExecutionQueueComponent,
		component.TeamContextComponent,
	))
	component.SelectionQueueComponent.SetValue(newEntry, component.SelectionQueueData{
		Queue: make([]*donburi.Entry, 0),
	})
	component.ExecutionQueueComponent.SetValue(newEntry, component.ExecutionQueueData{
		Queue: make([]*donburi.Entry, 0),
	})
	component.TeamContextComponent.SetValue(newEntry, component.TeamContextData{
		Records: make(map[core.TeamID]*component.TeamRecord),
	})
	return newEntry
}

// FindLeader は指定チームのリーダーユニットを返します。存在しなければ nil です。
func FindLeader(world donburi.World, teamID core.TeamID) *donburi.Entry {
	var leaderEntry *donburi.Entry
	query.NewQuery(filter.Contains(component.SettingsComponent)).Each(world, func(entry *donburi.Entry) {
		settings := component.SettingsComponent.Get(entry)
		if settings.Team == teamID && settings.IsLeader {
			leaderEntry = entry
		}
	})
	return leaderEntry
}

// UnitsByDrawIndex は全ユニットを DrawIndex 順で返します。
// 候補選択とキュー投入の順序を決定的にするために使用します。
func UnitsByDrawIndex(world donburi.World) []*donburi.Entry {
	var units []*donburi.Entry
	query.NewQuery(filter.Contains(component.SettingsComponent)).Each(world, func(entry *donburi.Entry) {
		units = append(units, entry)
	})
	sort.Slice(units, func(i, j int) bool {
		return component.SettingsComponent.Get(units[i]).DrawIndex < component.SettingsComponent.Get(units[j]).DrawIndex
	})
	return units
}
