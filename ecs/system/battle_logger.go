package system

import "log"

// StandardBattleLogger は log.Printf に委譲する既定のロガーです。
type StandardBattleLogger struct{}

func (l *StandardBattleLogger) Log(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// NopBattleLogger は何も出力しないロガーです。テストやバッチ実行で使用します。
type NopBattleLogger struct{}

func (l *NopBattleLogger) Log(format string, args ...interface{}) {}
