package entity

import (
	"time"

	profile "stock_dashboard/internal/feature/profile/domain/entity"
)

// NotificationTTL は通知が自動で消えるまでの時間です。
const NotificationTTL = 3000 * time.Millisecond

// NotificationTarget は通知を表示する領域です。
type NotificationTarget string

const (
	TargetSave       NotificationTarget = "save"
	TargetEmail      NotificationTarget = "email"
	TargetEmailError NotificationTarget = "email_error"
)

// NotificationLevel は通知の種類です。
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// 画面に表示するメッセージ。
const (
	MsgLoadFailed   = "Failed to load stock data"
	MsgNoChartData  = "No chart data available for this timeframe"
	MsgDetailsSaved = profile.MsgDetailsSaved
	MsgEmailSent    = profile.MsgEmailSent
	MsgEmailFailed  = profile.MsgEmailFailed
)

// Notification は一定時間だけ表示されるメッセージです。
// ID は同じ領域への後続の通知と区別するために使います。
type Notification struct {
	ID      uint64
	Target  NotificationTarget
	Level   NotificationLevel
	Message string
}
