// Package controller はダッシュボード画面の状態を保持し、操作に応じて更新します。
// State の変更は Controller のメソッドを通してのみ行い、呼び出しは1つのゴルーチン（UIの更新ループ）から行います。
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stock_dashboard/internal/feature/dashboard/domain/entity"
	"stock_dashboard/internal/feature/dashboard/usecase"
	"stock_dashboard/internal/feature/dashboard/view"
	profile "stock_dashboard/internal/feature/profile/domain/entity"
	profileusecase "stock_dashboard/internal/feature/profile/usecase"
)

// MinSearchLength 未満の検索入力は結果をクリアします。
const MinSearchLength = 2

// Chart は描画済みのチャートです。再描画の前に必ず Destroy されます。
type Chart interface {
	Destroy()
}

// ChartRenderer はチャートデータから新しいチャートを生成します。
type ChartRenderer interface {
	Draw(data view.ChartData) Chart
}

// Loader は銘柄の読み込みを行います。
type Loader interface {
	Load(ctx context.Context, symbol, exchange string, tf entity.Timeframe) usecase.LoadResult
}

// ProfileService はプロフィールの保存・復元を行います。
type ProfileService interface {
	Load(ctx context.Context) (*profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) (*profileusecase.Submission, error)
}

// Defaults は起動時に表示する銘柄と表示期間です。
type Defaults struct {
	Symbol    string
	Exchange  string
	Timeframe entity.Timeframe
}

// DefaultDefaults は設定が無い場合の初期表示です。
var DefaultDefaults = Defaults{Symbol: "AAPL", Exchange: "", Timeframe: entity.Timeframe1D}

// State は画面の状態です。
type State struct {
	Symbol    string
	Exchange  string
	Timeframe entity.Timeframe
	Chart     Chart
	ChartData view.ChartData

	Quote   *view.QuoteView
	Error   string
	Loading bool

	SearchQuery   string
	SearchResults []string

	ProfileName  string
	ProfileEmail string

	Notifications map[entity.NotificationTarget]entity.Notification
}

// Controller はStateを所有し、読み込み結果やユーザー操作を反映します。
type Controller struct {
	loader   Loader
	renderer ChartRenderer
	profiles ProfileService
	loc      *time.Location

	state  State
	nextID uint64
}

// New はControllerの新しいインスタンスを生成します。
func New(loader Loader, renderer ChartRenderer, profiles ProfileService, d Defaults, loc *time.Location) *Controller {
	if d.Symbol == "" {
		d.Symbol = DefaultDefaults.Symbol
	}
	if d.Timeframe == "" {
		d.Timeframe = DefaultDefaults.Timeframe
	}
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		loader:   loader,
		renderer: renderer,
		profiles: profiles,
		loc:      loc,
		state: State{
			Symbol:        d.Symbol,
			Exchange:      d.Exchange,
			Timeframe:     d.Timeframe,
			Notifications: map[entity.NotificationTarget]entity.Notification{},
		},
	}
}

// State は現在の状態を返します。返り値を書き換えてはいけません。
func (c *Controller) State() *State {
	return &c.state
}

// Loader は読み込みに使うLoaderを返します。UIはこれを tea.Cmd の中で呼び出します。
func (c *Controller) Loader() Loader {
	return c.loader
}

// RestoreProfile は保存済みプロフィールをフォームに復元します。無ければ何もしません。
func (c *Controller) RestoreProfile(ctx context.Context) (*profile.Profile, error) {
	p, err := c.profiles.Load(ctx)
	if errors.Is(err, profileusecase.ErrProfileNotFound) || (err == nil && p == nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.state.ProfileName, c.state.ProfileEmail = p.Name, p.Email
	return p, nil
}

// BeginLoad は銘柄を切り替えて読み込み中にします。実際の取得は呼び出し側が行います。
func (c *Controller) BeginLoad(symbol, exchange string) (string, string, entity.Timeframe) {
	c.state.Symbol = symbol
	c.state.Exchange = exchange
	c.state.Loading = true
	c.state.Error = ""
	return symbol, exchange, c.state.Timeframe
}

// Apply は読み込み結果を反映します。チャートは古いものを破棄してから描き直します。
// 後から始めた読み込みより先に古い結果が届いた場合もそのまま反映します（キャンセルは行わない）。
func (c *Controller) Apply(res usecase.LoadResult) {
	c.state.Loading = false
	c.state.Error = res.Message

	if res.Quote != nil {
		q := view.RenderQuote(res.Quote)
		c.state.Quote = &q
	}
	if len(res.Series) == 0 {
		return
	}

	data := view.BuildChart(res.Series, res.Timeframe, c.loc)
	if c.state.Chart != nil {
		c.state.Chart.Destroy()
	}
	c.state.Chart = c.renderer.Draw(data)
	c.state.ChartData = data
}

// LoadSymbolData は銘柄を読み込み、結果を反映します。
func (c *Controller) LoadSymbolData(ctx context.Context, symbol, exchange string) usecase.LoadResult {
	symbol, exchange, tf := c.BeginLoad(symbol, exchange)
	res := c.loader.Load(ctx, symbol, exchange, tf)
	c.Apply(res)
	return res
}

// SetTimeframe は表示期間を変更し、再読み込みに必要な銘柄を返します。
func (c *Controller) SetTimeframe(tf entity.Timeframe) (string, string) {
	slog.Debug("timeframe changed", "timeframe", tf)
	c.state.Timeframe = tf
	return c.state.Symbol, c.state.Exchange
}

// ChangeTimeframe は表示期間を変更して現在の銘柄を再読み込みします。
func (c *Controller) ChangeTimeframe(ctx context.Context, tf entity.Timeframe) usecase.LoadResult {
	symbol, exchange := c.SetTimeframe(tf)
	return c.LoadSymbolData(ctx, symbol, exchange)
}

// Search は検索入力を受け取ります。2文字未満なら結果をクリアし、それ以外は何もしません。
func (c *Controller) Search(input string) {
	q := strings.TrimSpace(input)
	c.state.SearchQuery = q
	if len([]rune(q)) < MinSearchLength {
		c.state.SearchResults = nil
	}
}

// SaveProfile はプロフィールを保存し、保存通知を出します。
// メール送信の結果は返り値の Submission から別途受け取り、ApplyEmailResult で反映します。
func (c *Controller) SaveProfile(ctx context.Context, name, email string) (*profileusecase.Submission, entity.Notification, error) {
	sub, err := c.profiles.Save(ctx, profile.Profile{Name: name, Email: email})
	if err != nil {
		return nil, entity.Notification{}, err
	}
	c.state.ProfileName, c.state.ProfileEmail = name, email
	n := c.Notify(entity.TargetSave, entity.LevelSuccess, entity.MsgDetailsSaved)
	return sub, n, nil
}

// ApplyEmailResult はメール送信結果に応じた通知を出します。
func (c *Controller) ApplyEmailResult(err error) entity.Notification {
	if err != nil {
		slog.Error("email send failed", "error", err)
		return c.Notify(entity.TargetEmailError, entity.LevelError, entity.MsgEmailFailed)
	}
	return c.Notify(entity.TargetEmail, entity.LevelSuccess, entity.MsgEmailSent)
}

// Notify は通知を表示します。NotificationTTL 後に Dismiss を呼んで消します。
func (c *Controller) Notify(target entity.NotificationTarget, level entity.NotificationLevel, msg string) entity.Notification {
	c.nextID++
	n := entity.Notification{ID: c.nextID, Target: target, Level: level, Message: msg}
	c.state.Notifications[target] = n
	return n
}

// Dismiss は通知を消します。同じ領域に後から出た通知は消しません。
func (c *Controller) Dismiss(n entity.Notification) {
	if cur, ok := c.state.Notifications[n.Target]; ok && cur.ID == n.ID {
		delete(c.state.Notifications, n.Target)
	}
}
