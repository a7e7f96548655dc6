// Package tui はダッシュボードのターミナルUIです。
// bubbletea の更新ループが controller.Controller を唯一所有し、取得処理は tea.Cmd で実行します。
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stock_dashboard/internal/feature/dashboard/controller"
	"stock_dashboard/internal/feature/dashboard/domain/entity"
	"stock_dashboard/internal/feature/dashboard/usecase"
	"stock_dashboard/internal/feature/dashboard/view"
	profileusecase "stock_dashboard/internal/feature/profile/usecase"
)

const (
	chartHeight  = 10
	defaultWidth = 80
)

type focusArea int

const (
	focusNone focusArea = iota
	focusSearch
	focusName
	focusEmail
)

type loadedMsg struct{ res usecase.LoadResult }

type emailResultMsg struct{ err error }

type hideMsg struct{ n entity.Notification }

// Model はbubbleteaのモデルです。
type Model struct {
	ctrl *controller.Controller
	ctx  context.Context

	search textinput.Model
	name   textinput.Model
	email  textinput.Model
	focus  focusArea

	// initial は最初の読み込み対象です。Init で使います。
	initial loadArgs
	width   int
	height  int
}

type loadArgs struct {
	symbol    string
	exchange  string
	timeframe entity.Timeframe
}

// NewModel はモデルを生成します。保存済みプロフィールをフォームに復元し、最初の読み込みを準備します。
// 読み込みの期限はプロキシ呼び出しごとに MarketUsecase 側で設定します。
func NewModel(ctx context.Context, ctrl *controller.Controller) Model {
	search := textinput.New()
	search.Placeholder = "Search symbol"
	search.Prompt = "/ "
	search.CharLimit = 16

	name := textinput.New()
	name.Placeholder = "Name"
	name.Prompt = "Name:  "
	name.CharLimit = 128

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email: "
	email.CharLimit = 254

	if _, err := ctrl.RestoreProfile(ctx); err != nil {
		slog.Warn("failed to restore profile", "error", err)
	}
	st := ctrl.State()
	name.SetValue(st.ProfileName)
	email.SetValue(st.ProfileEmail)

	symbol, exchange, tf := ctrl.BeginLoad(st.Symbol, st.Exchange)
	return Model{
		ctrl:    ctrl,
		ctx:     ctx,
		search:  search,
		name:    name,
		email:   email,
		initial: loadArgs{symbol: symbol, exchange: exchange, timeframe: tf},
		width:   defaultWidth,
	}
}

// Init は最初の銘柄を読み込みます。
func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.initial.symbol, m.initial.exchange, m.initial.timeframe)
}

func (m Model) loadCmd(symbol, exchange string, tf entity.Timeframe) tea.Cmd {
	loader, ctx := m.ctrl.Loader(), m.ctx
	return func() tea.Msg {
		return loadedMsg{res: loader.Load(ctx, symbol, exchange, tf)}
	}
}

func hideCmd(n entity.Notification) tea.Cmd {
	return tea.Tick(entity.NotificationTTL, func(time.Time) tea.Msg {
		return hideMsg{n: n}
	})
}

func (m Model) emailCmd(sub *profileusecase.Submission) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		return emailResultMsg{err: sub.EmailResult(parent)}
	}
}

// Update はメッセージに応じてControllerの状態を更新します。
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		m.ctrl.Apply(msg.res)
		return m, nil

	case emailResultMsg:
		return m, hideCmd(m.ctrl.ApplyEmailResult(msg.err))

	case hideMsg:
		m.ctrl.Dismiss(msg.n)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusName, focusEmail:
			return m.updateProfile(msg)
		}
		return m.updateHotkeys(msg)
	}
	return m, nil
}

func (m Model) updateHotkeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		return m, m.search.Focus()
	case "tab", "p":
		m.focus = focusName
		return m, m.name.Focus()
	case "r":
		st := m.ctrl.State()
		symbol, exchange, tf := m.ctrl.BeginLoad(st.Symbol, st.Exchange)
		return m, m.loadCmd(symbol, exchange, tf)
	}
	for i, tf := range entity.Timeframes() {
		if key == fmt.Sprint(i+1) {
			symbol, exchange := m.ctrl.SetTimeframe(tf)
			symbol, exchange, tf = m.ctrl.BeginLoad(symbol, exchange)
			return m, m.loadCmd(symbol, exchange, tf)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		m.focus = focusNone
		return m, nil
	case tea.KeyEnter:
		symbol := strings.ToUpper(strings.TrimSpace(m.search.Value()))
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.Search("")
		m.focus = focusNone
		if symbol == "" {
			return m, nil
		}
		symbol, exchange, tf := m.ctrl.BeginLoad(symbol, m.ctrl.State().Exchange)
		return m, m.loadCmd(symbol, exchange, tf)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.Search(m.search.Value())
	return m, cmd
}

func (m Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.name.Blur()
		m.email.Blur()
		m.focus = focusNone
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.focus == focusName {
			m.name.Blur()
			m.focus = focusEmail
			return m, m.email.Focus()
		}
		m.email.Blur()
		m.focus = focusName
		return m, m.name.Focus()
	case tea.KeyEnter:
		if m.focus == focusName {
			m.name.Blur()
			m.focus = focusEmail
			return m, m.email.Focus()
		}
		return m.submitProfile()
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.email, cmd = m.email.Update(msg)
	}
	return m, cmd
}

func (m Model) submitProfile() (tea.Model, tea.Cmd) {
	m.name.Blur()
	m.email.Blur()
	m.focus = focusNone

	sub, n, err := m.ctrl.SaveProfile(m.ctx, m.name.Value(), m.email.Value())
	if err != nil {
		slog.Error("failed to save profile", "error", err)
		return m, hideCmd(m.ctrl.Notify(entity.TargetSave, entity.LevelError, "Failed to save details."))
	}
	return m, tea.Batch(hideCmd(n), m.emailCmd(sub))
}

// renderable は描画可能なチャートです。
type renderable interface {
	Render(width, height int) string
}

// View は画面全体を描画します。
func (m Model) View() string {
	st := m.ctrl.State()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Stock Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(m.renderQuote(st))
	b.WriteString("\n")
	b.WriteString(renderTimeframes(st.Timeframe))
	b.WriteString("\n\n")

	switch {
	case st.Loading:
		b.WriteString(dimStyle.Render("Loading..."))
		b.WriteString("\n")
	case st.Chart != nil:
		if r, ok := st.Chart.(renderable); ok {
			b.WriteString(chartStyle.Render(r.Render(width-4, chartHeight)))
			b.WriteString("\n")
		}
	}
	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.name.View(),
		m.email.View(),
	)))
	b.WriteString("\n")
	for _, target := range []entity.NotificationTarget{entity.TargetSave, entity.TargetEmail, entity.TargetEmailError} {
		if n, ok := st.Notifications[target]; ok {
			style := successStyle
			if n.Level == entity.LevelError {
				style = errorStyle
			}
			b.WriteString(style.Render(n.Message))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("1-6 timeframe  / search  tab profile  r reload  q quit"))
	return b.String()
}

func (m Model) renderQuote(st *controller.State) string {
	q := st.Quote
	if q == nil {
		return symbolStyle.Render(st.Symbol) + "\n"
	}

	change := dimStyle
	switch {
	case strings.HasPrefix(q.Change, "-"):
		change = lossStyle
	case q.Change != view.Placeholder:
		change = gainStyle
	}

	header := fmt.Sprintf("%s  %s  %s  %s",
		symbolStyle.Render(q.Symbol), q.Name, priceStyle.Render(q.Price), change.Render(q.Change))

	stat := func(label, v string) string {
		return labelStyle.Render(label) + v
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		stat("Open", q.Open), stat("High", q.High), stat("Low", q.Low))
	right := lipgloss.JoinVertical(lipgloss.Left,
		stat("Volume", q.Volume), stat("52W High", q.YearHigh), stat("52W Low", q.YearLow))

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right) + "\n"
}

func renderTimeframes(current entity.Timeframe) string {
	parts := make([]string, 0, len(entity.Timeframes()))
	for i, tf := range entity.Timeframes() {
		label := fmt.Sprintf("%d:%s", i+1, tf)
		if tf == current {
			parts = append(parts, tfActive.Render(label))
		} else {
			parts = append(parts, tfStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
