// Package app 提供对话演示程序的 Ebitengine 包装器
//
// 该包将初始化逻辑从 main 包提取出来，main.go 只负责解析参数和准备资源。
package app

import (
	"fmt"
	"image/color"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/game"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/render"
	"github.com/decker502/dialogue/pkg/script"
	"github.com/decker502/dialogue/pkg/session"
)

// 固定帧间隔（Ebitengine 默认 60 TPS）
const deltaTime = 1.0 / 60.0

// Config 定义应用启动配置
type Config struct {
	Dialogue *config.DialogueConfig
	Script   *script.Script
	Settings *game.SettingsManager // 可为 nil（仅内存设置）
}

// App 实现 ebiten.Game 接口
type App struct {
	session *session.Session
	label   *render.Label
	box     *render.DialogueBox
	history *render.HistoryView
	theme   render.Theme
	input   InputSource
	log     *logger.Entry
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	theme := render.DefaultTheme()
	face, err := render.LoadFace(theme.FontSize)
	if err != nil {
		return nil, fmt.Errorf("字体加载失败: %w", err)
	}
	return newApp(cfg, face, ebitenInput{}, clipboard.WriteAll)
}

func newApp(cfg Config, face *text.GoTextFace, input InputSource, clip func(string) error) (*App, error) {
	theme := render.DefaultTheme()
	a := &App{
		label:   render.NewLabel(),
		box:     render.NewDialogueBox(face, theme),
		history: render.NewHistoryView(face, theme),
		theme:   theme,
		input:   input,
		log:     logger.Named("App"),
	}

	s, err := session.New(session.Options{
		Config:    cfg.Dialogue,
		Script:    cfg.Script,
		Settings:  cfg.Settings,
		Sink:      a.label,
		View:      a.history,
		Clipboard: clip,
	})
	if err != nil {
		return nil, err
	}
	a.session = s
	s.Start()
	return a, nil
}

// Session 返回对话会话
func (a *App) Session() *session.Session {
	return a.session
}

// Update 更新逻辑，每个 tick 调用一次
func (a *App) Update() error {
	if a.input != nil {
		for _, act := range a.input.Poll() {
			a.Handle(act)
		}
		a.session.SetFastForward(a.input.FastForwardHeld())
	}

	a.session.Tick(deltaTime)
	a.history.Update(deltaTime)
	return nil
}

// Handle 执行一个输入动作
func (a *App) Handle(act Action) {
	s := a.session
	switch act.Kind {
	case ActionConfirm:
		s.Confirm()
	case ActionClick:
		if s.Panel.IsOpen() {
			return
		}
		if i := a.box.ChoiceAt(a.boxState(), act.X, act.Y); i >= 0 {
			s.Choose(i)
			return
		}
		s.Confirm()
	case ActionChoose:
		s.Choose(act.Index)
	case ActionSelectPrev:
		s.MoveSelection(-1)
	case ActionSelectNext:
		s.MoveSelection(1)
	case ActionToggleHistory:
		s.ToggleHistory()
	case ActionCloseHistory:
		s.CloseHistory()
	case ActionScroll:
		s.Scroll(act.Index)
	case ActionToggleAutoPlay:
		on := s.ToggleAutoPlay()
		a.log.WithField("autoplay", on).Info("Autoplay toggled")
	case ActionSpeedUp:
		a.log.WithField("speed", s.AdjustSpeed(1)).Info("Text speed changed")
	case ActionSpeedDown:
		a.log.WithField("speed", s.AdjustSpeed(-1)).Info("Text speed changed")
	case ActionCycleMode:
		a.log.WithField("mode", s.CycleRevealMode()).Info("Reveal mode changed")
	case ActionRestart:
		a.label.Clear()
		s.Restart()
	case ActionCopyTranscript:
		n, err := s.CopyTranscript()
		if err != nil {
			a.log.WithError(err).Warn("Copy transcript failed")
			return
		}
		a.log.WithField("entries", n).Info("Transcript copied")
	case ActionToggleFullscreen:
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
}

// boxState 当前帧的对话框状态
func (a *App) boxState() render.BoxState {
	m := a.session.Manager
	return render.BoxState{
		Speaker:  m.Speaker(),
		Portrait: m.CurrentPortrait(),
		Label:    a.label,
		Choices:  m.Choices(),
		Selected: a.session.Selected(),
		Waiting:  m.Phase() == playback.PhaseWaiting,
		AutoPlay: m.AutoPlay(),
		Finished: m.Phase() == playback.PhaseFinished,
	}
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(a.theme.Background)
	a.box.Draw(screen, a.boxState())
	a.history.Draw(screen, a.session.Panel.ScrollOffset())
}

// DrawFinalScreen 全屏时用黑色填充 letterbox
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return render.ScreenWidth, render.ScreenHeight
}

// Close 释放会话资源
func (a *App) Close() {
	a.session.Close()
}
