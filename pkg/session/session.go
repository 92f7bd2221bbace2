// Package session 把播放驱动、历史面板和玩家设置组装成一次对话会话
//
// 图形界面和终端界面共用同一个 Session，各自只负责把输入映射成这里的操作。
package session

import (
	"errors"
	"fmt"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/events"
	"github.com/decker502/dialogue/pkg/game"
	"github.com/decker502/dialogue/pkg/history"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/reveal"
	"github.com/decker502/dialogue/pkg/script"
)

// 文字速度调整步长
const speedStep = 0.25

// revealModes 循环切换显示模式的顺序
var revealModes = []config.RevealMode{
	config.RevealTyping,
	config.RevealWord,
	config.RevealFade,
	config.RevealNone,
}

// ErrNoClipboard 未配置剪贴板
var ErrNoClipboard = errors.New("clipboard not available")

// Options 会话依赖
type Options struct {
	Config    *config.DialogueConfig // nil 时使用默认配置
	Script    *script.Script
	Settings  *game.SettingsManager // nil 时使用仅内存的设置
	Sink      reveal.TextSink       // 台词输出目标
	View      history.View          // 历史面板视图，可为 nil
	Clipboard func(string) error    // 复制文本到系统剪贴板，可为 nil
}

// Session 一次对话会话
type Session struct {
	Bus      *events.Bus
	Manager  *playback.Manager
	Panel    *history.Panel
	Settings *game.SettingsManager

	cfg       *config.DialogueConfig
	subs      *events.Group
	clipboard func(string) error
	selected  int
	log       *logger.Entry
}

// New 创建会话，玩家设置会覆盖在配置之上
func New(opts Options) (*Session, error) {
	if opts.Script == nil {
		return nil, fmt.Errorf("session: script is required")
	}

	cfg := config.Default()
	if opts.Config != nil {
		copied := *opts.Config
		cfg = &copied
	}

	settings := opts.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil)
	}
	settings.GetSettings().ApplyTo(cfg)

	bus := events.NewBus()
	manager := playback.NewManager(opts.Script, cfg, opts.Sink, bus)
	manager.Factory().SetSpeedScale(settings.GetSettings().TextSpeed)

	panel := history.NewPanel(nil, manager, opts.View, cfg.History)

	s := &Session{
		Bus:       bus,
		Manager:   manager,
		Panel:     panel,
		Settings:  settings,
		cfg:       cfg,
		clipboard: opts.Clipboard,
		log:       logger.Named("Session"),
	}
	s.subs = panel.Attach(bus)
	s.subs.Add(bus.OnChoicePicked(func(events.ChoicePicked) { s.selected = 0 }))

	s.log.WithFields(logger.Fields{
		"script": opts.Script.ID,
		"steps":  opts.Script.Len(),
		"mode":   cfg.Reveal.Mode,
	}).Info("Session created")
	return s, nil
}

// Config 返回生效的配置（已合并玩家设置）
func (s *Session) Config() *config.DialogueConfig {
	return s.cfg
}

// Start 开始播放
func (s *Session) Start() {
	s.Manager.Start()
}

// Close 释放事件订阅
func (s *Session) Close() {
	s.subs.Release()
}

// Tick 每帧调用
func (s *Session) Tick(dt float64) {
	s.Manager.Tick(dt)
}

// Selected 当前高亮的选项
func (s *Session) Selected() int {
	return s.selected
}

// MoveSelection 移动选项高亮，循环（历史面板打开时忽略）
func (s *Session) MoveSelection(delta int) {
	if s.Panel.IsOpen() {
		return
	}
	n := len(s.Manager.Choices())
	if n == 0 {
		s.selected = 0
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

// Confirm 玩家确认：等待选择时选中高亮项，否则继续
func (s *Session) Confirm() {
	if s.Panel.IsOpen() {
		return
	}
	if s.Manager.Phase() == playback.PhaseChoosing {
		s.Choose(s.selected)
		return
	}
	s.Manager.Advance()
}

// Choose 选择第 i 个选项
func (s *Session) Choose(i int) bool {
	if s.Panel.IsOpen() {
		return false
	}
	return s.Manager.Choose(i)
}

// ToggleHistory 打开或关闭历史面板
func (s *Session) ToggleHistory() {
	s.Panel.Toggle()
}

// CloseHistory 关闭历史面板
func (s *Session) CloseHistory() {
	s.Panel.Close()
}

// Scroll 滚动历史面板，正数向更早的条目滚动
func (s *Session) Scroll(n int) {
	if s.Panel.IsOpen() {
		s.Panel.ScrollBy(n)
	}
}

// ToggleAutoPlay 切换自动播放并记入设置
// 历史面板打开时忽略，返回当前状态（关闭面板时由面板决定是否恢复）
func (s *Session) ToggleAutoPlay() bool {
	if s.Panel.IsOpen() {
		return s.Manager.AutoPlay()
	}
	on := s.Manager.ToggleAutoPlay()
	s.Settings.SetAutoplayEnabled(on)
	s.save()
	return on
}

// SetFastForward 设置快进（历史面板打开时忽略）
func (s *Session) SetFastForward(enabled bool) {
	if s.Panel.IsOpen() {
		enabled = false
	}
	s.Manager.SetFastForward(enabled)
}

// AdjustSpeed 按步长调整文字速度并保存，返回新的倍率
// 历史面板打开时忽略，返回当前倍率
func (s *Session) AdjustSpeed(steps int) float64 {
	if s.Panel.IsOpen() {
		return s.Settings.GetSettings().TextSpeed
	}
	speed := s.Settings.GetSettings().TextSpeed + float64(steps)*speedStep
	s.Settings.SetTextSpeed(speed)
	speed = s.Settings.GetSettings().TextSpeed
	s.Manager.Factory().SetSpeedScale(speed)
	s.save()
	return speed
}

// CycleRevealMode 切换到下一种显示模式，从下一行开始生效
// 历史面板打开时忽略，返回当前模式
func (s *Session) CycleRevealMode() config.RevealMode {
	rc := s.Manager.Factory().Config()
	if s.Panel.IsOpen() {
		return rc.Mode
	}
	next := revealModes[0]
	for i, m := range revealModes {
		if m == rc.Mode {
			next = revealModes[(i+1)%len(revealModes)]
			break
		}
	}
	rc.Mode = next
	s.Manager.Factory().SetConfig(rc)
	s.cfg.Reveal.Mode = next

	if err := s.Settings.SetRevealMode(next); err == nil {
		s.save()
	}
	return next
}

// Restart 清空历史并从头播放
// 历史面板打开时先关闭面板
func (s *Session) Restart() {
	s.Panel.Close()
	s.selected = 0
	s.Manager.Reset()
}

// Search 模糊搜索历史记录
func (s *Session) Search(query string) []history.Entry {
	return s.Panel.Buffer().Search(query)
}

// CopyTranscript 将历史记录复制到剪贴板，返回复制的条目数
func (s *Session) CopyTranscript() (int, error) {
	if s.clipboard == nil {
		return 0, ErrNoClipboard
	}
	buf := s.Panel.Buffer()
	if err := s.clipboard(buf.Transcript()); err != nil {
		return 0, fmt.Errorf("failed to copy transcript: %w", err)
	}
	return buf.Len(), nil
}

// save 保存设置，失败只记录警告
func (s *Session) save() {
	if err := s.Settings.Save(); err != nil {
		s.log.WithError(err).Warn("Failed to save settings")
	}
}
