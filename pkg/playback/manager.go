// Package playback 提供参考播放驱动：按脚本逐行显示台词、处理选项和自动播放
package playback

import (
	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/events"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/reveal"
	"github.com/decker502/dialogue/pkg/script"
)

// Phase 播放阶段
type Phase int

const (
	PhaseIdle      Phase = iota // 尚未开始
	PhaseRevealing              // 当前行正在显示
	PhaseWaiting                // 当前行已完整显示，等待继续
	PhaseChoosing               // 等待玩家选择
	PhaseFinished               // 脚本播放完毕
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRevealing:
		return "revealing"
	case PhaseWaiting:
		return "waiting"
	case PhaseChoosing:
		return "choosing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Manager 播放驱动
//
// 同一时刻最多只有一个显示效果在运行：创建新效果之前，
// 旧效果会被取消并 Tick 一次以写出完整文本。
// 行显示完成（自然结束或被取消）后发布 LineShown 事件。
type Manager struct {
	script  *script.Script
	bus     *events.Bus
	sink    reveal.TextSink
	factory *reveal.Factory
	cfg     config.PlaybackConfig

	index   int
	phase   Phase
	effect  reveal.Effect
	emitted bool // 当前行是否已发布 LineShown

	autoplay    bool
	fastForward bool
	paused      bool
	waited      float64 // 自动播放计时

	log *logger.Entry
}

// NewManager 创建播放驱动，cfg 为 nil 时使用默认配置，bus 和 sink 可为 nil
func NewManager(s *script.Script, cfg *config.DialogueConfig, sink reveal.TextSink, bus *events.Bus) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Manager{
		script:   s,
		bus:      bus,
		sink:     sink,
		cfg:      cfg.Playback,
		autoplay: cfg.Playback.StartWithAutoplay,
		log:      logger.Named("PlaybackManager"),
	}
	m.factory = reveal.NewFactory(cfg.Reveal, m)
	return m
}

// Factory 返回效果工厂（用于修改显示模式和速度）
func (m *Manager) Factory() *reveal.Factory {
	return m.factory
}

// SetPlaybackConfig 替换自动播放配置
func (m *Manager) SetPlaybackConfig(cfg config.PlaybackConfig) {
	m.cfg = cfg
}

// Script 返回当前脚本
func (m *Manager) Script() *script.Script {
	return m.script
}

// Phase 返回当前阶段
func (m *Manager) Phase() Phase {
	return m.phase
}

// Index 返回当前步骤序号
func (m *Manager) Index() int {
	return m.index
}

// Effect 返回当前显示效果，可能为 nil
func (m *Manager) Effect() reveal.Effect {
	return m.effect
}

// CurrentStep 返回当前步骤，脚本结束或未开始时 ok 为 false
func (m *Manager) CurrentStep() (script.Step, bool) {
	if m.script == nil || m.phase == PhaseIdle || m.index < 0 || m.index >= m.script.Len() {
		return script.Step{}, false
	}
	return m.script.Steps[m.index], true
}

// Speaker 当前说话人
func (m *Manager) Speaker() string {
	step, _ := m.CurrentStep()
	return step.Speaker
}

// CurrentPortrait 当前立绘 key，由历史面板在行显示完成时读取
func (m *Manager) CurrentPortrait() string {
	step, _ := m.CurrentStep()
	return step.Portrait
}

// Choices 等待选择时返回选项，否则返回 nil
func (m *Manager) Choices() []string {
	if m.phase != PhaseChoosing {
		return nil
	}
	step, _ := m.CurrentStep()
	return step.Choices
}

// Start 从第一步开始播放
func (m *Manager) Start() {
	m.drain()
	m.index = 0
	m.waited = 0
	m.begin()
}

// Load 切换脚本并重新开始
func (m *Manager) Load(s *script.Script) {
	m.script = s
	m.Reset()
}

// Reset 清空对话并从头开始，发布 ConversationReset
// 正在显示的行只被收尾，不发布 LineShown（历史随即被清空）
func (m *Manager) Reset() {
	m.drain()
	m.phase = PhaseIdle
	if m.bus != nil {
		m.bus.Resets.Publish(events.ConversationReset{})
	}
	m.log.Debug("Conversation reset")
	m.Start()
}

// Tick 每帧调用，dt 为秒
func (m *Manager) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}

	if m.phase == PhaseRevealing && m.effect != nil {
		if m.paused {
			// 暂停时只推进已取消的效果，使其写出完整文本
			if m.effect.IsCancelled() && !m.effect.Done() {
				m.effect.Tick(0)
			}
		} else {
			m.effect.Tick(dt)
		}
		if m.effect.Done() {
			m.finishLine()
		}
		return
	}

	if m.phase == PhaseWaiting && m.autoplay && !m.paused {
		m.waited += dt
		if m.waited >= m.autoplayDelay() {
			m.next()
		}
	}
}

// Advance 玩家点击继续：正在显示则跳过动画，已显示则进入下一步
func (m *Manager) Advance() {
	if m.paused {
		return
	}
	switch m.phase {
	case PhaseRevealing:
		if m.effect != nil {
			m.effect.CompleteImmediately()
		}
		m.finishLine()
	case PhaseWaiting:
		m.next()
	}
}

// Choose 选择第 i 个选项，成功时发布 ChoicePicked 并进入下一步
func (m *Manager) Choose(i int) bool {
	if m.paused || m.phase != PhaseChoosing {
		return false
	}
	step, ok := m.CurrentStep()
	if !ok || i < 0 || i >= len(step.Choices) {
		return false
	}
	if m.bus != nil {
		m.bus.Choices.Publish(events.ChoicePicked{NodeID: step.Node, Text: step.Choices[i]})
	}
	m.log.WithField("choice", step.Choices[i]).Debug("Choice picked")
	m.next()
	return true
}

// AutoPlay 自动播放是否开启
func (m *Manager) AutoPlay() bool {
	return m.autoplay
}

// ToggleAutoPlay 切换自动播放，返回切换后的状态
func (m *Manager) ToggleAutoPlay() bool {
	m.SetAutoPlay(!m.autoplay)
	return m.autoplay
}

// SetAutoPlay 设置自动播放
func (m *Manager) SetAutoPlay(enabled bool) {
	if m.autoplay == enabled {
		return
	}
	m.autoplay = enabled
	m.waited = 0
	m.log.WithField("enabled", enabled).Debug("Autoplay changed")
}

// FastForward 是否处于快进状态
func (m *Manager) FastForward() bool {
	return m.fastForward
}

// SetFastForward 设置快进状态（通常在按住快进键时为 true）
func (m *Manager) SetFastForward(enabled bool) {
	m.fastForward = enabled
}

// Paused 是否因历史面板而暂停
func (m *Manager) Paused() bool {
	return m.paused
}

// PauseForHistory 历史面板打开：取消正在运行的效果并暂停推进
func (m *Manager) PauseForHistory() {
	m.paused = true
	if m.effect != nil && !m.effect.Done() {
		m.effect.Cancel()
	}
}

// ResumeAfterHistory 历史面板关闭：恢复推进
func (m *Manager) ResumeAfterHistory() {
	m.paused = false
	m.waited = 0
}

// begin 进入当前步骤
func (m *Manager) begin() {
	if m.script == nil || m.index >= m.script.Len() {
		m.phase = PhaseFinished
		m.effect = nil
		m.log.Debug("Script finished")
		return
	}
	step := m.script.Steps[m.index]
	if step.Text == "" {
		m.phase = PhaseChoosing
		return
	}
	m.drain()
	m.effect = m.factory.Create(step.Text, m.sink)
	m.emitted = false
	m.phase = PhaseRevealing
}

// next 进入下一步
func (m *Manager) next() {
	m.index++
	m.waited = 0
	m.begin()
}

// finishLine 当前行显示完成
func (m *Manager) finishLine() {
	step, _ := m.CurrentStep()
	if !m.emitted {
		m.emitted = true
		if m.bus != nil {
			m.bus.Lines.Publish(events.LineShown{NodeID: step.Node, Speaker: step.Speaker, Text: step.Text})
		}
	}
	m.waited = 0
	if step.HasChoices() {
		m.phase = PhaseChoosing
	} else {
		m.phase = PhaseWaiting
	}
}

// drain 取消旧效果并推进一次，保证它写出终态
func (m *Manager) drain() {
	if m.effect == nil {
		return
	}
	if !m.effect.Done() {
		m.effect.Cancel()
		m.effect.Tick(0)
	}
	m.effect = nil
}

// autoplayDelay 当前行的自动播放等待时间
func (m *Manager) autoplayDelay() float64 {
	step, _ := m.CurrentStep()
	return m.cfg.AutoplayDelay + m.cfg.AutoplayPerChar*float64(len([]rune(step.Text)))
}
