package history

import (
	"strings"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/events"
	"github.com/decker502/dialogue/pkg/logger"
)

// Driver 播放驱动暴露给历史面板的控制接口
type Driver interface {
	// AutoPlay 返回当前是否处于自动播放
	AutoPlay() bool
	// PauseForHistory 暂停播放，必须取消正在进行的文字显示效果
	PauseForHistory()
	// ResumeAfterHistory 恢复播放
	ResumeAfterHistory()
	// ToggleAutoPlay 切换自动播放，返回切换后的状态
	ToggleAutoPlay() bool
}

// PortraitSource 可选能力：提供当前显示的立绘
// 驱动实现该接口时，新条目会附带事件发生时刻的立绘
type PortraitSource interface {
	CurrentPortrait() string
}

// View 历史面板的显示层
type View interface {
	// Show 面板打开时完整渲染全部条目
	Show(entries []Entry)
	// Hide 面板关闭
	Hide()
	// Append 面板打开期间增量追加一条
	Append(e Entry)
	// Refresh 面板打开期间条目被清空或整体变化时完整刷新
	Refresh(entries []Entry)
}

// suspensionToken 面板打开时记录的自动播放状态，关闭时消费一次
type suspensionToken struct {
	autoplay bool
	valid    bool
}

// Panel 历史面板控制器
//
// 状态机：Closed ⇄ Open，初始为 Closed
//
// Open 的副作用（按顺序）：
//  1. 记录当前自动播放状态
//  2. 通知驱动暂停（驱动负责取消正在进行的显示效果）
//  3. 完整渲染当前历史
//
// Close 的副作用：
//  1. 通知驱动恢复
//  2. 满足以下全部条件时恢复自动播放：
//     配置开启 ResumeAutoplayOnClose、打开前处于自动播放、驱动当前未处于自动播放
//
// 驱动或视图为 nil 时相关调用直接跳过，历史记录本身始终保持正确。
type Panel struct {
	buffer    *Buffer
	driver    Driver
	portraits PortraitSource
	view      View
	cfg       config.HistoryConfig

	open   bool
	token  suspensionToken
	scroll int

	log *logger.Entry
}

// NewPanel 创建历史面板
//
// 参数：
//   - buffer: 历史记录，为 nil 时按配置容量创建
//   - driver: 播放驱动，可为 nil
//   - view: 显示层，可为 nil
//   - cfg: 历史配置
func NewPanel(buffer *Buffer, driver Driver, view View, cfg config.HistoryConfig) *Panel {
	if buffer == nil {
		buffer = NewBuffer(cfg.MaxEntries)
	}
	if strings.TrimSpace(cfg.PlaceholderSpeaker) == "" {
		cfg.PlaceholderSpeaker = config.DefaultPlaceholderSpeaker
	}

	p := &Panel{
		buffer: buffer,
		driver: driver,
		view:   view,
		cfg:    cfg,
		log:    logger.Named("HistoryPanel"),
	}
	if ps, ok := driver.(PortraitSource); ok {
		p.portraits = ps
	}
	return p
}

// Buffer 返回底层历史记录
func (p *Panel) Buffer() *Buffer {
	return p.buffer
}

// SetView 设置显示层（宿主晚于面板创建视图时使用）
func (p *Panel) SetView(view View) {
	p.view = view
	if p.open && view != nil {
		view.Show(p.buffer.Entries())
	}
}

// SetResumeAutoplayOnClose 修改关闭时恢复自动播放的开关
func (p *Panel) SetResumeAutoplayOnClose(enabled bool) {
	p.cfg.ResumeAutoplayOnClose = enabled
}

// IsOpen 返回面板是否打开
func (p *Panel) IsOpen() bool {
	return p.open
}

// Toggle 切换面板
func (p *Panel) Toggle() {
	if p.open {
		p.Close()
	} else {
		p.Open()
	}
}

// Open 打开面板，已打开时无操作
func (p *Panel) Open() {
	if p.open {
		return
	}
	p.open = true
	p.scroll = 0

	p.token = suspensionToken{valid: true}
	if p.driver != nil {
		p.token.autoplay = p.driver.AutoPlay()
		p.driver.PauseForHistory()
	}
	if p.view != nil {
		p.view.Show(p.buffer.Entries())
	}

	p.log.WithFields(logger.Fields{
		"entries":  p.buffer.Len(),
		"autoplay": p.token.autoplay,
	}).Debug("opened")
}

// Close 关闭面板，已关闭时无操作
func (p *Panel) Close() {
	if !p.open {
		return
	}
	p.open = false

	token := p.token
	p.token = suspensionToken{}

	if p.view != nil {
		p.view.Hide()
	}
	if p.driver == nil {
		return
	}

	p.driver.ResumeAfterHistory()

	restored := false
	if p.cfg.ResumeAutoplayOnClose && token.valid && token.autoplay && !p.driver.AutoPlay() {
		p.driver.ToggleAutoPlay()
		restored = true
	}
	p.log.WithField("autoplayRestored", restored).Debug("closed")
}

// ScrollBy 滚动面板，正数向更早的条目滚动
func (p *Panel) ScrollBy(n int) {
	p.scroll += n
	maxScroll := p.buffer.Len() - 1
	if maxScroll < 0 {
		maxScroll = 0
	}
	if p.scroll > maxScroll {
		p.scroll = maxScroll
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

// ScrollOffset 返回距离最新条目的滚动偏移
func (p *Panel) ScrollOffset() int {
	return p.scroll
}

// HandleLineShown 记录一行已显示的对话
func (p *Panel) HandleLineShown(evt events.LineShown) {
	speaker := strings.TrimSpace(evt.Speaker)
	if speaker == "" {
		speaker = p.cfg.PlaceholderSpeaker
	}

	portrait := ""
	if p.portraits != nil {
		portrait = p.portraits.CurrentPortrait()
	}

	p.push(Entry{
		Kind:     KindLine,
		Speaker:  speaker,
		Text:     evt.Text,
		Portrait: portrait,
		NodeID:   evt.NodeID,
	})
}

// HandleChoicePicked 记录玩家的选择
func (p *Panel) HandleChoicePicked(evt events.ChoicePicked) {
	p.push(Entry{
		Kind:    KindChoice,
		Speaker: ChoiceSpeaker,
		Text:    evt.Text,
		NodeID:  evt.NodeID,
	})
}

// HandleConversationReset 清空历史，面板打开时完整刷新
func (p *Panel) HandleConversationReset(events.ConversationReset) {
	p.buffer.Clear()
	p.scroll = 0
	if p.open && p.view != nil {
		p.view.Refresh(p.buffer.Entries())
	}
	p.log.Debug("history cleared")
}

// Attach 订阅驱动的事件，返回的 Group 在 Release 后解除全部监听
func (p *Panel) Attach(bus *events.Bus) *events.Group {
	g := &events.Group{}
	if bus == nil {
		return g
	}
	g.Add(
		bus.OnLineShown(p.HandleLineShown),
		bus.OnChoicePicked(p.HandleChoicePicked),
		bus.OnConversationReset(p.HandleConversationReset),
	)
	return g
}

func (p *Panel) push(e Entry) {
	stored := p.buffer.Add(e)
	if p.open && p.view != nil {
		p.view.Append(stored)
	}
}
