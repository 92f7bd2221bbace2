package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/decker502/dialogue/pkg/history"
	"github.com/decker502/dialogue/pkg/logger"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/session"
	"github.com/decker502/dialogue/pkg/utils"
)

// canvas 终端绘制目标，tcell.Screen 满足该接口
type canvas interface {
	Size() (int, int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

var (
	styleText    = tcell.StyleDefault
	styleSpeaker = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleChoice  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// textLabel 台词输出目标
type textLabel struct {
	text string
}

func (l *textLabel) SetText(text string) {
	l.text = text
}

var _ history.View = (*historyPane)(nil)

// historyPane 终端历史面板，实现 history.View
type historyPane struct {
	entries []history.Entry
	visible bool
}

func (p *historyPane) Show(entries []history.Entry) {
	p.entries = append(p.entries[:0], entries...)
	p.visible = true
}

func (p *historyPane) Hide() {
	p.visible = false
}

func (p *historyPane) Append(e history.Entry) {
	p.entries = append(p.entries, e)
}

func (p *historyPane) Refresh(entries []history.Entry) {
	p.entries = append(p.entries[:0], entries...)
}

// ui 终端界面：把按键映射为会话操作并绘制
type ui struct {
	session *session.Session
	label   *textLabel
	pane    *historyPane
	title   string

	searching bool
	query     string
	results   []history.Entry
	status    string // 底部临时提示
	fast      bool

	log *logger.Entry
}

func newUI(s *session.Session, label *textLabel, pane *historyPane, title string) *ui {
	return &ui{
		session: s,
		label:   label,
		pane:    pane,
		title:   title,
		log:     logger.Named("Terminal"),
	}
}

// handleKey 处理一次按键，返回 false 表示退出
func (u *ui) handleKey(key tcell.Key, r rune) bool {
	if u.searching {
		u.handleSearchKey(key, r)
		return true
	}

	s := u.session
	switch key {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		s.Confirm()
		return true
	case tcell.KeyEscape:
		u.results = nil
		s.CloseHistory()
		return true
	case tcell.KeyUp:
		s.MoveSelection(-1)
		s.Scroll(1)
		return true
	case tcell.KeyDown:
		s.MoveSelection(1)
		s.Scroll(-1)
		return true
	case tcell.KeyPgUp:
		s.Scroll(5)
		return true
	case tcell.KeyPgDn:
		s.Scroll(-5)
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case 'q':
		return false
	case ' ':
		s.Confirm()
	case 'h':
		u.results = nil
		s.ToggleHistory()
	case 'a':
		u.setStatus("autoplay %s", onOff(s.ToggleAutoPlay()))
	case 'f':
		u.fast = !u.fast
		s.SetFastForward(u.fast)
		u.setStatus("fast-forward %s", onOff(s.Manager.FastForward()))
	case '+', '=':
		u.setStatus("text speed x%.2f", s.AdjustSpeed(1))
	case '-':
		u.setStatus("text speed x%.2f", s.AdjustSpeed(-1))
	case 'm':
		u.setStatus("reveal mode: %s (next line)", s.CycleRevealMode())
	case 'r':
		u.label.text = ""
		u.results = nil
		s.Restart()
	case 'y':
		n, err := s.CopyTranscript()
		if err != nil {
			u.log.WithError(err).Warn("Copy transcript failed")
			u.setStatus("copy failed: %v", err)
		} else {
			u.setStatus("copied %d entries", n)
		}
	case '/':
		if s.Panel.IsOpen() {
			u.searching = true
			u.query = ""
		}
	default:
		if r >= '1' && r <= '9' {
			s.Choose(int(r - '1'))
		}
	}
	return true
}

func (u *ui) handleSearchKey(key tcell.Key, r rune) {
	switch key {
	case tcell.KeyEscape:
		u.searching = false
		u.query = ""
	case tcell.KeyEnter:
		u.searching = false
		u.results = u.session.Search(u.query)
		u.setStatus("%d matches for %q", len(u.results), u.query)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if u.query != "" {
			rs := []rune(u.query)
			u.query = string(rs[:len(rs)-1])
		}
	case tcell.KeyRune:
		u.query += string(r)
	}
}

func (u *ui) setStatus(format string, args ...any) {
	u.status = fmt.Sprintf(format, args...)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// tick 推进会话，快进在历史面板打开时自动失效
func (u *ui) tick(dt float64) {
	u.session.SetFastForward(u.fast)
	u.session.Tick(dt)
}

// draw 绘制整屏
func (u *ui) draw(c canvas) {
	w, h := c.Size()
	clearCanvas(c, w, h)
	if w <= 4 || h <= 4 {
		return
	}

	boxLines := u.boxLines(w - 2)
	boxTop := h - len(boxLines) - 2
	if boxTop < 1 {
		boxTop = 1
	}

	putString(c, 0, 0, w, u.title, styleHint)
	if u.pane.visible {
		u.drawHistory(c, w, boxTop-1)
	}

	hline(c, boxTop-1, w)
	for i, line := range boxLines {
		y := boxTop + i
		if y >= h-1 {
			break
		}
		putString(c, 1, y, w-1, line.text, line.style)
	}
	putString(c, 0, h-1, w, u.statusLine(), styleHint)
}

type styledLine struct {
	text  string
	style tcell.Style
}

// boxLines 对话框内容：说话人、台词、选项
func (u *ui) boxLines(width int) []styledLine {
	m := u.session.Manager
	var lines []styledLine
	if sp := m.Speaker(); sp != "" {
		if p := m.CurrentPortrait(); p != "" {
			sp = fmt.Sprintf("%s [%s]", sp, p)
		}
		lines = append(lines, styledLine{sp, styleSpeaker})
	}
	for _, l := range utils.WrapText(u.label.text, utils.CellWidth, float64(width)) {
		lines = append(lines, styledLine{l, styleText})
	}
	for i, c := range m.Choices() {
		style := styleChoice
		if i == u.session.Selected() {
			style = styleActive
		}
		lines = append(lines, styledLine{fmt.Sprintf("%d) %s", i+1, c), style})
	}
	switch m.Phase() {
	case playback.PhaseWaiting:
		lines = append(lines, styledLine{"(space to continue)", styleHint})
	case playback.PhaseFinished:
		lines = append(lines, styledLine{"- The End -  (r to restart, q to quit)", styleHint})
	}
	return lines
}

// drawHistory 在 [1, bottom) 行内绘制历史面板，最新条目在底部
func (u *ui) drawHistory(c canvas, w, bottom int) {
	entries := u.pane.entries
	header := "History (h/esc close, / search, y copy)"
	if u.results != nil {
		entries = u.results
		header = "Search results (esc back)"
	}
	if u.searching {
		header = "Search: " + u.query + "_"
	}
	putString(c, 1, 1, w-1, header, styleBorder)

	var lines []styledLine
	last := len(entries) - 1
	if u.results == nil {
		last -= u.session.Panel.ScrollOffset()
	}
	for _, e := range entries[:max(last+1, 0)] {
		name := e.Speaker
		style := styleSpeaker
		if e.IsChoice() {
			name = "> " + name
			style = styleChoice
		}
		lines = append(lines, styledLine{name, style})
		for _, l := range utils.WrapText(e.Text, utils.CellWidth, float64(w-4)) {
			lines = append(lines, styledLine{"  " + l, styleText})
		}
	}

	rows := bottom - 2
	if rows <= 0 {
		return
	}
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, l := range lines {
		putString(c, 1, 2+i, w-1, l.text, l.style)
	}
}

func (u *ui) statusLine() string {
	m := u.session.Manager
	cfg := u.session.Config()
	parts := []string{
		fmt.Sprintf("mode:%s", m.Factory().Config().Mode),
		fmt.Sprintf("speed:x%.2f", u.session.Settings.GetSettings().TextSpeed),
	}
	if m.AutoPlay() {
		parts = append(parts, "AUTO")
	}
	if m.FastForward() {
		parts = append(parts, "FF")
	}
	parts = append(parts, fmt.Sprintf("history:%d/%d", u.session.Panel.Buffer().Len(), cfg.History.MaxEntries))
	if u.status != "" {
		parts = append(parts, u.status)
	}
	return strings.Join(parts, "  ")
}

func clearCanvas(c canvas, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func hline(c canvas, y, w int) {
	for x := 0; x < w; x++ {
		c.SetContent(x, y, '─', nil, styleBorder)
	}
}

// putString 按字素簇写入一行文本，超过 maxX 截断，返回写入后的列
func putString(c canvas, x, y, maxX int, s string, style tcell.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		width := runewidth.StringWidth(g.Str())
		if width == 0 {
			continue
		}
		if x+width > maxX {
			break
		}
		c.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
	return x
}
