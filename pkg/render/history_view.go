package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/dialogue/pkg/history"
	"github.com/decker502/dialogue/pkg/utils"
)

var _ history.View = (*HistoryView)(nil)

// 面板滑入时长（秒）
const historySlideDuration = 0.2

// HistoryView 历史面板的 Ebitengine 视图，实现 history.View
//
// 视图只保存条目副本用于绘制，不修改历史记录本身。
type HistoryView struct {
	face    *text.GoTextFace
	theme   Theme
	entries []history.Entry
	visible bool
	slide   *utils.Tween
}

// NewHistoryView 创建历史面板视图
func NewHistoryView(face *text.GoTextFace, theme Theme) *HistoryView {
	return &HistoryView{
		face:  face,
		theme: theme,
		slide: utils.NewTween(historySlideDuration, utils.EaseOutCubic),
	}
}

// Show 面板打开时调用，entries 从旧到新
func (v *HistoryView) Show(entries []history.Entry) {
	v.entries = append(v.entries[:0], entries...)
	v.visible = true
	v.slide.Forward()
}

// Hide 面板关闭时调用
func (v *HistoryView) Hide() {
	v.visible = false
	v.slide.Backward()
}

// Append 面板打开期间追加新条目
func (v *HistoryView) Append(e history.Entry) {
	v.entries = append(v.entries, e)
}

// Refresh 替换全部条目（清空或容量调整后）
func (v *HistoryView) Refresh(entries []history.Entry) {
	v.entries = append(v.entries[:0], entries...)
}

// Visible 面板是否打开
func (v *HistoryView) Visible() bool {
	return v.visible
}

// Entries 当前显示的条目
func (v *HistoryView) Entries() []history.Entry {
	return v.entries
}

// Update 推进滑入动画
func (v *HistoryView) Update(dt float64) {
	v.slide.Tick(dt)
}

// Lines 将条目展开为显示行，每个条目为标题行加换行后的正文
func (v *HistoryView) Lines(maxWidth float64, measure utils.MeasureFunc) []HistoryLine {
	var lines []HistoryLine
	for i, e := range v.entries {
		header := e.Speaker
		if e.IsChoice() {
			header = "> " + e.Speaker
		}
		if e.Portrait != "" {
			header = fmt.Sprintf("%s  [%s]", header, e.Portrait)
		}
		lines = append(lines, HistoryLine{Entry: i, Text: header, Header: true})
		for _, l := range utils.WrapText(e.Text, measure, maxWidth) {
			lines = append(lines, HistoryLine{Entry: i, Text: l, Choice: e.IsChoice()})
		}
	}
	return lines
}

// HistoryLine 历史面板中的一行
type HistoryLine struct {
	Entry  int // 所属条目序号
	Text   string
	Header bool
	Choice bool
}

// Draw 绘制面板，scroll 为从最新条目向上滚动的条目数
func (v *HistoryView) Draw(screen *ebiten.Image, scroll int) {
	progress := v.slide.Value()
	if progress <= 0 {
		return
	}
	t := v.theme

	w := ScreenWidth - 2*t.PanelMargin
	h := ScreenHeight - 2*t.PanelMargin
	x := t.PanelMargin
	y := utils.Lerp(-h, t.PanelMargin, progress)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), t.PanelColor, true)

	v.drawText(screen, "History  (H/Esc close, wheel scroll)", x+t.Padding, y+t.Padding/2, t.HintColor)

	top := y + t.Padding/2 + t.LineHeight
	bottom := y + h - t.Padding
	maxLines := int((bottom - top) / t.LineHeight)
	if maxLines <= 0 {
		return
	}

	lines := v.Lines(w-2*t.Padding, FaceMeasure(v.face))
	end := len(lines)
	// 跳过最新的 scroll 个条目
	lastEntry := len(v.entries) - 1 - scroll
	for end > 0 && lines[end-1].Entry > lastEntry {
		end--
	}
	start := end - maxLines
	if start < 0 {
		start = 0
	}

	lineY := top
	for _, line := range lines[start:end] {
		clr := t.TextColor
		switch {
		case line.Header:
			clr = t.SpeakerColor
		case line.Choice:
			clr = t.ChoiceColor
		}
		v.drawText(screen, line.Text, x+t.Padding, lineY, clr)
		lineY += t.LineHeight
	}
}

func (v *HistoryView) drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	if v.face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, v.face, op)
}
