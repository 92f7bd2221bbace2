package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/dialogue/pkg/utils"
)

// BoxState 对话框一帧所需的状态
type BoxState struct {
	Speaker  string
	Portrait string
	Label    *Label
	Choices  []string
	Selected int  // 当前高亮的选项
	Waiting  bool // 当前行已显示完，显示继续提示
	AutoPlay bool
	Finished bool
}

// DialogueBox 屏幕底部的对话框
type DialogueBox struct {
	face  *text.GoTextFace
	theme Theme
}

// NewDialogueBox 创建对话框
func NewDialogueBox(face *text.GoTextFace, theme Theme) *DialogueBox {
	return &DialogueBox{face: face, theme: theme}
}

// Bounds 对话框区域
func (b *DialogueBox) Bounds() (x, y, w, h float64) {
	return 0, ScreenHeight - b.theme.BoxHeight, ScreenWidth, b.theme.BoxHeight
}

// ChoiceAt 返回屏幕坐标处的选项序号，没有则返回 -1
func (b *DialogueBox) ChoiceAt(state BoxState, px, py int) int {
	for i := range state.Choices {
		x, y, w, h := b.choiceRect(state, i)
		if float64(px) >= x && float64(px) < x+w && float64(py) >= y && float64(py) < y+h {
			return i
		}
	}
	return -1
}

// Draw 绘制对话框
func (b *DialogueBox) Draw(screen *ebiten.Image, state BoxState) {
	t := b.theme
	x, y, w, h := b.Bounds()
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), t.BoxColor, true)

	textX := x + t.Padding
	textY := y + t.Padding

	if state.Speaker != "" {
		speaker := state.Speaker
		if state.Portrait != "" {
			speaker += "  [" + state.Portrait + "]"
		}
		b.drawText(screen, speaker, textX, textY, t.SpeakerColor, 1)
		textY += t.LineHeight
	}

	if state.Label != nil {
		lines := utils.WrapText(state.Label.Text(), FaceMeasure(b.face), w-2*t.Padding)
		for _, line := range lines {
			b.drawText(screen, line, textX, textY, t.TextColor, state.Label.Alpha())
			textY += t.LineHeight
		}
	}

	for i, choice := range state.Choices {
		cx, cy, cw, ch := b.choiceRect(state, i)
		if i == state.Selected {
			vector.DrawFilledRect(screen, float32(cx), float32(cy), float32(cw), float32(ch), t.Highlight, true)
		}
		b.drawText(screen, choice, cx+8, cy+2, t.ChoiceColor, 1)
	}

	hint := ""
	switch {
	case state.Finished:
		hint = "- The End -  (R to restart)"
	case state.Waiting:
		hint = "Click to continue"
	}
	if state.AutoPlay {
		if hint != "" {
			hint += "  "
		}
		hint += "[AUTO]"
	}
	if hint != "" {
		hw := FaceMeasure(b.face)(hint)
		b.drawText(screen, hint, x+w-t.Padding-hw, y+h-t.Padding-t.FontSize, t.HintColor, 1)
	}
}

// choiceRect 选项按钮区域，从对话框底部向上排列
func (b *DialogueBox) choiceRect(state BoxState, i int) (x, y, w, h float64) {
	t := b.theme
	bx, by, bw, bh := b.Bounds()
	n := len(state.Choices)
	h = t.LineHeight
	y = by + bh - t.Padding - float64(n-i)*h
	return bx + t.Padding, y, bw - 2*t.Padding, h
}

func (b *DialogueBox) drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color, alpha float64) {
	if b.face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, s, b.face, op)
}
