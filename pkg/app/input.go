package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/dialogue/pkg/utils"
)

// ActionKind 输入动作类型
type ActionKind int

const (
	ActionConfirm          ActionKind = iota // 空格/回车：继续或确认选项
	ActionClick                              // 鼠标点击或触摸
	ActionChoose                             // 数字键直接选择
	ActionSelectPrev                         // 上移选项
	ActionSelectNext                         // 下移选项
	ActionToggleHistory                      // H
	ActionCloseHistory                       // Esc
	ActionScroll                             // 滚轮或方向键滚动历史
	ActionToggleAutoPlay                     // A
	ActionSpeedUp                            // +
	ActionSpeedDown                          // -
	ActionCycleMode                          // M
	ActionRestart                            // R
	ActionCopyTranscript                     // C
	ActionToggleFullscreen                   // F11
)

// Action 一个输入动作
type Action struct {
	Kind  ActionKind
	Index int // ActionChoose 的选项序号，或 ActionScroll 的步数
	X, Y  int // ActionClick 的位置
}

// InputSource 每帧产生输入动作
type InputSource interface {
	Poll() []Action
	// FastForwardHeld 快进键是否按住
	FastForwardHeld() bool
}

// ebitenInput 从 Ebitengine 读取键盘、鼠标和触摸输入
type ebitenInput struct{}

var numberKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

func (ebitenInput) Poll() []Action {
	var acts []Action
	push := func(k ActionKind) { acts = append(acts, Action{Kind: k}) }

	if utils.IsAnyKeyJustPressed(ebiten.KeySpace, ebiten.KeyEnter) {
		push(ActionConfirm)
	}
	if pressed, x, y := utils.IsPointerJustPressed(); pressed {
		acts = append(acts, Action{Kind: ActionClick, X: x, Y: y})
	}
	for i, k := range numberKeys {
		if inpututil.IsKeyJustPressed(k) {
			acts = append(acts, Action{Kind: ActionChoose, Index: i})
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		push(ActionSelectPrev)
		acts = append(acts, Action{Kind: ActionScroll, Index: 1})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		push(ActionSelectNext)
		acts = append(acts, Action{Kind: ActionScroll, Index: -1})
	}
	if steps := utils.WheelSteps(); steps != 0 {
		acts = append(acts, Action{Kind: ActionScroll, Index: steps})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		push(ActionToggleHistory)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		push(ActionCloseHistory)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		push(ActionToggleAutoPlay)
	}
	if utils.IsAnyKeyJustPressed(ebiten.KeyEqual, ebiten.KeyNumpadAdd) {
		push(ActionSpeedUp)
	}
	if utils.IsAnyKeyJustPressed(ebiten.KeyMinus, ebiten.KeyNumpadSubtract) {
		push(ActionSpeedDown)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		push(ActionCycleMode)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		push(ActionRestart)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		push(ActionCopyTranscript)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		push(ActionToggleFullscreen)
	}
	return acts
}

func (ebitenInput) FastForwardHeld() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl)
}
