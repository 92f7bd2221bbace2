// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// IsPointerJustPressed 检查是否刚刚按下指针（触摸或鼠标左键）
// 返回是否按下以及按下位置
func IsPointerJustPressed() (bool, int, int) {
	// 优先检查触摸（移动设备）
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	return false, 0, 0
}

// WheelSteps 返回本帧鼠标滚轮的整数步数，向上为正
func WheelSteps() int {
	_, dy := ebiten.Wheel()
	switch {
	case dy > 0:
		return 1
	case dy < 0:
		return -1
	}
	return 0
}

// IsAnyKeyJustPressed 任一按键本帧刚按下
func IsAnyKeyJustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
