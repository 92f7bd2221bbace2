package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/dialogue/pkg/utils"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 800
	ScreenHeight = 600
)

// Theme 颜色与布局参数
type Theme struct {
	FontSize    float64
	LineHeight  float64
	Padding     float64
	BoxHeight   float64 // 对话框高度
	PanelMargin float64 // 历史面板与屏幕边缘的距离

	Background   color.Color
	BoxColor     color.Color
	PanelColor   color.Color
	TextColor    color.Color
	SpeakerColor color.Color
	ChoiceColor  color.Color
	HintColor    color.Color
	Highlight    color.Color
}

// DefaultTheme 默认主题
func DefaultTheme() Theme {
	return Theme{
		FontSize:    20,
		LineHeight:  28,
		Padding:     20,
		BoxHeight:   180,
		PanelMargin: 40,

		Background:   color.RGBA{R: 60, G: 90, B: 60, A: 255},
		BoxColor:     color.RGBA{R: 20, G: 20, B: 30, A: 220},
		PanelColor:   color.RGBA{R: 10, G: 10, B: 20, A: 235},
		TextColor:    color.White,
		SpeakerColor: color.RGBA{R: 255, G: 220, B: 120, A: 255},
		ChoiceColor:  color.RGBA{R: 140, G: 200, B: 255, A: 255},
		HintColor:    color.RGBA{R: 180, G: 180, B: 180, A: 255},
		Highlight:    color.RGBA{R: 255, G: 255, B: 255, A: 40},
	}
}

// LoadFace 用内置的 Go Regular 字体创建字号为 size 的字体
func LoadFace(size float64) (*text.GoTextFace, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source: %w", err)
	}
	return &text.GoTextFace{Source: source, Size: size}, nil
}

// FaceMeasure 返回按字体测量像素宽度的函数
func FaceMeasure(face *text.GoTextFace) utils.MeasureFunc {
	return func(s string) float64 {
		if s == "" || face == nil {
			return 0
		}
		width, _ := text.Measure(s, face, 0)
		return width
	}
}
