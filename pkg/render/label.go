// Package render 用 Ebitengine 绘制对话框和历史面板
package render

// Label 文本标签，作为显示效果的输出目标
//
// 同时实现 reveal.TextSink 和 reveal.AlphaSink，
// 绘制时由 DialogueBox 读取当前文本与透明度。
type Label struct {
	text  string
	alpha float64
}

// NewLabel 创建完全不透明的空标签
func NewLabel() *Label {
	return &Label{alpha: 1}
}

// SetText 替换显示文本
func (l *Label) SetText(text string) {
	l.text = text
}

// SetAlpha 设置透明度，限制在 [0, 1]
func (l *Label) SetAlpha(alpha float64) {
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	l.alpha = alpha
}

// Text 当前文本
func (l *Label) Text() string {
	return l.text
}

// Alpha 当前透明度
func (l *Label) Alpha() float64 {
	return l.alpha
}

// Clear 清空文本并恢复不透明
func (l *Label) Clear() {
	l.text = ""
	l.alpha = 1
}
