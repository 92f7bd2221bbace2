package reveal

// NoneEffect 无动画：首个 Tick 即显示整行
type NoneEffect struct {
	state

	line string
	sink TextSink
}

// NewNoneEffect 创建无动画效果
func NewNoneEffect(line string, sink TextSink) *NoneEffect {
	return &NoneEffect{line: line, sink: sink}
}

// Line 返回完整文本
func (e *NoneEffect) Line() string {
	return e.line
}

// Tick 写入整行并结束
func (e *NoneEffect) Tick(dt float64) Status {
	if !e.done {
		e.CompleteImmediately()
	}
	return StatusDone
}

// CompleteImmediately 写入整行
func (e *NoneEffect) CompleteImmediately() {
	if e.done {
		return
	}
	e.done = true
	if e.sink == nil {
		return
	}
	e.sink.SetText(e.line)
	if a, ok := e.sink.(AlphaSink); ok {
		a.SetAlpha(1)
	}
}
