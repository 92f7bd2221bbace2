package reveal

// MinFadeDuration 淡入时长下限（秒）
const MinFadeDuration = 0.01

// FadeEffect 整行淡入效果
//
// 首个 Tick 立即写入完整文本并把透明度置 0，之后按累计时间线性插值到 1。
// 取消时直接把透明度置为 1，不再继续渐变。
// Sink 不支持 AlphaSink 时退化为只写文本并立即结束。
type FadeEffect struct {
	state

	line     string
	sink     TextSink
	alpha    AlphaSink
	duration float64

	started bool
	elapsed float64
}

// NewFadeEffect 创建淡入效果，duration 小于下限时使用下限
func NewFadeEffect(line string, sink TextSink, duration float64) *FadeEffect {
	if duration < MinFadeDuration {
		duration = MinFadeDuration
	}
	e := &FadeEffect{
		line:     line,
		sink:     sink,
		duration: duration,
	}
	if a, ok := sink.(AlphaSink); ok {
		e.alpha = a
	}
	return e
}

// Line 返回完整文本
func (e *FadeEffect) Line() string {
	return e.line
}

// Alpha 返回当前透明度 [0, 1]
func (e *FadeEffect) Alpha() float64 {
	if e.done {
		return 1
	}
	a := e.elapsed / e.duration
	if a > 1 {
		return 1
	}
	return a
}

// Tick 推进淡入效果
func (e *FadeEffect) Tick(dt float64) Status {
	if e.done {
		return StatusDone
	}
	if e.sink == nil {
		e.done = true
		return StatusDone
	}
	if e.cancelled {
		e.CompleteImmediately()
		return StatusDone
	}
	if e.alpha == nil {
		e.CompleteImmediately()
		return StatusDone
	}

	if !e.started {
		e.started = true
		e.sink.SetText(e.line)
		e.alpha.SetAlpha(0)
	}
	if dt > 0 {
		e.elapsed += dt
	}

	a := e.elapsed / e.duration
	if a >= 1 {
		e.CompleteImmediately()
		return StatusDone
	}
	e.alpha.SetAlpha(a)
	return StatusInProgress
}

// CompleteImmediately 立即显示完整文本并置为完全不透明
func (e *FadeEffect) CompleteImmediately() {
	if e.done {
		return
	}
	e.started = true
	e.elapsed = e.duration
	e.done = true
	if e.sink != nil {
		e.sink.SetText(e.line)
	}
	if e.alpha != nil {
		e.alpha.SetAlpha(1)
	}
}
