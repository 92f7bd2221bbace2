package reveal

import "strings"

// MinWordsPerSecond 逐词速率下限
const MinWordsPerSecond = 0.1

// WordEffect 逐词显示效果
// 与打字效果相同的累加器模式，但单位是整词，且没有停顿回调。
// 富文本标记需要由调用方预先切分到 words 中，本效果不识别标记。
type WordEffect struct {
	state

	line  string
	words []string
	sink  TextSink
	rate  RateFunc

	started     bool
	revealed    int
	accumulator float64
	buffer      strings.Builder
}

// NewWordEffect 创建逐词效果
// words 为 nil 时使用 SplitWords(line) 切分
func NewWordEffect(line string, words []string, sink TextSink, rate RateFunc) *WordEffect {
	if words == nil {
		words = SplitWords(line)
	}
	return &WordEffect{
		line:  line,
		words: words,
		sink:  sink,
		rate:  rate,
	}
}

// SplitWords 按空格切分，丢弃空词
func SplitWords(line string) []string {
	parts := strings.Split(line, " ")
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// Line 返回完整文本
func (e *WordEffect) Line() string {
	return e.line
}

// Progress 返回已显示词比例 [0, 1]
func (e *WordEffect) Progress() float64 {
	if len(e.words) == 0 || e.done {
		return 1
	}
	return float64(e.revealed) / float64(len(e.words))
}

// Tick 推进逐词效果
func (e *WordEffect) Tick(dt float64) Status {
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

	if !e.started {
		e.started = true
		e.sink.SetText("")
	}
	if dt < 0 {
		dt = 0
	}

	total := len(e.words)
	if e.revealed < total {
		e.accumulator += dt * floorRate(e.rate, MinWordsPerSecond, MinWordsPerSecond)
	}

	for e.accumulator >= 1 && e.revealed < total {
		e.accumulator -= 1
		// 每步追加一个词和分隔空格
		e.buffer.WriteString(e.words[e.revealed])
		e.buffer.WriteByte(' ')
		e.revealed++
		e.sink.SetText(e.buffer.String())
	}

	if e.revealed >= total {
		// 终态写入原始整行（保留原文中的多余空格）
		e.CompleteImmediately()
		return StatusDone
	}
	return StatusInProgress
}

// CompleteImmediately 立即显示完整文本
func (e *WordEffect) CompleteImmediately() {
	if e.done {
		return
	}
	e.started = true
	e.revealed = len(e.words)
	e.accumulator = 0
	e.done = true
	if e.sink != nil {
		e.sink.SetText(e.line)
	}
}
