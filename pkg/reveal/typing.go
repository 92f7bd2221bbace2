package reveal

import "github.com/rivo/uniseg"

// MinCharsPerSecond 打字速率下限，防止速率为 0 时卡死
const MinCharsPerSecond = 1.0

// TypingEffect 逐字打字效果
//
// 算法：
//   - 维护一个小数累加器，每个 Tick 累加 dt * charsPerSecond
//   - 累加器 >= 1 时消耗 1，多显示一个字符（Sink 显示该长度的前缀）
//   - 每显示一个字符后询问 PauseFunc，返回正数则停顿相应秒数（可被取消）
//   - 速率较高（快进）时一个 Tick 内可显示多个字符
//
// 字符按 Unicode 字形簇计数，组合字符与 emoji 作为整体显示。
type TypingEffect struct {
	state

	line     string
	clusters []string // 字形簇
	ends     []int    // 每个字形簇在 line 中的结束字节偏移

	sink  TextSink
	rate  RateFunc
	pause PauseFunc

	started     bool
	revealed    int
	accumulator float64
	pauseLeft   float64
}

// NewTypingEffect 创建打字效果
//
// 参数：
//   - line: 完整文本
//   - sink: 显示目标，可为 nil（无界面环境下效果不做任何工作直接结束）
//   - rate: 字符/秒速率回调，可为 nil（使用下限速率）
//   - pause: 标点停顿回调，可为 nil
func NewTypingEffect(line string, sink TextSink, rate RateFunc, pause PauseFunc) *TypingEffect {
	e := &TypingEffect{
		line:  line,
		sink:  sink,
		rate:  rate,
		pause: pause,
	}

	g := uniseg.NewGraphemes(line)
	for g.Next() {
		_, to := g.Positions()
		e.clusters = append(e.clusters, g.Str())
		e.ends = append(e.ends, to)
	}
	return e
}

// Line 返回完整文本
func (e *TypingEffect) Line() string {
	return e.line
}

// Progress 返回已显示字符比例 [0, 1]
func (e *TypingEffect) Progress() float64 {
	if len(e.clusters) == 0 || e.done {
		return 1
	}
	return float64(e.revealed) / float64(len(e.clusters))
}

// Tick 推进打字效果
func (e *TypingEffect) Tick(dt float64) Status {
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
		if len(e.clusters) == 0 {
			e.done = true
			return StatusDone
		}
	}

	if dt < 0 {
		dt = 0
	}

	// 停顿期间只消耗时间，剩余时间继续用于累加
	if e.pauseLeft > 0 {
		e.pauseLeft -= dt
		if e.pauseLeft > 0 {
			return StatusInProgress
		}
		dt = -e.pauseLeft
		e.pauseLeft = 0
	}

	total := len(e.clusters)
	if e.revealed < total {
		e.accumulator += dt * floorRate(e.rate, MinCharsPerSecond, MinCharsPerSecond)
	}

	for e.accumulator >= 1 && e.revealed < total {
		e.accumulator -= 1
		e.revealed++
		e.sink.SetText(e.line[:e.ends[e.revealed-1]])

		if e.pause != nil {
			if p := e.pause(e.clusters[e.revealed-1]); p > 0 {
				e.pauseLeft = p
				return StatusInProgress
			}
		}
	}

	if e.revealed >= total {
		e.done = true
		return StatusDone
	}
	return StatusInProgress
}

// CompleteImmediately 立即显示完整文本
func (e *TypingEffect) CompleteImmediately() {
	if e.done {
		return
	}
	e.started = true
	e.revealed = len(e.clusters)
	e.pauseLeft = 0
	e.accumulator = 0
	e.done = true
	if e.sink != nil {
		e.sink.SetText(e.line)
	}
}
