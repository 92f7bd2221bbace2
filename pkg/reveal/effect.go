// Package reveal 提供对话文字的逐步显示效果
//
// 每一行对话创建一个 Effect 实例，由播放驱动每帧调用 Tick(dt) 推进。
// 效果本身不计时、不启动协程：所有进度都来自外部传入的 dt。
//
// 取消语义：
//   - Cancel() 只设置标志，不写入 Sink，可在任意输入回调中安全调用
//   - 下一次 Tick 观察到取消后，执行一次终态写入（整行文字 / 完全不透明）并结束
//   - CompleteImmediately() 同步写入终态，用于"跳过本行"
package reveal

// Status 单次 Tick 后的效果状态
type Status int

const (
	// StatusInProgress 效果仍在进行，需要继续 Tick
	StatusInProgress Status = iota
	// StatusDone 效果已结束（自然完成或被取消）
	StatusDone
)

// String 返回 Status 的字符串表示
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "InProgress"
	case StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// TextSink 文字显示目标（如对话框标签）
type TextSink interface {
	SetText(text string)
}

// AlphaSink 可选能力：支持透明度的显示目标
// 淡入效果需要 Sink 同时实现 TextSink 与 AlphaSink
type AlphaSink interface {
	SetAlpha(alpha float64)
}

// Effect 文字显示效果的统一契约
type Effect interface {
	// Tick 推进一个时间步（秒），返回推进后的状态
	Tick(dt float64) Status

	// Cancel 标记取消（幂等），不直接修改 Sink
	Cancel()

	// IsCancelled 返回是否已被取消
	IsCancelled() bool

	// CompleteImmediately 立即把 Sink 写成终态（幂等）
	CompleteImmediately()

	// Done 返回效果是否已到达终态
	Done() bool

	// Line 返回该效果显示的完整文本
	Line() string
}

// RateFunc 返回当前速率（单位/秒），每个 Tick 重新读取，
// 因此快进倍率等设置会实时生效
type RateFunc func() float64

// PauseFunc 在显示一个字符后调用，返回该字符后的停顿时长（秒），
// 返回 0 或负数表示不停顿
type PauseFunc func(grapheme string) float64

// state 各效果共享的取消/完成标志
type state struct {
	cancelled bool
	done      bool
}

func (s *state) Cancel() {
	s.cancelled = true
}

func (s *state) IsCancelled() bool {
	return s.cancelled
}

func (s *state) Done() bool {
	return s.done
}

// Drive 以固定步长驱动效果直到结束，最多 maxTicks 次
// 返回实际调用 Tick 的次数；主要用于无界面宿主和测试
func Drive(e Effect, dt float64, maxTicks int) int {
	ticks := 0
	for ticks < maxTicks && !e.Done() {
		ticks++
		if e.Tick(dt) == StatusDone {
			break
		}
	}
	return ticks
}

func floorRate(rate RateFunc, fallback, min float64) float64 {
	r := fallback
	if rate != nil {
		r = rate()
	}
	if r < min {
		return min
	}
	return r
}
