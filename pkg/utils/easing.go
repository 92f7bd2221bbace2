package utils

import "math"

// 缓动函数接受进度 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]

// EaseOutCubic 三次方缓出，开始快、结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将值限制在 [0, 1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Tween 按帧推进的补间动画
// 用于面板滑入、滑出这类不影响逻辑状态的过渡
type Tween struct {
	Duration float64              // 持续时间（秒），非正数表示立即完成
	Ease     func(float64) float64 // 缓动函数，nil 表示线性
	elapsed  float64
	reverse  bool
}

// NewTween 创建补间
func NewTween(duration float64, ease func(float64) float64) *Tween {
	return &Tween{Duration: duration, Ease: ease}
}

// Forward 从当前位置向终点播放
func (tw *Tween) Forward() {
	tw.reverse = false
}

// Backward 从当前位置向起点播放
func (tw *Tween) Backward() {
	tw.reverse = true
}

// Tick 推进 dt 秒
func (tw *Tween) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if tw.reverse {
		tw.elapsed = math.Max(0, tw.elapsed-dt)
	} else {
		tw.elapsed = math.Min(tw.Duration, tw.elapsed+dt)
	}
}

// Progress 返回线性进度 [0, 1]
func (tw *Tween) Progress() float64 {
	if tw.Duration <= 0 {
		if tw.reverse {
			return 0
		}
		return 1
	}
	return Clamp01(tw.elapsed / tw.Duration)
}

// Value 返回缓动后的进度
func (tw *Tween) Value() float64 {
	p := tw.Progress()
	if tw.Ease == nil {
		return p
	}
	return tw.Ease(p)
}

// Settled 是否已停在终点（正向）或起点（反向）
func (tw *Tween) Settled() bool {
	p := tw.Progress()
	if tw.reverse {
		return p == 0
	}
	return p == 1
}
