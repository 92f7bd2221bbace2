package reveal

import (
	"github.com/decker502/dialogue/pkg/config"
)

// Pace 提供实时的播放节奏状态（通常由播放驱动实现）
type Pace interface {
	// FastForward 返回当前是否处于快进状态
	FastForward() bool
}

// Factory 根据配置为每一行对话创建显示效果
//
// 速率回调在每个 Tick 读取 Factory 当前的配置与 Pace，
// 因此修改速度设置或按下快进键会立即作用于正在显示的行。
type Factory struct {
	cfg   config.RevealConfig
	pace  Pace
	scale float64
}

// NewFactory 创建效果工厂，pace 可为 nil（永不快进）
func NewFactory(cfg config.RevealConfig, pace Pace) *Factory {
	return &Factory{cfg: cfg, pace: pace, scale: 1}
}

// SetConfig 替换显示配置，对已创建的效果实时生效
func (f *Factory) SetConfig(cfg config.RevealConfig) {
	f.cfg = cfg
}

// Config 返回当前显示配置
func (f *Factory) Config() config.RevealConfig {
	return f.cfg
}

// SetSpeedScale 设置玩家的文字速度倍率（设置界面中的"文字速度"）
func (f *Factory) SetSpeedScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	f.scale = scale
}

// Create 按配置中的模式创建效果
func (f *Factory) Create(line string, sink TextSink) Effect {
	return f.CreateMode(f.cfg.Mode, line, sink)
}

// CreateMode 按指定模式创建效果，未知模式退化为无动画
func (f *Factory) CreateMode(mode config.RevealMode, line string, sink TextSink) Effect {
	switch mode {
	case config.RevealTyping:
		return NewTypingEffect(line, sink, f.CharsPerSecond, f.pauseFor)
	case config.RevealWord:
		return NewWordEffect(line, nil, sink, f.WordsPerSecond)
	case config.RevealFade:
		return NewFadeEffect(line, sink, f.cfg.FadeDuration)
	default:
		return NewNoneEffect(line, sink)
	}
}

// CharsPerSecond 当前打字速率（含快进倍率）
func (f *Factory) CharsPerSecond() float64 {
	return f.cfg.CharsPerSecond * f.scale * f.multiplier()
}

// WordsPerSecond 当前逐词速率（含快进倍率）
func (f *Factory) WordsPerSecond() float64 {
	return f.cfg.WordsPerSecond * f.scale * f.multiplier()
}

// pauseFor 快进时标点停顿按倍率缩短
func (f *Factory) pauseFor(grapheme string) float64 {
	return PunctuationPauses(f.cfg.Pauses)(grapheme) / f.multiplier()
}

func (f *Factory) multiplier() float64 {
	if f.pace != nil && f.pace.FastForward() && f.cfg.FastForwardMultiplier > 1 {
		return f.cfg.FastForwardMultiplier
	}
	return 1
}
