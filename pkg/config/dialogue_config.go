package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// RevealMode 文字显示效果类型
type RevealMode string

const (
	// RevealTyping 逐字打字效果（支持标点停顿）
	RevealTyping RevealMode = "typing"
	// RevealWord 逐词显示效果
	RevealWord RevealMode = "word"
	// RevealFade 整行淡入效果
	RevealFade RevealMode = "fade"
	// RevealNone 立即显示整行
	RevealNone RevealMode = "none"
)

// Valid 是否为已知的显示模式
func (m RevealMode) Valid() bool {
	switch m {
	case RevealTyping, RevealWord, RevealFade, RevealNone:
		return true
	}
	return false
}

// 历史记录容量范围
const (
	MinHistoryEntries     = 50
	MaxHistoryEntries     = 2000
	DefaultHistoryEntries = 200
)

// 显示速度默认值
const (
	DefaultCharsPerSecond        = 40.0
	DefaultFastForwardMultiplier = 4.0
	DefaultWordsPerSecond        = 6.0
	DefaultFadeDuration          = 0.35

	DefaultCommaPause       = 0.08
	DefaultPeriodPause      = 0.16
	DefaultQuestionPause    = 0.18
	DefaultExclamationPause = 0.18

	DefaultAutoplayDelay   = 1.2
	DefaultAutoplayPerChar = 0.03

	// DefaultPlaceholderSpeaker 未指定说话人时历史记录使用的名称
	DefaultPlaceholderSpeaker = "Narrator"
)

// ErrUnknownFormat 配置文件扩展名不受支持
var ErrUnknownFormat = errors.New("unknown config format")

// PunctuationPauses 标点停顿时长（秒）
type PunctuationPauses struct {
	Comma       float64 `yaml:"comma" toml:"comma"`             // 逗号
	Period      float64 `yaml:"period" toml:"period"`           // 句号
	Question    float64 `yaml:"question" toml:"question"`       // 问号
	Exclamation float64 `yaml:"exclamation" toml:"exclamation"` // 感叹号
}

// RevealConfig 文字显示效果配置
type RevealConfig struct {
	Mode                  RevealMode        `yaml:"mode" toml:"mode"`
	CharsPerSecond        float64           `yaml:"charsPerSecond" toml:"charsPerSecond"`
	FastForwardMultiplier float64           `yaml:"fastForwardMultiplier" toml:"fastForwardMultiplier"`
	Pauses                PunctuationPauses `yaml:"pauses" toml:"pauses"`
	WordsPerSecond        float64           `yaml:"wordsPerSecond" toml:"wordsPerSecond"`
	FadeDuration          float64           `yaml:"fadeDuration" toml:"fadeDuration"`
}

// HistoryConfig 历史记录面板配置
type HistoryConfig struct {
	MaxEntries            int    `yaml:"maxEntries" toml:"maxEntries"`
	ResumeAutoplayOnClose bool   `yaml:"resumeAutoplayOnClose" toml:"resumeAutoplayOnClose"`
	PlaceholderSpeaker    string `yaml:"placeholderSpeaker" toml:"placeholderSpeaker"`
}

// PlaybackConfig 播放驱动配置
type PlaybackConfig struct {
	// AutoplayDelay 自动播放时，整行显示完成后的基础等待时间（秒）
	AutoplayDelay float64 `yaml:"autoplayDelay" toml:"autoplayDelay"`
	// AutoplayPerChar 自动播放时，每个字符额外等待的时间（秒）
	AutoplayPerChar float64 `yaml:"autoplayPerChar" toml:"autoplayPerChar"`
	// StartWithAutoplay 启动时是否开启自动播放
	StartWithAutoplay bool `yaml:"startWithAutoplay" toml:"startWithAutoplay"`
}

// DialogueConfig 对话引擎完整配置
type DialogueConfig struct {
	History  HistoryConfig  `yaml:"history" toml:"history"`
	Reveal   RevealConfig   `yaml:"reveal" toml:"reveal"`
	Playback PlaybackConfig `yaml:"playback" toml:"playback"`
}

// Default 返回默认配置
func Default() *DialogueConfig {
	return &DialogueConfig{
		History: HistoryConfig{
			MaxEntries:            DefaultHistoryEntries,
			ResumeAutoplayOnClose: true,
			PlaceholderSpeaker:    DefaultPlaceholderSpeaker,
		},
		Reveal: RevealConfig{
			Mode:                  RevealTyping,
			CharsPerSecond:        DefaultCharsPerSecond,
			FastForwardMultiplier: DefaultFastForwardMultiplier,
			Pauses: PunctuationPauses{
				Comma:       DefaultCommaPause,
				Period:      DefaultPeriodPause,
				Question:    DefaultQuestionPause,
				Exclamation: DefaultExclamationPause,
			},
			WordsPerSecond: DefaultWordsPerSecond,
			FadeDuration:   DefaultFadeDuration,
		},
		Playback: PlaybackConfig{
			AutoplayDelay:   DefaultAutoplayDelay,
			AutoplayPerChar: DefaultAutoplayPerChar,
		},
	}
}

// Load 从文件加载对话配置
//
// 根据扩展名选择格式：.yaml / .yml 使用 YAML，.toml 使用 TOML。
// 文件中未出现的字段保留默认值，加载后会进行范围修正。
//
// 参数：
//   - path: 配置文件路径
//
// 返回：
//   - *DialogueConfig: 解析并修正后的配置
//   - error: 读取、解析或校验失败时返回错误
func Load(path string) (*DialogueConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue config %s: %w", path, err)
	}

	cfg, err := LoadBytes(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("invalid dialogue config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes 从内存数据解析对话配置
// format 可为 "yaml"、"yml"、"toml"（允许带前导点）
func LoadBytes(data []byte, format string) (*DialogueConfig, error) {
	cfg := Default()

	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yaml", "yml":
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
		}
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize 将越界数值修正到安全范围内
//
// 越界值会被修正而不是拒绝：
//   - maxEntries 限制在 [50, 2000]
//   - 负数停顿修正为 0
//   - 非正速率恢复为默认值
//   - 空的占位说话人恢复为默认值
func (c *DialogueConfig) Normalize() {
	c.History.MaxEntries = ClampHistoryEntries(c.History.MaxEntries)
	if strings.TrimSpace(c.History.PlaceholderSpeaker) == "" {
		c.History.PlaceholderSpeaker = DefaultPlaceholderSpeaker
	}

	r := &c.Reveal
	if r.Mode == "" {
		r.Mode = RevealTyping
	}
	r.Mode = RevealMode(strings.ToLower(string(r.Mode)))
	if r.CharsPerSecond <= 0 {
		r.CharsPerSecond = DefaultCharsPerSecond
	}
	if r.FastForwardMultiplier < 1 {
		r.FastForwardMultiplier = 1
	}
	if r.WordsPerSecond <= 0 {
		r.WordsPerSecond = DefaultWordsPerSecond
	}
	if r.FadeDuration <= 0 {
		r.FadeDuration = DefaultFadeDuration
	}
	r.Pauses.Comma = nonNegative(r.Pauses.Comma)
	r.Pauses.Period = nonNegative(r.Pauses.Period)
	r.Pauses.Question = nonNegative(r.Pauses.Question)
	r.Pauses.Exclamation = nonNegative(r.Pauses.Exclamation)

	c.Playback.AutoplayDelay = nonNegative(c.Playback.AutoplayDelay)
	c.Playback.AutoplayPerChar = nonNegative(c.Playback.AutoplayPerChar)
}

// Validate 校验无法自动修正的字段
func (c *DialogueConfig) Validate() error {
	if !c.Reveal.Mode.Valid() {
		return fmt.Errorf("reveal.mode: unknown mode %q", c.Reveal.Mode)
	}
	return nil
}

// ClampHistoryEntries 将历史记录容量限制在 [MinHistoryEntries, MaxHistoryEntries]
func ClampHistoryEntries(n int) int {
	if n < MinHistoryEntries {
		return MinHistoryEntries
	}
	if n > MaxHistoryEntries {
		return MaxHistoryEntries
	}
	return n
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
