package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/logger"
)

// 文字速度倍率范围
const (
	MinTextSpeed     = 0.25
	MaxTextSpeed     = 4.0
	DefaultTextSpeed = 1.0
)

// DialogueSettings 玩家可修改的对话设置
// 覆盖在配置文件之上，随存档目录持久化
type DialogueSettings struct {
	TextSpeed             float64           `yaml:"textSpeed"`             // 文字速度倍率 0.25 ~ 4.0
	RevealMode            config.RevealMode `yaml:"revealMode"`            // 文字显示方式，为空时沿用配置文件
	AutoplayEnabled       bool              `yaml:"autoplayEnabled"`       // 启动时是否开启自动播放
	ResumeAutoplayOnClose bool              `yaml:"resumeAutoplayOnClose"` // 关闭历史面板时恢复自动播放
	Fullscreen            bool              `yaml:"fullscreen"`            // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *DialogueSettings {
	return &DialogueSettings{
		TextSpeed:             DefaultTextSpeed,
		AutoplayEnabled:       false,
		ResumeAutoplayOnClose: true,
		Fullscreen:            false,
	}
}

// ApplyTo 将设置覆盖到对话配置上
func (s *DialogueSettings) ApplyTo(cfg *config.DialogueConfig) {
	if cfg == nil {
		return
	}
	if s.RevealMode != "" {
		cfg.Reveal.Mode = s.RevealMode
	}
	cfg.Playback.StartWithAutoplay = s.AutoplayEnabled
	cfg.History.ResumeAutoplayOnClose = s.ResumeAutoplayOnClose
}

// SettingsManager 设置管理器
// 负责对话设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *DialogueSettings
	log          *logger.Entry
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "dialogue"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 加载失败不是致命错误，记录警告后使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		log:          logger.Named("SettingsManager"),
	}

	if err := sm.Load(); err != nil {
		sm.log.WithError(err).Warn("Failed to load settings, using defaults")
	}
	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为底，旧版本存档缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.TextSpeed = clampTextSpeed(loaded.TextSpeed)
	if loaded.RevealMode != "" && !loaded.RevealMode.Valid() {
		loaded.RevealMode = ""
	}

	sm.settings = loaded
	sm.log.Debug("Settings loaded")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.log.Debug("Settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *DialogueSettings {
	return sm.settings
}

// SetTextSpeed 设置文字速度倍率
//
// 倍率会被限制在 MinTextSpeed ~ MaxTextSpeed 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetTextSpeed(speed float64) {
	sm.settings.TextSpeed = clampTextSpeed(speed)
}

// SetRevealMode 设置文字显示方式，未知模式返回错误
func (sm *SettingsManager) SetRevealMode(mode config.RevealMode) error {
	if mode != "" && !mode.Valid() {
		return fmt.Errorf("unknown reveal mode %q", mode)
	}
	sm.settings.RevealMode = mode
	return nil
}

// SetAutoplayEnabled 设置启动时的自动播放
func (sm *SettingsManager) SetAutoplayEnabled(enabled bool) {
	sm.settings.AutoplayEnabled = enabled
}

// SetResumeAutoplayOnClose 设置关闭历史面板时是否恢复自动播放
func (sm *SettingsManager) SetResumeAutoplayOnClose(enabled bool) {
	sm.settings.ResumeAutoplayOnClose = enabled
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// clampTextSpeed 将倍率限制在合法范围内，非正数视为默认值
func clampTextSpeed(speed float64) float64 {
	if speed <= 0 {
		return DefaultTextSpeed
	}
	if speed < MinTextSpeed {
		return MinTextSpeed
	}
	if speed > MaxTextSpeed {
		return MaxTextSpeed
	}
	return speed
}
