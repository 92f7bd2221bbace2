package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/dialogue/pkg/config"
)

// openTestGdata 在临时 HOME 下创建 gdata manager
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.TextSpeed != DefaultTextSpeed {
		t.Errorf("TextSpeed: got %v, want %v", settings.TextSpeed, DefaultTextSpeed)
	}
	if settings.RevealMode != "" {
		t.Errorf("RevealMode: got %q, want empty", settings.RevealMode)
	}
	if settings.AutoplayEnabled {
		t.Error("AutoplayEnabled: got true, want false")
	}
	if !settings.ResumeAutoplayOnClose {
		t.Error("ResumeAutoplayOnClose: got false, want true")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)
	if sm.GetSettings() == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}

	sm.SetTextSpeed(2)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got: %v", err)
	}
	if sm.GetSettings().TextSpeed != DefaultTextSpeed {
		t.Errorf("After Load() in degraded mode, TextSpeed: got %v", sm.GetSettings().TextSpeed)
	}
}

// TestSettingsLoadSave 测试 Load() 和 Save() 功能
func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_dialogue_settings")

	sm1 := NewSettingsManager(gdataManager)
	sm1.SetTextSpeed(1.5)
	if err := sm1.SetRevealMode(config.RevealWord); err != nil {
		t.Fatalf("SetRevealMode() error: %v", err)
	}
	sm1.SetAutoplayEnabled(true)
	sm1.SetResumeAutoplayOnClose(false)
	sm1.SetFullscreen(true)

	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	settings := NewSettingsManager(gdataManager).GetSettings()
	if settings.TextSpeed != 1.5 {
		t.Errorf("Loaded TextSpeed: got %v, want 1.5", settings.TextSpeed)
	}
	if settings.RevealMode != config.RevealWord {
		t.Errorf("Loaded RevealMode: got %q", settings.RevealMode)
	}
	if !settings.AutoplayEnabled {
		t.Error("Loaded AutoplayEnabled: got false, want true")
	}
	if settings.ResumeAutoplayOnClose {
		t.Error("Loaded ResumeAutoplayOnClose: got true, want false")
	}
	if !settings.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
}

// TestSettingsLoadPartial 测试旧存档缺少字段时保持默认值
func TestSettingsLoadPartial(t *testing.T) {
	gdataManager := openTestGdata(t, "test_dialogue_settings_partial")
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("textSpeed: 9\nrevealMode: sparkle\n")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	settings := NewSettingsManager(gdataManager).GetSettings()
	if settings.TextSpeed != MaxTextSpeed {
		t.Errorf("TextSpeed should be clamped: got %v", settings.TextSpeed)
	}
	if settings.RevealMode != "" {
		t.Errorf("unknown RevealMode should be dropped: got %q", settings.RevealMode)
	}
	if !settings.ResumeAutoplayOnClose {
		t.Error("missing field should keep its default")
	}
}

// TestSetRevealMode 测试未知模式被拒绝
func TestSetRevealMode(t *testing.T) {
	sm := NewSettingsManager(nil)
	if err := sm.SetRevealMode("sparkle"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if err := sm.SetRevealMode(config.RevealFade); err != nil {
		t.Errorf("SetRevealMode(fade) error: %v", err)
	}
	if err := sm.SetRevealMode(""); err != nil {
		t.Errorf("empty mode should clear the override: %v", err)
	}
}

// TestClampTextSpeed 测试 clampTextSpeed 辅助函数
func TestClampTextSpeed(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{1.0, 1.0},
		{0.25, 0.25},
		{4.0, 4.0},
		{0.1, MinTextSpeed},
		{10, MaxTextSpeed},
		{0, DefaultTextSpeed},  // 非正数视为默认
		{-1, DefaultTextSpeed},
	}

	for _, tt := range tests {
		if got := clampTextSpeed(tt.input); got != tt.expected {
			t.Errorf("clampTextSpeed(%v): got %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestApplyTo 测试设置覆盖到对话配置
func TestApplyTo(t *testing.T) {
	cfg := config.Default()
	s := DefaultSettings()
	s.AutoplayEnabled = true
	s.ResumeAutoplayOnClose = false

	s.ApplyTo(cfg)
	if cfg.Reveal.Mode != config.RevealTyping {
		t.Errorf("empty RevealMode should keep the configured mode, got %q", cfg.Reveal.Mode)
	}
	if !cfg.Playback.StartWithAutoplay || cfg.History.ResumeAutoplayOnClose {
		t.Errorf("playback/history not applied: %+v %+v", cfg.Playback, cfg.History)
	}

	s.RevealMode = config.RevealNone
	s.ApplyTo(cfg)
	if cfg.Reveal.Mode != config.RevealNone {
		t.Errorf("RevealMode: got %q", cfg.Reveal.Mode)
	}

	s.ApplyTo(nil)
}
