package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/game"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/script"
)

type textSink struct{ text string }

func (s *textSink) SetText(text string) { s.text = text }

const testScript = `
id: test
steps:
  - speaker: Dave
    text: Hello there.
  - speaker: Dave
    text: Pick one.
    choices: [Taco, Pizza, Nothing]
  - text: Fin.
`

func newTestSession(t *testing.T, clip func(string) error) (*Session, *textSink) {
	t.Helper()
	sc, err := script.Parse([]byte(testScript))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg := config.Default()
	cfg.Reveal.Mode = config.RevealNone
	sink := &textSink{}
	s, err := New(Options{Config: cfg, Script: sc, Sink: sink, Clipboard: clip})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s, sink
}

func TestNewRequiresScript(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without script")
	}
}

func TestNewAppliesSettings(t *testing.T) {
	sc, _ := script.Parse([]byte(testScript))
	settings := game.NewSettingsManager(nil)
	settings.SetAutoplayEnabled(true)
	settings.SetTextSpeed(2)
	_ = settings.SetRevealMode(config.RevealWord)

	cfg := config.Default()
	s, err := New(Options{Config: cfg, Script: sc, Settings: settings})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if !s.Manager.AutoPlay() {
		t.Error("autoplay setting not applied")
	}
	if s.Config().Reveal.Mode != config.RevealWord {
		t.Errorf("mode: got %q", s.Config().Reveal.Mode)
	}
	if cfg.Reveal.Mode != config.RevealTyping {
		t.Error("caller's config should not be modified")
	}
	if got := s.Manager.Factory().WordsPerSecond(); got != config.DefaultWordsPerSecond*2 {
		t.Errorf("speed scale: got %v", got)
	}
}

func TestSessionFlow(t *testing.T) {
	s, sink := newTestSession(t, nil)
	s.Start()
	s.Tick(0)
	if sink.text != "Hello there." {
		t.Fatalf("text: %q", sink.text)
	}

	s.Confirm()
	s.Tick(0)
	if s.Manager.Phase() != playback.PhaseChoosing {
		t.Fatalf("phase: %v", s.Manager.Phase())
	}

	s.MoveSelection(-1)
	if s.Selected() != 2 {
		t.Errorf("selection should wrap, got %d", s.Selected())
	}
	s.MoveSelection(2)
	if s.Selected() != 1 {
		t.Errorf("selection: got %d", s.Selected())
	}

	s.Confirm()
	if s.Selected() != 0 {
		t.Error("selection should reset after a choice")
	}
	s.Tick(0)

	entries := s.Panel.Buffer().Entries()
	if len(entries) != 4 {
		t.Fatalf("history: got %d entries", len(entries))
	}
	if !entries[2].IsChoice() || entries[2].Text != "Pizza" {
		t.Errorf("choice entry: %+v", entries[2])
	}
	if entries[3].Speaker != config.DefaultPlaceholderSpeaker {
		t.Errorf("placeholder speaker: got %q", entries[3].Speaker)
	}
}

func TestSessionHistoryBlocksInput(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Start()
	s.Tick(0)

	s.ToggleHistory()
	if !s.Panel.IsOpen() || !s.Manager.Paused() {
		t.Fatal("history should open and pause playback")
	}
	s.Confirm()
	if s.Manager.Index() != 0 {
		t.Error("Confirm should be ignored while history is open")
	}
	s.SetFastForward(true)
	if s.Manager.FastForward() {
		t.Error("fast-forward should be ignored while history is open")
	}

	s.Scroll(1)
	if s.Panel.ScrollOffset() != 0 {
		t.Errorf("scroll clamps to a single entry, got %d", s.Panel.ScrollOffset())
	}
	if got := s.AdjustSpeed(1); got != game.DefaultTextSpeed {
		t.Errorf("AdjustSpeed should be ignored while history is open, got %v", got)
	}
	if m := s.CycleRevealMode(); m != config.RevealNone {
		t.Errorf("CycleRevealMode should be ignored while history is open, got %q", m)
	}
	if s.Settings.GetSettings().RevealMode != "" || s.Manager.Factory().Config().Mode != config.RevealNone {
		t.Error("reveal mode changed while history is open")
	}

	s.CloseHistory()
	s.Confirm()
	if s.Manager.Index() != 1 {
		t.Errorf("index: got %d", s.Manager.Index())
	}
}

func TestSessionHistoryKeepsAutoplayInSync(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Panel.SetResumeAutoplayOnClose(true)
	s.Start()
	s.Tick(0)
	if !s.ToggleAutoPlay() {
		t.Fatal("autoplay should be on")
	}

	s.ToggleHistory()
	if !s.ToggleAutoPlay() {
		t.Error("ToggleAutoPlay while history is open should report the unchanged state")
	}
	s.CloseHistory()

	if !s.Manager.AutoPlay() {
		t.Error("autoplay should still be on after closing history")
	}
	if s.Manager.AutoPlay() != s.Settings.GetSettings().AutoplayEnabled {
		t.Errorf("manager autoplay=%v settings autoplay=%v", s.Manager.AutoPlay(), s.Settings.GetSettings().AutoplayEnabled)
	}
}

func TestSessionHistoryBlocksSelection(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Start()
	s.Tick(0)
	s.Confirm()
	s.Tick(0)
	if s.Manager.Phase() != playback.PhaseChoosing {
		t.Fatalf("phase: got %v", s.Manager.Phase())
	}

	s.ToggleHistory()
	s.MoveSelection(1)
	if s.Selected() != 0 {
		t.Errorf("MoveSelection should be ignored while history is open, got %d", s.Selected())
	}
	s.CloseHistory()

	s.MoveSelection(1)
	if s.Selected() != 1 {
		t.Errorf("selected: got %d", s.Selected())
	}
}

func TestSessionSettings(t *testing.T) {
	s, _ := newTestSession(t, nil)

	if got := s.AdjustSpeed(2); got != 1.5 {
		t.Errorf("AdjustSpeed(2): got %v", got)
	}
	if got := s.AdjustSpeed(-100); got != game.DefaultTextSpeed {
		t.Errorf("non-positive speed falls back to default, got %v", got)
	}

	if !s.ToggleAutoPlay() || !s.Settings.GetSettings().AutoplayEnabled {
		t.Error("ToggleAutoPlay should be recorded in settings")
	}

	if m := s.CycleRevealMode(); m != config.RevealTyping {
		t.Errorf("none -> typing, got %q", m)
	}
	if m := s.CycleRevealMode(); m != config.RevealWord {
		t.Errorf("typing -> word, got %q", m)
	}
	if s.Settings.GetSettings().RevealMode != config.RevealWord {
		t.Error("reveal mode should be recorded in settings")
	}
}

func TestSessionRestart(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Start()
	s.Tick(0)
	s.Confirm()
	s.Tick(0)
	s.ToggleHistory()

	s.Restart()
	if s.Panel.IsOpen() {
		t.Error("Restart should close history")
	}
	if s.Panel.Buffer().Len() != 0 {
		t.Error("Restart should clear history")
	}
	if s.Manager.Index() != 0 {
		t.Errorf("index: got %d", s.Manager.Index())
	}
}

func TestSessionSearch(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Start()
	s.Tick(0)
	s.Confirm()
	s.Tick(0)

	got := s.Search("pick")
	if len(got) != 1 || got[0].Text != "Pick one." {
		t.Errorf("Search: %+v", got)
	}
}

func TestCopyTranscript(t *testing.T) {
	t.Run("未配置剪贴板", func(t *testing.T) {
		s, _ := newTestSession(t, nil)
		if _, err := s.CopyTranscript(); !errors.Is(err, ErrNoClipboard) {
			t.Errorf("expected ErrNoClipboard, got %v", err)
		}
	})

	t.Run("复制成功", func(t *testing.T) {
		var copied string
		s, _ := newTestSession(t, func(text string) error {
			copied = text
			return nil
		})
		s.Start()
		s.Tick(0)

		n, err := s.CopyTranscript()
		if err != nil || n != 1 {
			t.Fatalf("CopyTranscript: n=%d err=%v", n, err)
		}
		if !strings.Contains(copied, "Dave: Hello there.") {
			t.Errorf("transcript: %q", copied)
		}
	})

	t.Run("剪贴板错误", func(t *testing.T) {
		s, _ := newTestSession(t, func(string) error { return errors.New("no display") })
		if _, err := s.CopyTranscript(); err == nil {
			t.Error("expected error")
		}
	})
}
