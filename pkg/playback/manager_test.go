package playback

import (
	"testing"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/events"
	"github.com/decker502/dialogue/pkg/history"
	"github.com/decker502/dialogue/pkg/script"
)

type textSink struct {
	text   string
	writes int
}

func (s *textSink) SetText(text string) {
	s.text = text
	s.writes++
}

const demoScript = `
id: demo
steps:
  - speaker: Dave
    portrait: dave_happy
    text: Hello, neighbor!
  - speaker: Dave
    portrait: dave_crazy
    text: Taco time.
  - speaker: Dave
    text: Want one?
    choices: [Yes, No]
`

func mustParse(t *testing.T, data string) *script.Script {
	t.Helper()
	s, err := script.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return s
}

type recorder struct {
	lines   []events.LineShown
	choices []events.ChoicePicked
	resets  int
}

func record(bus *events.Bus) *recorder {
	r := &recorder{}
	bus.OnLineShown(func(e events.LineShown) { r.lines = append(r.lines, e) })
	bus.OnChoicePicked(func(e events.ChoicePicked) { r.choices = append(r.choices, e) })
	bus.OnConversationReset(func(events.ConversationReset) { r.resets++ })
	return r
}

func newTestManager(t *testing.T, mode config.RevealMode) (*Manager, *textSink, *recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Reveal.Mode = mode
	cfg.Playback.AutoplayDelay = 1
	cfg.Playback.AutoplayPerChar = 0
	bus := events.NewBus()
	sink := &textSink{}
	m := NewManager(mustParse(t, demoScript), cfg, sink, bus)
	return m, sink, record(bus)
}

func runUntilShown(m *Manager) {
	for i := 0; i < 1000 && m.Phase() == PhaseRevealing; i++ {
		m.Tick(0.1)
	}
}

func TestManagerRevealAndAdvance(t *testing.T) {
	m, sink, rec := newTestManager(t, config.RevealTyping)
	m.Start()

	if m.Phase() != PhaseRevealing {
		t.Fatalf("phase after Start: got %v", m.Phase())
	}
	m.Tick(0.05)
	if sink.text == "" || sink.text == "Hello, neighbor!" {
		t.Errorf("expected a partial line, got %q", sink.text)
	}

	runUntilShown(m)
	if m.Phase() != PhaseWaiting {
		t.Fatalf("phase after reveal: got %v", m.Phase())
	}
	if sink.text != "Hello, neighbor!" {
		t.Errorf("text: got %q", sink.text)
	}
	if len(rec.lines) != 1 {
		t.Fatalf("LineShown count: got %d, want 1", len(rec.lines))
	}
	want := events.LineShown{NodeID: "demo.0", Speaker: "Dave", Text: "Hello, neighbor!"}
	if rec.lines[0] != want {
		t.Errorf("LineShown: got %+v, want %+v", rec.lines[0], want)
	}

	m.Tick(0.1)
	if len(rec.lines) != 1 {
		t.Error("LineShown should be published once per line")
	}

	m.Advance()
	if m.Index() != 1 || m.Phase() != PhaseRevealing {
		t.Errorf("after Advance: index=%d phase=%v", m.Index(), m.Phase())
	}
	if m.CurrentPortrait() != "dave_crazy" {
		t.Errorf("portrait: got %q", m.CurrentPortrait())
	}
}

func TestManagerAdvanceSkipsReveal(t *testing.T) {
	m, sink, rec := newTestManager(t, config.RevealTyping)
	m.Start()
	m.Tick(0.05)

	m.Advance()
	if sink.text != "Hello, neighbor!" {
		t.Errorf("skip should write the full line, got %q", sink.text)
	}
	if m.Phase() != PhaseWaiting {
		t.Errorf("phase: got %v", m.Phase())
	}
	if len(rec.lines) != 1 {
		t.Errorf("LineShown count: got %d", len(rec.lines))
	}
}

func TestManagerSingleLiveEffect(t *testing.T) {
	m, sink, rec := newTestManager(t, config.RevealTyping)
	m.Start()
	first := m.Effect()
	m.Tick(0.05)

	m.Reset()
	if !first.Done() {
		t.Error("previous effect should be drained before a new one is created")
	}
	if m.Effect() == first {
		t.Error("Reset should create a new effect")
	}
	if len(rec.lines) != 0 {
		t.Errorf("an interrupted line must not be published on Reset, got %+v", rec.lines)
	}
	if rec.resets != 1 {
		t.Errorf("resets: got %d", rec.resets)
	}
	if sink.text != "Hello, neighbor!" && sink.text != "" {
		t.Errorf("unexpected text: %q", sink.text)
	}
}

func TestManagerChoices(t *testing.T) {
	m, _, rec := newTestManager(t, config.RevealNone)
	m.Start()

	for i := 0; i < 3 && m.Phase() != PhaseChoosing; i++ {
		m.Tick(0)
		m.Advance()
	}
	m.Tick(0)
	if m.Phase() != PhaseChoosing {
		t.Fatalf("phase: got %v, want choosing", m.Phase())
	}
	if got := m.Choices(); len(got) != 2 {
		t.Fatalf("choices: %v", got)
	}

	m.Advance()
	if m.Phase() != PhaseChoosing {
		t.Error("Advance must not skip a choice")
	}
	if m.Choose(5) {
		t.Error("out-of-range choice should be rejected")
	}
	if !m.Choose(1) {
		t.Fatal("Choose(1) failed")
	}
	if len(rec.choices) != 1 || rec.choices[0] != (events.ChoicePicked{NodeID: "demo.2", Text: "No"}) {
		t.Errorf("ChoicePicked: %+v", rec.choices)
	}
	if m.Phase() != PhaseFinished {
		t.Errorf("phase: got %v, want finished", m.Phase())
	}
	if m.Choose(0) {
		t.Error("Choose after finish should fail")
	}
}

func TestManagerChoiceOnlyStep(t *testing.T) {
	bus := events.NewBus()
	rec := record(bus)
	s := mustParse(t, "id: q\nsteps:\n  - choices: [A, B]\n")
	m := NewManager(s, config.Default(), nil, bus)
	m.Start()

	if m.Phase() != PhaseChoosing {
		t.Fatalf("phase: got %v", m.Phase())
	}
	if !m.Choose(0) {
		t.Fatal("Choose failed")
	}
	if len(rec.lines) != 0 || len(rec.choices) != 1 {
		t.Errorf("events: lines=%d choices=%d", len(rec.lines), len(rec.choices))
	}
}

func TestManagerAutoplay(t *testing.T) {
	m, _, _ := newTestManager(t, config.RevealNone)
	m.SetAutoPlay(true)
	m.Start()
	m.Tick(0)

	m.Tick(0.5)
	if m.Index() != 0 {
		t.Fatalf("advanced too early: index %d", m.Index())
	}
	m.Tick(0.6)
	if m.Index() != 1 {
		t.Errorf("autoplay should advance after the delay, index %d", m.Index())
	}

	if m.ToggleAutoPlay() {
		t.Error("ToggleAutoPlay should return false")
	}
	m.Tick(0)
	m.Tick(5)
	if m.Index() != 1 {
		t.Error("should not advance with autoplay off")
	}
}

func TestManagerAutoplayPerChar(t *testing.T) {
	cfg := config.Default()
	cfg.Reveal.Mode = config.RevealNone
	cfg.Playback.AutoplayDelay = 0.5
	cfg.Playback.AutoplayPerChar = 0.1
	cfg.Playback.StartWithAutoplay = true
	m := NewManager(mustParse(t, "steps:\n  - text: abcde\n  - text: f\n"), cfg, nil, nil)
	if !m.AutoPlay() {
		t.Fatal("StartWithAutoplay should enable autoplay")
	}
	m.Start()
	m.Tick(0)

	m.Tick(0.9)
	if m.Index() != 0 {
		t.Fatal("delay should include the per-character time")
	}
	m.Tick(0.2)
	if m.Index() != 1 {
		t.Errorf("index: got %d, want 1", m.Index())
	}
}

func TestManagerPauseForHistory(t *testing.T) {
	m, sink, rec := newTestManager(t, config.RevealTyping)
	m.SetAutoPlay(true)
	m.Start()
	m.Tick(0.05)

	m.PauseForHistory()
	if !m.Effect().IsCancelled() {
		t.Fatal("PauseForHistory should cancel the running effect")
	}
	if sink.text == "Hello, neighbor!" {
		t.Error("cancellation should only be observed on the next tick")
	}

	m.Tick(0.1)
	if sink.text != "Hello, neighbor!" {
		t.Errorf("cancelled effect should finish with the full line, got %q", sink.text)
	}
	if len(rec.lines) != 1 {
		t.Errorf("LineShown count: got %d", len(rec.lines))
	}

	m.Tick(10)
	m.Advance()
	if m.Index() != 0 {
		t.Error("nothing should advance while paused")
	}

	m.ResumeAfterHistory()
	m.Tick(1.1)
	if m.Index() != 1 {
		t.Errorf("autoplay should continue after resume, index %d", m.Index())
	}
}

func TestManagerFastForward(t *testing.T) {
	m, _, _ := newTestManager(t, config.RevealTyping)
	base := m.Factory().CharsPerSecond()
	m.SetFastForward(true)
	if got := m.Factory().CharsPerSecond(); got != base*config.DefaultFastForwardMultiplier {
		t.Errorf("fast-forward rate: got %v, want %v", got, base*config.DefaultFastForwardMultiplier)
	}
	m.SetFastForward(false)
	if m.Factory().CharsPerSecond() != base {
		t.Error("rate should return to normal")
	}
}

func TestManagerReset(t *testing.T) {
	m, _, rec := newTestManager(t, config.RevealNone)
	m.Start()
	m.Tick(0)
	m.Advance()

	m.Reset()
	if rec.resets != 1 {
		t.Errorf("resets: got %d", rec.resets)
	}
	if m.Index() != 0 || m.Phase() != PhaseRevealing {
		t.Errorf("after Reset: index=%d phase=%v", m.Index(), m.Phase())
	}

	other := mustParse(t, "id: other\nsteps:\n  - text: bye\n")
	m.Load(other)
	if rec.resets != 2 || m.Script() != other {
		t.Error("Load should reset onto the new script")
	}
}

func TestManagerWithHistoryPanel(t *testing.T) {
	cfg := config.Default()
	cfg.Reveal.Mode = config.RevealTyping
	cfg.History.ResumeAutoplayOnClose = true
	bus := events.NewBus()
	sink := &textSink{}
	m := NewManager(mustParse(t, demoScript), cfg, sink, bus)
	panel := history.NewPanel(nil, m, nil, cfg.History)
	group := panel.Attach(bus)
	defer group.Release()

	m.SetAutoPlay(true)
	m.Start()
	m.Tick(0.05)

	panel.Open()
	if !m.Paused() {
		t.Fatal("panel should pause the driver")
	}
	m.Tick(0.1)

	entries := panel.Buffer().Entries()
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].Text != "Hello, neighbor!" || entries[0].Portrait != "dave_happy" {
		t.Errorf("entry: %+v", entries[0])
	}

	m.ToggleAutoPlay()
	panel.Close()
	if m.Paused() {
		t.Error("driver should resume after close")
	}
	if !m.AutoPlay() {
		t.Error("autoplay should be restored on close")
	}

	m.Advance()
	runUntilShown(m)
	m.Advance()
	runUntilShown(m)
	m.Choose(0)

	entries = panel.Buffer().Entries()
	if len(entries) != 4 {
		t.Fatalf("entries: got %d, want 4", len(entries))
	}
	if !entries[3].IsChoice() || entries[3].Text != "Yes" {
		t.Errorf("choice entry: %+v", entries[3])
	}
	if entries[1].Portrait != "dave_crazy" {
		t.Errorf("portrait at event time: got %q", entries[1].Portrait)
	}

	m.Reset()
	if panel.Buffer().Len() != 0 {
		t.Error("reset should clear history")
	}
}
