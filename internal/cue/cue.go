package cue

import (
	"io"
	"sync"
	"time"
)

// Cue is a short audible feedback signal
type Cue string

const (
	Add     Cue = "add"
	Remove  Cue = "remove"
	Success Cue = "success"
	Error   Cue = "error"
	Click   Cue = "click"
	Confirm Cue = "confirm"
)

const defaultMinInterval = 100 * time.Millisecond

// minInterval keeps repeated cues of the same kind from piling up
var minInterval = map[Cue]time.Duration{
	Add:     120 * time.Millisecond,
	Remove:  140 * time.Millisecond,
	Success: 50 * time.Millisecond,
	Error:   300 * time.Millisecond,
	Click:   80 * time.Millisecond,
	Confirm: 60 * time.Millisecond,
}

// Sink renders a cue
type Sink interface {
	Emit(c Cue)
}

// Player rate-limits cues per kind and forwards the rest to a Sink
type Player struct {
	mu   sync.Mutex
	sink Sink
	last map[Cue]time.Time
	now  func() time.Time
}

// NewPlayer creates a cue player. A nil sink discards every cue.
func NewPlayer(sink Sink) *Player {
	return NewPlayerWithClock(sink, time.Now)
}

// NewPlayerWithClock is NewPlayer with an injectable clock
func NewPlayerWithClock(sink Sink, now func() time.Time) *Player {
	if sink == nil {
		sink = NopSink{}
	}
	if now == nil {
		now = time.Now
	}
	return &Player{
		sink: sink,
		last: make(map[Cue]time.Time),
		now:  now,
	}
}

// Play emits c unless the same cue was emitted within its minimum interval
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	now := p.now()
	interval, ok := minInterval[c]
	if !ok {
		interval = defaultMinInterval
	}
	if last, seen := p.last[c]; seen && now.Sub(last) < interval {
		p.mu.Unlock()
		return
	}
	p.last[c] = now
	p.mu.Unlock()

	p.sink.Emit(c)
}

// NopSink discards cues
type NopSink struct{}

func (NopSink) Emit(Cue) {}

// BellSink rings the terminal bell
type BellSink struct {
	W io.Writer
}

func (b BellSink) Emit(c Cue) {
	if b.W == nil {
		return
	}
	switch c {
	case Success:
		_, _ = io.WriteString(b.W, "\a\a\a")
	case Error:
		_, _ = io.WriteString(b.W, "\a\a")
	default:
		_, _ = io.WriteString(b.W, "\a")
	}
}
