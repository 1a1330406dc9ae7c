package input

import (
	"sync"

	"github.com/rs/zerolog"
)

// Log is a dry-run sink that logs actions instead of performing them.
type Log struct {
	log zerolog.Logger

	mu     sync.Mutex
	counts map[string]int
	last   [2]int
}

// NewLog creates a Log sink.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log, counts: make(map[string]int)}
}

func (l *Log) note(kind string) {
	l.mu.Lock()
	l.counts[kind]++
	l.mu.Unlock()
}

func (l *Log) MoveCursor(x, y int) error {
	l.mu.Lock()
	l.last = [2]int{x, y}
	l.mu.Unlock()
	l.note("move")
	l.log.Trace().Int("x", x).Int("y", y).Msg("move")
	return nil
}

func (l *Log) Click() error {
	l.note("click")
	l.log.Info().Msg("click")
	return nil
}

func (l *Log) RightClick() error {
	l.note("right_click")
	l.log.Info().Msg("right click")
	return nil
}

func (l *Log) PressKey(key string) error {
	l.note("key")
	l.log.Info().Str("key", key).Msg("key press")
	return nil
}

func (l *Log) SendHotkey(key string, modifiers ...string) error {
	l.note("hotkey")
	l.log.Info().Str("key", key).Strs("modifiers", modifiers).Msg("hotkey")
	return nil
}

// Count returns how many actions of kind (move, click, right_click, key,
// hotkey) were seen.
func (l *Log) Count(kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[kind]
}

// Position returns the last cursor position.
func (l *Log) Position() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last[0], l.last[1]
}
