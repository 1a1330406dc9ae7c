// Package input provides the OS input sinks that actions are applied to.
package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Robot injects real mouse and keyboard input.
type Robot struct{}

// NewRobot creates a Robot.
func NewRobot() *Robot {
	return &Robot{}
}

// ScreenSize returns the primary display size in pixels.
func (r *Robot) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (r *Robot) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (r *Robot) Click() error {
	robotgo.Click("left")
	return nil
}

func (r *Robot) RightClick() error {
	robotgo.Click("right")
	return nil
}

func (r *Robot) PressKey(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

func (r *Robot) SendHotkey(key string, modifiers ...string) error {
	args := make([]any, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("hotkey %v+%q: %w", modifiers, key, err)
	}
	return nil
}
