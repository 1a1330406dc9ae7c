// Package keyboard lays out the on-camera virtual keyboard and hit-tests the
// pointer against it.
package keyboard

import (
	"image"

	"github.com/ayusman/mudra/internal/cursor"
)

// Config positions the keyboard in camera pixels.
type Config struct {
	OriginX int `koanf:"origin_x"`
	OriginY int `koanf:"origin_y"`
	KeySize int `koanf:"key_size"`
	Gap     int `koanf:"gap"`
}

// DefaultConfig fits the keyboard in the upper part of a 1280x720 frame.
func DefaultConfig() Config {
	return Config{OriginX: 100, OriginY: 100, KeySize: 85, Gap: 15}
}

// Key is one button of the overlay.
type Key struct {
	// Label is drawn on the key.
	Label string `json:"label"`
	// Code is what gets typed.
	Code string          `json:"code"`
	Rect image.Rectangle `json:"rect"`
}

var rows = []string{"QWERTYUIOP", "ASDFGHJKL", "ZXCVBNM"}

// Keyboard is an immutable key layout.
type Keyboard struct {
	keys   []Key
	bounds image.Rectangle
}

// New lays out a QWERTY keyboard. Each row is shifted half a key right of the
// one above; a wide space bar and backspace and enter keys sit at the ends.
func New(cfg Config) *Keyboard {
	if cfg.KeySize <= 0 {
		cfg.KeySize = DefaultConfig().KeySize
	}
	step := cfg.KeySize + cfg.Gap
	kb := &Keyboard{}

	add := func(label, code string, x, y, w int) {
		r := image.Rect(x, y, x+w, y+cfg.KeySize)
		kb.keys = append(kb.keys, Key{Label: label, Code: code, Rect: r})
		kb.bounds = kb.bounds.Union(r)
	}

	for row, letters := range rows {
		y := cfg.OriginY + row*step
		x0 := cfg.OriginX + row*step/2
		for i, ch := range letters {
			add(string(ch), string(ch+'a'-'A'), x0+i*step, y, cfg.KeySize)
		}
	}

	// Backspace closes the top row, enter the middle one.
	add("<", "backspace", cfg.OriginX+len(rows[0])*step, cfg.OriginY, cfg.KeySize)
	add("ENT", "enter", cfg.OriginX+step/2+len(rows[1])*step, cfg.OriginY+step, cfg.KeySize+cfg.Gap+cfg.KeySize/2)

	spaceY := cfg.OriginY + len(rows)*step
	add("SPACE", "space", cfg.OriginX+2*step, spaceY, 5*step-cfg.Gap)

	return kb
}

// KeyAt returns the code of the key under p in camera pixels.
func (k *Keyboard) KeyAt(p cursor.Point) (string, bool) {
	pt := image.Pt(int(p.X), int(p.Y))
	if !pt.In(k.bounds) {
		return "", false
	}
	for _, key := range k.keys {
		if pt.In(key.Rect) {
			return key.Code, true
		}
	}
	return "", false
}

// Keys returns a copy of the layout for drawing.
func (k *Keyboard) Keys() []Key {
	out := make([]Key, len(k.keys))
	copy(out, k.keys)
	return out
}

// Bounds is the smallest rectangle containing every key.
func (k *Keyboard) Bounds() image.Rectangle {
	return k.bounds
}
