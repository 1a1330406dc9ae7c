// Package tray provides the system tray menu: tracking, mouse control and
// keyboard overlay toggles, mode selection and the last recognised gesture.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/mode"
)

// Tray represents the system tray application.
type Tray struct {
	mu       sync.RWMutex
	tracking bool
	state    app.State

	onTracking        func(enabled bool)
	onMouseControl    func(on bool)
	onKeyboardOverlay func(on bool)
	onMode            func(m mode.Name)
	onSettings        func()
	onQuit            func()

	// Menu items stored for later updates; nil until the tray is ready.
	menuTracking    *systray.MenuItem
	menuMouse       *systray.MenuItem
	menuKeyboard    *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuModes       map[mode.Name]*systray.MenuItem
}

// New creates a Tray showing state, with tracking enabled.
func New(state app.State) *Tray {
	return &Tray{tracking: true, state: state}
}

// OnTracking sets the callback for the tracking toggle.
func (t *Tray) OnTracking(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTracking = fn
}

// OnMouseControl sets the callback for the mouse control toggle.
func (t *Tray) OnMouseControl(fn func(on bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMouseControl = fn
}

// OnKeyboardOverlay sets the callback for the keyboard overlay toggle.
func (t *Tray) OnKeyboardOverlay(fn func(on bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onKeyboardOverlay = fn
}

// OnMode sets the callback for mode selection.
func (t *Tray) OnMode(fn func(m mode.Name)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuTracking = systray.AddMenuItemCheckbox("Tracking", "Pause or resume hand tracking", t.tracking)
	systray.AddSeparator()
	t.menuMouse = systray.AddMenuItemCheckbox("Mouse control", "Move the cursor with your hand", t.state.MouseControl)
	t.menuKeyboard = systray.AddMenuItemCheckbox("Keyboard overlay", "Type by pinching over keys", t.state.KeyboardOverlay)

	menuMode := systray.AddMenuItem("Mode", "Active mode")
	t.menuModes = make(map[mode.Name]*systray.MenuItem)
	for _, m := range mode.Names() {
		t.menuModes[m] = menuMode.AddSubMenuItemCheckbox(string(m), "Switch to "+string(m), t.state.Mode == m)
	}
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")
	t.mu.Unlock()

	for m, item := range t.menuModes {
		go func(m mode.Name, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleMode(m)
			}
		}(m, item)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuTracking.ClickedCh:
				t.handleTracking()
			case <-t.menuMouse.ClickedCh:
				t.handleMouseControl()
			case <-t.menuKeyboard.ClickedCh:
				t.handleKeyboardOverlay()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) handleTracking() {
	t.mu.Lock()
	t.tracking = !t.tracking
	enabled := t.tracking
	setChecked(t.menuTracking, enabled)
	callback := t.onTracking
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleMouseControl() {
	t.mu.Lock()
	on := !t.state.MouseControl
	callback := t.onMouseControl
	t.mu.Unlock()

	if callback != nil {
		callback(on)
	}
}

func (t *Tray) handleKeyboardOverlay() {
	t.mu.Lock()
	on := !t.state.KeyboardOverlay
	callback := t.onKeyboardOverlay
	t.mu.Unlock()

	if callback != nil {
		callback(on)
	}
}

func (t *Tray) handleMode(m mode.Name) {
	t.mu.RLock()
	callback := t.onMode
	t.mu.RUnlock()

	if callback != nil {
		callback(m)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetState shows the application toggles. Toggle clicks only request a
// change; the checkmarks follow once the application reports it here.
func (t *Tray) SetState(s app.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = s
	setChecked(t.menuMouse, s.MouseControl)
	setChecked(t.menuKeyboard, s.KeyboardOverlay)
	for m, item := range t.menuModes {
		setChecked(item, m == s.Mode)
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		if name == "" {
			t.menuLastGesture.SetTitle("Last: none")
		} else {
			t.menuLastGesture.SetTitle("Last: " + name)
		}
	}
}

// State returns the toggles the tray currently shows.
func (t *Tray) State() app.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// IsTracking returns the tracking toggle.
func (t *Tray) IsTracking() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracking
}

func setChecked(item *systray.MenuItem, on bool) {
	if item == nil {
		return
	}
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}
