// Command mudra-osascript performs mudra input actions on macOS through
// osascript. It is started once per action by the "exec" input driver: a JSON
// request arrives on stdin and a JSON response is written to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// request mirrors input.ExecRequest.
type request struct {
	Action    string   `json:"action"`
	X         int      `json:"x,omitempty"`
	Y         int      `json:"y,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// modifierMap maps combo modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// keyCodes covers named keys that keystroke cannot type.
var keyCodes = map[string]int{
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
	"enter":     36,
	"return":    36,
	"tab":       48,
	"space":     49,
	"backspace": 51,
	"escape":    53,
	"esc":       53,
}

func main() {
	os.Exit(serve(os.Stdin, os.Stdout))
}

func serve(in io.Reader, out io.Writer) int {
	var req request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return reply(out, fmt.Errorf("failed to decode request: %w", err))
	}
	lang, script, err := buildScript(req)
	if err != nil {
		return reply(out, err)
	}
	return reply(out, runScript(lang, script))
}

func reply(out io.Writer, err error) int {
	resp := response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(out).Encode(resp)
	return 0
}

// buildScript returns the osascript language and source for req. Pointer
// actions go through the JavaScript bridge to CoreGraphics.
func buildScript(req request) (string, string, error) {
	switch req.Action {
	case "move":
		return "JavaScript", fmt.Sprintf(
			"ObjC.import('CoreGraphics'); $.CGWarpMouseCursorPosition({x: %d, y: %d});", req.X, req.Y), nil
	case "click":
		return "JavaScript", clickScript("kCGEventLeftMouseDown", "kCGEventLeftMouseUp", "kCGMouseButtonLeft"), nil
	case "right_click":
		return "JavaScript", clickScript("kCGEventRightMouseDown", "kCGEventRightMouseUp", "kCGMouseButtonRight"), nil
	case "key", "hotkey":
		if req.Key == "" {
			return "", "", fmt.Errorf("key is required")
		}
		return "AppleScript", keystrokeScript(req.Key, req.Modifiers), nil
	default:
		return "", "", fmt.Errorf("unknown action: %s", req.Action)
	}
}

func clickScript(down, up, button string) string {
	return fmt.Sprintf(`ObjC.import('CoreGraphics');
var loc = $.CGEventGetLocation($.CGEventCreate(null));
$.CGEventPost($.kCGHIDEventTap, $.CGEventCreateMouseEvent(null, $.%[1]s, loc, $.%[3]s));
$.CGEventPost($.kCGHIDEventTap, $.CGEventCreateMouseEvent(null, $.%[2]s, loc, $.%[3]s));`, down, up, button)
}

// keystrokeScript types key, holding modifiers. Named keys use key code.
func keystrokeScript(key string, modifiers []string) string {
	var stroke string
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		stroke = fmt.Sprintf("key code %d", code)
	} else {
		stroke = fmt.Sprintf("keystroke %q", key)
	}

	var apple []string
	for _, mod := range modifiers {
		if m, ok := modifierMap[strings.ToLower(mod)]; ok {
			apple = append(apple, m)
		}
	}
	if len(apple) == 0 {
		return fmt.Sprintf(`tell application "System Events" to %s`, stroke)
	}
	return fmt.Sprintf(`tell application "System Events" to %s using {%s}`, stroke, strings.Join(apple, ", "))
}

func runScript(lang, script string) error {
	cmd := exec.Command("osascript", "-l", lang, "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
