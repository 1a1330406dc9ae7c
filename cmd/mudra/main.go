package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// Fallback screen size for the log driver when none is configured.
const (
	defaultScreenWidth  = 1920
	defaultScreenHeight = 1080
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exiting")
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().Msg("Mudra - hand gesture control")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := storePath(cfg.Store.Path)
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	logger.Info().Str("path", dbPath).Msg("store opened")

	if cfg.Store.Retention > 0 {
		n, err := st.Events().Prune(ctx, time.Now().Add(-cfg.Store.Retention))
		if err != nil {
			logger.Warn().Err(err).Msg("failed to prune old actions")
		} else if n > 0 {
			logger.Info().Int64("removed", n).Msg("pruned old actions")
		}
	}

	m := metrics.NewManager(metrics.WithRuntimeCollectors())

	sink, screenW, screenH := newSink(cfg, logger)
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}
	mapperCfg := cfg.Cursor
	mapperCfg.ScreenWidth, mapperCfg.ScreenHeight = screenW, screenH

	det := newDetector(cfg.Detector, logger)

	application := app.New(app.Config{
		Camera:      capture.NewCamera(cfg.Camera),
		Motion:      capture.NewMotionDetector(cfg.Motion),
		Detector:    det,
		Sink:        sink,
		Store:       st,
		Metrics:     m,
		Logger:      logger,
		Mapper:      cursor.NewMapper(mapperCfg),
		Keyboard:    keyboard.New(cfg.Keyboard),
		Classifier:  cfg.Classifier,
		Swipe:       cfg.Swipe,
		Dispatch:    cfg.Dispatch,
		Menu:        cfg.Menu,
		Draw:        cfg.Draw,
		ActiveFPS:   cfg.Camera.ActiveFPS,
		IdleFPS:     cfg.Camera.IdleFPS,
		IdleTimeout: cfg.Tracking.IdleTimeout,
		SessionTTL:  cfg.Tracking.SessionTTL,
		Start: app.State{
			Modes: action.Modes{
				MouseControl:    cfg.Start.MouseControl,
				KeyboardOverlay: cfg.Start.KeyboardOverlay,
			},
			Mode: mode.Name(cfg.Start.Mode),
		},
	})
	if err := application.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("using start state")
	}

	if err := application.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("camera unavailable, serving without tracking")
	}
	defer application.Stop()

	webDir := cfg.Server.WebDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		logger.Info().Str("dir", webDir).Msg("serving dashboard")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
		Metrics:   m,
		Logger:    logger,
	})
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		stop()
	}()

	if cfg.Tray.Enabled {
		t := newTray(ctx, application, cfg.Server.Addr, stop, logger)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// Blocks on the main goroutine until Quit.
		t.Run()
		stop()
	} else {
		<-ctx.Done()
	}

	if err := <-srvErr; err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info().Msg("bye")
	return nil
}

// storePath returns path, or ~/.mudra/mudra.db when empty, creating the
// parent directory.
func storePath(path string) (string, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".mudra", "mudra.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return path, nil
}

// newSink picks the input driver and the screen size the cursor maps onto.
// Configured sizes win over the detected display.
func newSink(cfg *config.Config, logger zerolog.Logger) (action.Sink, int, int) {
	w, h := cfg.Cursor.ScreenWidth, cfg.Cursor.ScreenHeight

	switch cfg.Input.Driver {
	case config.DriverLog:
		if w <= 0 || h <= 0 {
			w, h = defaultScreenWidth, defaultScreenHeight
		}
		logger.Info().Int("width", w).Int("height", h).Msg("dry run: actions are logged only")
		return input.NewLog(logging.Component(logger, "input")), w, h
	case config.DriverExec:
		if w <= 0 || h <= 0 {
			w, h = defaultScreenWidth, defaultScreenHeight
		}
		logger.Info().Str("command", cfg.Input.Command).Int("width", w).Int("height", h).Msg("delegating input to helper")
		return input.NewExec(cfg.Input.Command, cfg.Input.Args, cfg.Input.Timeout, logging.Component(logger, "input")), w, h
	}

	robot := input.NewRobot()
	if w <= 0 || h <= 0 {
		w, h = robot.ScreenSize()
	}
	logger.Info().Int("width", w).Int("height", h).Msg("controlling display")
	return robot, w, h
}

// newDetector starts the MediaPipe bridge, falling back to a detector that
// never sees hands so the preview and API still work.
func newDetector(cfg detector.Config, logger zerolog.Logger) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("MediaPipe not available, hand tracking disabled")
		return detector.NewMockDetector()
	}
	logger.Info().Msg("using MediaPipe landmark detection")
	return mp
}

func newTray(ctx context.Context, a *app.App, addr string, quit func(), logger zerolog.Logger) *tray.Tray {
	t := tray.New(a.State())

	report := func(err error) {
		if err != nil {
			logger.Warn().Err(err).Msg("failed to apply tray change")
		}
	}
	t.OnTracking(a.SetEnabled)
	t.OnMouseControl(func(on bool) { report(a.SetMouseControl(ctx, on)) })
	t.OnKeyboardOverlay(func(on bool) { report(a.SetKeyboardOverlay(ctx, on)) })
	t.OnMode(func(m mode.Name) { report(a.SetMode(ctx, m)) })
	t.OnSettings(func() { report(openBrowser(dashboardURL(addr))) })
	t.OnQuit(quit)
	a.Watch(t.SetState)

	snaps, cancel := a.Hub().Subscribe(1)
	go func() {
		defer cancel()
		var last string
		for {
			select {
			case <-ctx.Done():
				return
			case <-snaps:
				if g := string(a.LastGesture()); g != last {
					last = g
					t.SetLastGesture(g)
				}
			}
		}
	}()
	return t
}

func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
