package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag

	"github.com/EvanSunde/sinodragon"
	"github.com/EvanSunde/sinodragon/activity"
	"github.com/EvanSunde/sinodragon/preset"
	"github.com/EvanSunde/sinodragon/version"
)

var (
	logger = logxi.New("sinodragon")

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options] <config file>       per-key RGB keyboard driver      ", version.GitHash, "    ", version.BuildTime)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "sinodragon drives the per-key lighting of a USB HID keyboard from a stack of presets,")
	fmt.Fprintln(os.Stderr, "reshaped live by the focused desktop window and raw keystrokes")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		logger.Fatal("fatal error", "error", err.Error())
		os.Exit(1)
	}
}

func run(configPath string) (err error) {

	registry := preset.DefaultRegistry()

	cfg, errLoad := sinodragon.LoadConfig(configPath, registry)
	if errLoad != nil {
		return errLoad
	}

	if !cfg.Transport.Connect(cfg.Keyboard) {
		return fmt.Errorf("failed to connect transport %s", cfg.Transport.ID())
	}

	bus := activity.NewBus(cfg.Keyboard.KeyCount(), cfg.ActivityWindow)

	engine := sinodragon.NewEffectEngine(cfg.Keyboard, cfg.Transport)
	engine.BindActivity(bus)
	engine.SetPresets(cfg.Presets, cfg.Masks)
	engine.SetDrawList(cfg.DrawList)

	ctrl := sinodragon.NewController(engine, cfg.PresetParams, cfg.FrameInterval)

	var keyWatcher *sinodragon.ActivityWatcher
	if cfg.Keyboard.HasKeycodeMap() {
		keyWatcher = sinodragon.NewActivityWatcher(cfg.Keyboard, bus)
		keyWatcher.Start()
	}

	var shortcuts *sinodragon.ShortcutWatcher
	var focus *sinodragon.FocusWatcher
	if cfg.Hypr != nil && cfg.Hypr.Enabled {
		// The shortcut watcher starts first so the focus callback can
		// safely reference it
		if cfg.Hypr.OverlayPreset >= 0 {
			shortcuts = sinodragon.NewShortcutWatcher(cfg.Keyboard, cfg.Hypr, ctrl)
			shortcuts.Start()
		}
		focus = sinodragon.NewFocusWatcher(cfg.Hypr, ctrl)
		if shortcuts != nil {
			focus.SetActiveClassCallback(shortcuts.SetActiveClass)
		}
		focus.Start()
	}

	ctrl.Run()

	if focus != nil {
		focus.Stop()
	}
	if shortcuts != nil {
		shortcuts.Stop()
	}
	if keyWatcher != nil {
		keyWatcher.Stop()
	}

	return nil
}
