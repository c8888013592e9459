package sinodragon

// This module loads the runtime configuration.  The YAML file names the
// keyboard, the transport, the preset stack with its masks, and the
// optional compositor integration with its profiles and shortcut cheat
// sheets.  Everything label based is resolved to key indices here so
// the watchers and the engine never parse at runtime.

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"gopkg.in/yaml.v2"

	"github.com/EvanSunde/sinodragon/model"
	"github.com/EvanSunde/sinodragon/preset"
)

const defaultActivityWindow = 5.0

// RuntimeConfig is the fully resolved configuration handed to main
type RuntimeConfig struct {
	Keyboard     *model.Keyboard
	Transport    Transport
	Presets      []preset.Preset
	PresetParams []map[string]string
	Masks        [][]bool
	DrawList     []int

	FrameInterval  time.Duration
	ActivityWindow float64

	Hypr *HyprConfig
}

type yamlKeyboard struct {
	Name               string     `yaml:"name"`
	VendorID           uint16     `yaml:"vendor_id"`
	ProductID          uint16     `yaml:"product_id"`
	PacketHeader       []int      `yaml:"packet_header"`
	PacketLength       int        `yaml:"packet_length"`
	Layout             [][]string `yaml:"layout"`
	LayoutFile         string     `yaml:"layout_file"`
	InterfaceUsagePage uint16     `yaml:"interface_usage_page"`
	InterfaceUsage     uint16     `yaml:"interface_usage"`
}

type yamlPreset struct {
	ID      string            `yaml:"id"`
	Params  map[string]string `yaml:"params"`
	Keys    []string          `yaml:"keys"`
	Zones   []string          `yaml:"zones"`
	Enabled *bool             `yaml:"enabled"`
}

type yamlMask struct {
	Keys  []string `yaml:"keys"`
	Zones []string `yaml:"zones"`
}

type yamlProfile struct {
	DrawList []int            `yaml:"draw_list"`
	Enabled  []bool           `yaml:"enabled"`
	Masks    map[int]yamlMask `yaml:"masks"`
}

type yamlShortcut struct {
	Color  string              `yaml:"color"`
	Combos map[string][]string `yaml:"combos"`
}

type yamlHypr struct {
	Enabled         bool                    `yaml:"enabled"`
	EventsSocket    string                  `yaml:"events_socket"`
	DefaultProfile  string                  `yaml:"default_profile"`
	ClassToProfile  map[string]string       `yaml:"class_to_profile"`
	Profiles        map[string]yamlProfile  `yaml:"profiles"`
	EmptyDrawList   string                  `yaml:"empty_draw_list"`
	OverlayPreset   *int                    `yaml:"overlay_preset"`
	DefaultShortcut string                  `yaml:"default_shortcut"`
	ClassToShortcut map[string]string       `yaml:"class_to_shortcut"`
	Shortcuts       map[string]yamlShortcut `yaml:"shortcuts"`
}

type yamlConfig struct {
	Keyboard        yamlKeyboard        `yaml:"keyboard"`
	Transport       string              `yaml:"transport"`
	OpcServer       string              `yaml:"opc_server"`
	WsURL           string              `yaml:"ws_url"`
	FrameIntervalMs int                 `yaml:"frame_interval_ms"`
	ActivityWindow  float64             `yaml:"activity_window_seconds"`
	Zones           map[string][]string `yaml:"zones"`
	Presets         []yamlPreset        `yaml:"presets"`
	DrawList        []int               `yaml:"draw_list"`
	Hyprland        *yamlHypr           `yaml:"hyprland"`
}

// LoadConfig reads and resolves the configuration file.  Construction
// problems are fatal, the caller surfaces them and exits non zero.
func LoadConfig(path string, registry *preset.Registry) (cfg *RuntimeConfig, err errors.Error) {
	raw, errGo := os.ReadFile(path)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	parsed := yamlConfig{}
	if errGo = yaml.Unmarshal(raw, &parsed); errGo != nil {
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	kb, err := buildKeyboard(&parsed.Keyboard, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	cfg = &RuntimeConfig{
		Keyboard:       kb,
		FrameInterval:  time.Duration(parsed.FrameIntervalMs) * time.Millisecond,
		ActivityWindow: parsed.ActivityWindow,
	}
	if cfg.FrameInterval < time.Millisecond {
		cfg.FrameInterval = time.Millisecond
	}
	if parsed.FrameIntervalMs == 0 {
		cfg.FrameInterval = 33 * time.Millisecond
	}
	if cfg.ActivityWindow <= 0 {
		cfg.ActivityWindow = defaultActivityWindow
	}

	if parsed.Transport == "" {
		return nil, errors.New("transport must be provided").With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	cfg.Transport, err = NewTransport(parsed.Transport, TransportOptions{OpcServer: parsed.OpcServer, WsURL: parsed.WsURL})
	if err != nil {
		return nil, err
	}

	specs := parsed.Presets
	if len(specs) == 0 {
		specs = []yamlPreset{{ID: "static_color"}}
	}

	enabledOverride := false
	enabledList := []int{}
	for i, spec := range specs {
		p, err := registry.Create(spec.ID)
		if err != nil {
			return nil, err
		}
		if len(spec.Params) != 0 {
			p.Configure(spec.Params)
		}
		cfg.Presets = append(cfg.Presets, p)
		params := map[string]string{}
		for key, value := range spec.Params {
			params[key] = value
		}
		cfg.PresetParams = append(cfg.PresetParams, params)

		mask := allKeysMask(kb)
		if len(spec.Keys) != 0 || len(spec.Zones) != 0 {
			mask = maskFromLabels(kb, spec.Keys, spec.Zones, parsed.Zones)
		}
		cfg.Masks = append(cfg.Masks, mask)

		if spec.Enabled != nil {
			enabledOverride = true
			if *spec.Enabled {
				enabledList = append(enabledList, i)
			}
		}
	}

	// The draw list is the single profile representation.  Legacy
	// per-preset enabled flags are translated to an ascending draw list
	// at load time.
	cfg.DrawList = append([]int{}, parsed.DrawList...)
	if len(cfg.DrawList) == 0 && enabledOverride {
		cfg.DrawList = enabledList
	}

	if parsed.Hyprland != nil && parsed.Hyprland.Enabled {
		cfg.Hypr, err = buildHypr(parsed.Hyprland, kb, cfg.Masks, parsed.Zones)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func buildKeyboard(spec *yamlKeyboard, baseDir string) (kb *model.Keyboard, err errors.Error) {
	if spec.Name == "" {
		return nil, errors.New("keyboard.name must be provided").With("stack", stack.Trace().TrimRuntime())
	}
	if spec.VendorID == 0 || spec.ProductID == 0 {
		return nil, errors.New("keyboard vendor and product ids must be provided").
			With("keyboard", spec.Name).With("stack", stack.Trace().TrimRuntime())
	}
	if len(spec.PacketHeader) == 0 {
		return nil, errors.New("keyboard.packet_header must be provided").
			With("keyboard", spec.Name).With("stack", stack.Trace().TrimRuntime())
	}

	header := make([]byte, len(spec.PacketHeader))
	for i, value := range spec.PacketHeader {
		if value < 0 || value > 255 {
			return nil, errors.New("packet header byte out of range").With("keyboard", spec.Name).
				With("value", value).With("stack", stack.Trace().TrimRuntime())
		}
		header[i] = byte(value)
	}

	layout := spec.Layout
	if len(layout) == 0 && spec.LayoutFile != "" {
		layout, err = readLayoutFile(filepath.Join(baseDir, spec.LayoutFile))
		if err != nil {
			return nil, err
		}
	}

	kb, err = model.NewKeyboard(spec.Name, spec.VendorID, spec.ProductID, header, spec.PacketLength, layout)
	if err != nil {
		return nil, err
	}
	if spec.InterfaceUsagePage != 0 || spec.InterfaceUsage != 0 {
		kb.SetInterfaceUsage(spec.InterfaceUsagePage, spec.InterfaceUsage)
	}
	if keycodeMap := BuildKeycodeMap(kb); keycodeMap != nil {
		kb.SetKeycodeMap(keycodeMap)
	}
	return kb, nil
}

// readLayoutFile parses the comma separated layout rows, skipping blank
// lines and '#' comments
func readLayoutFile(path string) (layout [][]string, err errors.Error) {
	raw, errGo := os.ReadFile(path)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	for _, line := range strings.Split(string(raw), "\n") {
		if hash := strings.IndexByte(line, '#'); hash >= 0 {
			line = line[:hash]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := []string{}
		for _, cell := range strings.Split(line, ",") {
			if cell = strings.TrimSpace(cell); cell != "" {
				row = append(row, cell)
			}
		}
		if len(row) != 0 {
			layout = append(layout, row)
		}
	}

	if len(layout) == 0 {
		return nil, errors.New("layout file is empty").With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	return layout, nil
}

func allKeysMask(kb *model.Keyboard) (mask []bool) {
	mask = make([]bool, kb.KeyCount())
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// maskFromLabels builds a mask from explicit key labels plus named
// zones.  Unresolved labels are dropped.
func maskFromLabels(kb *model.Keyboard, keys []string, zoneNames []string, zones map[string][]string) (mask []bool) {
	mask = make([]bool, kb.KeyCount())
	set := func(labels []string) {
		for _, label := range labels {
			if index, isPresent := kb.IndexForKey(label); isPresent {
				mask[index] = true
			}
		}
	}
	set(keys)
	for _, name := range zoneNames {
		set(zones[name])
	}
	return mask
}

// parseModifiers turns "ctrl+shift" into its modifier bit mask.  The
// second result is false when any token is unknown.
func parseModifiers(combo string) (modmask int, ok bool) {
	for _, token := range strings.Split(combo, "+") {
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "ctrl":
			modmask |= ModCtrl
		case "shift":
			modmask |= ModShift
		case "alt":
			modmask |= ModAlt
		case "super", "meta":
			modmask |= ModSuper
		default:
			return 0, false
		}
	}
	return modmask, modmask != 0
}

func buildHypr(spec *yamlHypr, kb *model.Keyboard, baseMasks [][]bool, zones map[string][]string) (cfg *HyprConfig, err errors.Error) {
	cfg = &HyprConfig{
		Enabled:          true,
		EventsSocket:     spec.EventsSocket,
		DefaultProfile:   spec.DefaultProfile,
		ClassToProfile:   map[string]string{},
		ProfileMasks:     map[string][][]bool{},
		ProfileDrawOrder: map[string][]int{},
		OverlayPreset:    -1,
		DefaultShortcut:  spec.DefaultShortcut,
		ClassToShortcut:  map[string]string{},
		Shortcuts:        map[string]ShortcutProfile{},
	}
	for class, profile := range spec.ClassToProfile {
		cfg.ClassToProfile[class] = profile
	}
	for class, shortcut := range spec.ClassToShortcut {
		cfg.ClassToShortcut[class] = shortcut
	}
	if spec.OverlayPreset != nil {
		cfg.OverlayPreset = *spec.OverlayPreset
		if cfg.OverlayPreset >= len(baseMasks) {
			return nil, errors.New("overlay preset index out of range").
				With("index", cfg.OverlayPreset).With("presets", len(baseMasks)).
				With("stack", stack.Trace().TrimRuntime())
		}
	}

	for name, profile := range spec.Profiles {
		masks := make([][]bool, len(baseMasks))
		for i, base := range baseMasks {
			masks[i] = append([]bool{}, base...)
		}
		for index, maskSpec := range profile.Masks {
			if index < 0 || index >= len(masks) {
				continue
			}
			masks[index] = maskFromLabels(kb, maskSpec.Keys, maskSpec.Zones, zones)
		}

		order := append([]int{}, profile.DrawList...)
		if len(order) == 0 && len(profile.Enabled) != 0 {
			// Legacy enabled flags become an ascending draw list
			for i, enabled := range profile.Enabled {
				if enabled && i < len(baseMasks) {
					order = append(order, i)
				}
			}
		}
		if len(order) == 0 && spec.EmptyDrawList == "keep" {
			// The profile applies nothing, the previous composition stays
			continue
		}
		if len(order) == 0 {
			// An explicitly empty profile blanks the device, expressed
			// as all masks off so the fallback composition stays black
			for i := range masks {
				masks[i] = make([]bool, kb.KeyCount())
			}
		}

		cfg.ProfileMasks[name] = masks
		cfg.ProfileDrawOrder[name] = order
	}

	for name, shortcut := range spec.Shortcuts {
		combos := map[int][]string{}
		for combo, labels := range shortcut.Combos {
			modmask, ok := parseModifiers(combo)
			if !ok {
				return nil, errors.New("unknown modifier combination").With("shortcut", name).
					With("combo", combo).With("stack", stack.Trace().TrimRuntime())
			}
			combos[modmask] = append([]string{}, labels...)
		}
		cfg.Shortcuts[name] = ShortcutProfile{Color: shortcut.Color, Combos: combos}
	}

	return cfg, nil
}
