package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// Parameters is the tunable state read fresh on every tick. Edits to the
// configuration file land here through the watcher without restarting.
type Parameters struct {
	LinearVelocity     float32
	LinearVelocityFast float32
	// AngularVelocity is in degrees per second.
	AngularVelocity float32
	RenderDistance  float32
	FOVDegrees      float32

	LightYawDegrees   float32
	LightPitchDegrees float32
	AmbientStrength   float32
	LightColor        math.Vec4

	ClearColor math.Vec4
	Palette    [renderer.PaletteSize]math.Vec4

	DrawBroadPhase    bool
	DrawBoundingBoxes bool
}

// DefaultParameters returns the built-in tuning used when the configuration
// file is absent or a field is missing from it.
func DefaultParameters() Parameters {
	return Parameters{
		LinearVelocity:     500.0,
		LinearVelocityFast: 5000.0,
		AngularVelocity:    30.0,
		RenderDistance:     30000.0,
		FOVDegrees:         90.0,
		AmbientStrength:    0.1,
		LightColor:         math.NewVec4(1, 1, 1, 1),
		ClearColor:         mustHexColor("0x181818ff"),
		Palette: [renderer.PaletteSize]math.Vec4{
			mustHexColor("0x89c4e1ff"),
			mustHexColor("0xff4c29ff"),
			mustHexColor("0x2f363aff"),
			mustHexColor("0x338568ff"),
		},
	}
}

// configFile mirrors the on-disk TOML layout. Colors are hex RGBA strings and
// get parsed into vectors when the file is applied.
type configFile struct {
	Application struct {
		Name       string `toml:"name"`
		Width      uint32 `toml:"width"`
		Height     uint32 `toml:"height"`
		Validation bool   `toml:"validation"`
	} `toml:"application"`
	Camera struct {
		FOV                float32 `toml:"fov"`
		RenderDistance     float32 `toml:"render_distance"`
		LinearVelocity     float32 `toml:"linear_velocity"`
		LinearVelocityFast float32 `toml:"linear_velocity_fast"`
		AngularVelocity    float32 `toml:"angular_velocity"`
	} `toml:"camera"`
	Lighting struct {
		DirYaw          float32 `toml:"dir_yaw"`
		DirPitch        float32 `toml:"dir_pitch"`
		AmbientStrength float32 `toml:"ambient_strength"`
		Color           string  `toml:"color"`
	} `toml:"lighting"`
	Scene struct {
		ClearColor        string   `toml:"clear_color"`
		Colors            []string `toml:"colors"`
		DrawBroadPhase    bool     `toml:"draw_broad_phase"`
		DrawBoundingBoxes bool     `toml:"draw_bounding_boxes"`
	} `toml:"scene"`
}

// Config is the live application configuration. The window settings are fixed
// at load time; Parameters reloads whenever the backing file is rewritten.
type Config struct {
	ApplicationName string
	Width           uint32
	Height          uint32
	// Validation enables the Vulkan validation layer when available.
	Validation bool

	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu     sync.RWMutex
	params Parameters
}

// LoadConfig reads the TOML file at path and starts watching it for changes.
// A missing file is not an error; the defaults apply until one appears.
func LoadConfig(path string) (*Config, error) {
	c := &Config{
		ApplicationName: "trigon",
		Width:           1280,
		Height:          720,
		path:            path,
		params:          DefaultParameters(),
		done:            make(chan struct{}),
	}

	if err := c.applyFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		core.LogDebug("configuration file %s not found, using defaults", path)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	c.watcher = fsWatch

	// Watch the directory, not the file: editors replace files on save and
	// the replacement would otherwise drop off the watch list.
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go c.watch()

	return c, nil
}

// Snapshot returns a copy of the current parameters. Callers take one per
// tick so a mid-frame reload cannot tear the values.
func (c *Config) Snapshot() Parameters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

func (c *Config) Close() error {
	close(c.done)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Config) watch() {
	for {
		select {
		case e := <-c.watcher.Events:
			if filepath.Clean(e.Name) != filepath.Clean(c.path) {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := c.applyFile(); err != nil {
				core.LogWarn("configuration reload failed: %s", err.Error())
				continue
			}
			core.LogInfo("configuration reloaded from %s", c.path)

		case e := <-c.watcher.Errors:
			core.LogError(e.Error())

		case <-c.done:
			return
		}
	}
}

// applyFile re-reads the backing file and swaps in the parsed parameters.
// Parse or color errors leave the previous parameters untouched.
func (c *Config) applyFile() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var file configFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", c.path, err)
	}
	params, err := file.toParameters()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if file.Application.Name != "" {
		c.ApplicationName = file.Application.Name
	}
	if file.Application.Width > 0 {
		c.Width = file.Application.Width
	}
	if file.Application.Height > 0 {
		c.Height = file.Application.Height
	}
	c.Validation = file.Application.Validation
	c.params = params
	c.mu.Unlock()
	return nil
}

func (f *configFile) toParameters() (Parameters, error) {
	p := DefaultParameters()

	if f.Camera.FOV > 0 {
		p.FOVDegrees = f.Camera.FOV
	}
	if f.Camera.RenderDistance > 0 {
		p.RenderDistance = f.Camera.RenderDistance
	}
	if f.Camera.LinearVelocity > 0 {
		p.LinearVelocity = f.Camera.LinearVelocity
	}
	if f.Camera.LinearVelocityFast > 0 {
		p.LinearVelocityFast = f.Camera.LinearVelocityFast
	}
	if f.Camera.AngularVelocity > 0 {
		p.AngularVelocity = f.Camera.AngularVelocity
	}

	p.LightYawDegrees = f.Lighting.DirYaw
	p.LightPitchDegrees = f.Lighting.DirPitch
	if f.Lighting.AmbientStrength > 0 {
		p.AmbientStrength = f.Lighting.AmbientStrength
	}
	if f.Lighting.Color != "" {
		color, err := ParseHexColor(f.Lighting.Color)
		if err != nil {
			return p, err
		}
		p.LightColor = color
	}

	if f.Scene.ClearColor != "" {
		color, err := ParseHexColor(f.Scene.ClearColor)
		if err != nil {
			return p, err
		}
		p.ClearColor = color
	}
	if len(f.Scene.Colors) > renderer.PaletteSize {
		return p, fmt.Errorf("too many scene colors: %d, palette holds %d", len(f.Scene.Colors), renderer.PaletteSize)
	}
	for i, s := range f.Scene.Colors {
		color, err := ParseHexColor(s)
		if err != nil {
			return p, err
		}
		p.Palette[i] = color
	}
	p.DrawBroadPhase = f.Scene.DrawBroadPhase
	p.DrawBoundingBoxes = f.Scene.DrawBoundingBoxes

	return p, nil
}

// ParseHexColor converts an RGBA hex string such as "0x181818ff" or
// "#181818ff" into a normalized color vector.
func ParseHexColor(s string) (math.Vec4, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "#")
	if len(hex) != 8 {
		return math.Vec4{}, fmt.Errorf("color %q: want 8 hex digits RGBA", s)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return math.Vec4{}, fmt.Errorf("color %q: %w", s, err)
	}
	return math.NewVec4(
		float32(value>>24&0xff)/255.0,
		float32(value>>16&0xff)/255.0,
		float32(value>>8&0xff)/255.0,
		float32(value&0xff)/255.0,
	), nil
}

func mustHexColor(s string) math.Vec4 {
	color, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return color
}
