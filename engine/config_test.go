package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/trigon/engine/math"
)

func TestParseHexColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want math.Vec4
	}{
		{"0xffffffff", math.NewVec4(1, 1, 1, 1)},
		{"0x000000ff", math.NewVec4(0, 0, 0, 1)},
		{"#ff0000ff", math.NewVec4(1, 0, 0, 1)},
		{"0xFF4C29FF", math.NewVec4(255.0/255.0, 76.0/255.0, 41.0/255.0, 1)},
	} {
		got, err := ParseHexColor(tc.in)
		if err != nil {
			t.Fatalf("ParseHexColor(%q): %s", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseHexColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseHexColorRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "0x18", "181818", "0xzz1818ff", "0x181818ffff"} {
		if _, err := ParseHexColor(in); err == nil {
			t.Errorf("ParseHexColor(%q): expected error", in)
		}
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %s", err)
	}
	defer c.Close()

	params := c.Snapshot()
	defaults := DefaultParameters()
	if params != defaults {
		t.Errorf("parameters = %+v, want defaults %+v", params, defaults)
	}
	if c.ApplicationName == "" || c.Width == 0 || c.Height == 0 {
		t.Errorf("window settings not defaulted: %q %dx%d", c.ApplicationName, c.Width, c.Height)
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[application]
name = "triangles"
width = 800
height = 600

[camera]
fov = 75.0
render_distance = 15000.0
linear_velocity = 250.0
linear_velocity_fast = 2500.0
angular_velocity = 45.0

[lighting]
dir_yaw = 10.0
dir_pitch = -20.0
ambient_strength = 0.25
color = "0xff0000ff"

[scene]
clear_color = "0x000000ff"
colors = ["0xffffffff", "0x000000ff"]
draw_broad_phase = true
draw_bounding_boxes = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %s", err)
	}
	defer c.Close()

	if c.ApplicationName != "triangles" || c.Width != 800 || c.Height != 600 {
		t.Errorf("window settings = %q %dx%d", c.ApplicationName, c.Width, c.Height)
	}

	params := c.Snapshot()
	if params.FOVDegrees != 75.0 || params.RenderDistance != 15000.0 {
		t.Errorf("camera = fov %f distance %f", params.FOVDegrees, params.RenderDistance)
	}
	if params.LinearVelocity != 250.0 || params.LinearVelocityFast != 2500.0 || params.AngularVelocity != 45.0 {
		t.Errorf("velocities = %f %f %f", params.LinearVelocity, params.LinearVelocityFast, params.AngularVelocity)
	}
	if params.LightYawDegrees != 10.0 || params.LightPitchDegrees != -20.0 {
		t.Errorf("light direction = yaw %f pitch %f", params.LightYawDegrees, params.LightPitchDegrees)
	}
	if params.AmbientStrength != 0.25 {
		t.Errorf("ambient = %f", params.AmbientStrength)
	}
	if params.LightColor != math.NewVec4(1, 0, 0, 1) {
		t.Errorf("light color = %+v", params.LightColor)
	}
	if params.ClearColor != math.NewVec4(0, 0, 0, 1) {
		t.Errorf("clear color = %+v", params.ClearColor)
	}
	if params.Palette[0] != math.NewVec4(1, 1, 1, 1) || params.Palette[1] != math.NewVec4(0, 0, 0, 1) {
		t.Errorf("palette overrides = %+v", params.Palette)
	}
	// Unlisted palette slots keep their defaults.
	if params.Palette[2] != DefaultParameters().Palette[2] {
		t.Errorf("palette[2] = %+v", params.Palette[2])
	}
	if !params.DrawBroadPhase || !params.DrawBoundingBoxes {
		t.Errorf("draw switches = %v %v", params.DrawBroadPhase, params.DrawBoundingBoxes)
	}
}

func TestConfigRejectsBadColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[scene]\nclear_color = \"purple\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed color")
	}
}

func TestConfigReloadKeepsOldValuesOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[camera]\nfov = 75.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %s", err)
	}
	defer c.Close()

	if err := os.WriteFile(path, []byte("not toml at all ["), 0o644); err != nil {
		t.Fatal(err)
	}
	// Exercise the reload path directly; the watcher goroutine does the same.
	if err := c.applyFile(); err == nil {
		t.Fatal("expected parse error")
	}
	if got := c.Snapshot().FOVDegrees; got != 75.0 {
		t.Errorf("fov after failed reload = %f, want 75", got)
	}
}
