package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Revision != "v5" || cfg.OSC.Root != "/mixer" || cfg.Tick() != 40*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.AutoConnectSurfaces()) != 1 {
		t.Error("default surface should auto-connect")
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "revision: z2\nui:\n  visibleStrips: 6\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Revision != "z2" || cfg.UI.VisibleStrips != 6 {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.OSC.Listen != ":1370" || cfg.LEDBrightness != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.AddSurface(SurfaceConfig{PortName: "Knobs", EncoderCCs: [4]int{1, 2, 3, 4}})
	cfg.AddSurface(SurfaceConfig{PortName: "Knobs", EncoderCCs: [4]int{5, 6, 7, 8}})
	if err := cfg.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := got.FindSurface("Knobs")
	if s == nil {
		t.Fatal("surface not saved")
	}
	if s.EncoderCCs != [4]int{5, 6, 7, 8} {
		t.Errorf("ccs = %v", s.EncoderCCs)
	}
	if len(got.Surfaces) != 2 {
		t.Errorf("%d surfaces, want 2", len(got.Surfaces))
	}
}

func TestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("ui: [nope"), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("bad yaml accepted")
	}
}
