package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SurfaceConfig maps a MIDI control surface onto the four encoders, their
// push switches and the LED strip
type SurfaceConfig struct {
	PortName    string `yaml:"portName"`
	AutoConnect bool   `yaml:"autoConnect"`
	Channel     int    `yaml:"channel"`     // MIDI channel 0-15
	EncoderCCs  [4]int `yaml:"encoderCCs"`  // relative CCs for encoders A-D
	SwitchNotes [4]int `yaml:"switchNotes"` // push switches A-D
	LEDBaseNote int    `yaml:"ledBaseNote"` // LED i is note LEDBaseNote+i
	BoldPress   int    `yaml:"boldPressMs"`
	LongPress   int    `yaml:"longPressMs"`
}

// OSCConfig is the remote control listener
type OSCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Root    string `yaml:"root"`
}

// UIConfig stores display preferences
type UIConfig struct {
	VisibleStrips int  `yaml:"visibleStrips"` // 0 = from DisplayWidth
	DisplayWidth  int  `yaml:"displayWidth"`
	TickMs        int  `yaml:"tickMs"`
	Demo          bool `yaml:"demo"` // feed a test signal into the meters
}

// Config is the main configuration structure
type Config struct {
	Revision      string          `yaml:"revision"` // LED wiring: v5 or z2
	LEDBrightness float64         `yaml:"ledBrightness"`
	Surfaces      []SurfaceConfig `yaml:"surfaces,omitempty"`
	OSC           OSCConfig       `yaml:"osc"`
	UI            UIConfig        `yaml:"ui"`
	SnapshotDir   string          `yaml:"snapshotDir,omitempty"`
	LogLevel      string          `yaml:"logLevel"`
	Chains        []ChainConfig   `yaml:"chains,omitempty"`
}

// ChainConfig is a chain created at startup
type ChainConfig struct {
	Name  string `yaml:"name"`
	Audio bool   `yaml:"audio"`
}

// DefaultSurface is the generic 4-knob layout
func DefaultSurface() SurfaceConfig {
	return SurfaceConfig{
		PortName:    "Mixsurface",
		AutoConnect: true,
		EncoderCCs:  [4]int{16, 17, 18, 19},
		SwitchNotes: [4]int{36, 37, 38, 39},
		LEDBaseNote: 60,
		BoldPress:   300,
		LongPress:   2000,
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Revision:      "v5",
		LEDBrightness: 1,
		Surfaces:      []SurfaceConfig{DefaultSurface()},
		OSC: OSCConfig{
			Enabled: true,
			Listen:  ":1370",
			Root:    "/mixer",
		},
		UI: UIConfig{
			DisplayWidth: 800,
			TickMs:       40,
			Demo:         true,
		},
		LogLevel: "debug",
		Chains: []ChainConfig{
			{Name: "Piano", Audio: true},
			{Name: "Bass", Audio: true},
			{Name: "Pads", Audio: true},
			{Name: "MIDI Out", Audio: false},
		},
	}
}

// Tick returns the UI/poll interval
func (c *Config) Tick() time.Duration {
	if c.UI.TickMs <= 0 {
		return 40 * time.Millisecond
	}
	return time.Duration(c.UI.TickMs) * time.Millisecond
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home dir")
	}
	return filepath.Join(home, ".config", "go-mixsurface"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

// FindSurface finds a surface config by port name
func (c *Config) FindSurface(portName string) *SurfaceConfig {
	for i := range c.Surfaces {
		if c.Surfaces[i].PortName == portName {
			return &c.Surfaces[i]
		}
	}
	return nil
}

// AddSurface adds or updates a surface config
func (c *Config) AddSurface(s SurfaceConfig) {
	for i := range c.Surfaces {
		if c.Surfaces[i].PortName == s.PortName {
			c.Surfaces[i] = s
			return
		}
	}
	c.Surfaces = append(c.Surfaces, s)
}

// AutoConnectSurfaces returns surfaces with autoConnect enabled
func (c *Config) AutoConnectSurfaces() []SurfaceConfig {
	var result []SurfaceConfig
	for _, s := range c.Surfaces {
		if s.AutoConnect {
			result = append(result, s)
		}
	}
	return result
}
