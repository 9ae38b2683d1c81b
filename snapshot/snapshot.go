// Package snapshot stores mixer states as timestamped JSON files.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go-mixsurface/mixer"
)

const stampLayout = "2006-01-02_15-04-05"

// Info describes one saved snapshot
type Info struct {
	Filename  string
	Name      string // empty if unnamed
	Timestamp time.Time
}

// Label is the name, or the timestamp for unnamed snapshots
func (i Info) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Timestamp.Format("2006-01-02 15:04:05")
}

// Store is a directory of snapshot files
type Store struct {
	Dir string
	Now func() time.Time
}

// DefaultDir returns ~/.config/go-mixsurface/snapshots
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home dir")
	}
	return filepath.Join(home, ".config", "go-mixsurface", "snapshots"), nil
}

// NewStore opens dir, or the default directory when dir is empty
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{Dir: dir, Now: time.Now}, nil
}

// List returns the snapshots newest first
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, errors.Wrapf(err, "read %s", s.Dir)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseFilename(entry.Name()); ok {
			out = append(out, info)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// parseFilename accepts 2024-01-15_14-30-00.json and 2024-01-15_14-30-00_name.json
func parseFilename(name string) (Info, bool) {
	if !strings.HasSuffix(name, ".json") {
		return Info{}, false
	}
	base := strings.TrimSuffix(name, ".json")
	if len(base) < len(stampLayout) {
		return Info{}, false
	}
	ts, err := time.Parse(stampLayout, base[:len(stampLayout)])
	if err != nil {
		return Info{}, false
	}
	info := Info{Filename: name, Timestamp: ts}
	rest := base[len(stampLayout):]
	if len(rest) > 1 && rest[0] == '_' {
		info.Name = rest[1:]
	}
	return info, true
}

func (s *Store) filename(name string) string {
	stamp := s.Now().Format(stampLayout)
	if name = sanitize(name); name != "" {
		return stamp + "_" + name + ".json"
	}
	return stamp + ".json"
}

// Save writes state under a new timestamped file and returns its name
func (s *Store) Save(name string, state []mixer.ChannelState) (string, error) {
	if len(state) != mixer.MaxChannels+1 {
		return "", errors.Errorf("snapshot needs %d channels, got %d", mixer.MaxChannels+1, len(state))
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", s.Dir)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}

	file := s.filename(name)
	if err := os.WriteFile(filepath.Join(s.Dir, file), data, 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", file)
	}
	return file, nil
}

// Load reads a snapshot, the newest one when filename is empty
func (s *Store) Load(filename string) ([]mixer.ChannelState, error) {
	if filename == "" {
		saves, err := s.List()
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, errors.Errorf("no snapshots in %s", s.Dir)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, filename))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	var state []mixer.ChannelState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	if len(state) != mixer.MaxChannels+1 {
		return nil, errors.Errorf("%s has %d channels, want %d", filename, len(state), mixer.MaxChannels+1)
	}
	return state, nil
}

// Delete removes a snapshot file
func (s *Store) Delete(filename string) error {
	return errors.Wrapf(os.Remove(filepath.Join(s.Dir, filename)), "delete %s", filename)
}

// Rename changes the name part of a snapshot and keeps its timestamp
func (s *Store) Rename(filename, newName string) (string, error) {
	info, ok := parseFilename(filename)
	if !ok {
		return "", errors.Errorf("invalid snapshot filename %q", filename)
	}
	stamp := info.Timestamp.Format(stampLayout)
	next := stamp + ".json"
	if newName = sanitize(newName); newName != "" {
		next = stamp + "_" + newName + ".json"
	}
	if err := os.Rename(filepath.Join(s.Dir, filename), filepath.Join(s.Dir, next)); err != nil {
		return "", errors.Wrapf(err, "rename %s", filename)
	}
	return next, nil
}

var unsafe = strings.NewReplacer(
	" ", "-", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

func sanitize(name string) string {
	return unsafe.Replace(strings.TrimSpace(name))
}
