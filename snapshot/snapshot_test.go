package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-mixsurface/mixer"
)

func testStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	s := &Store{Dir: t.TempDir(), Now: func() time.Time { return now }}
	return s, &now
}

func sampleState() []mixer.ChannelState {
	st := make([]mixer.ChannelState, mixer.MaxChannels+1)
	for i := range st {
		st[i] = mixer.DefaultChannelState
	}
	st[0] = mixer.ChannelState{Level: 0.5, Balance: -0.2, Mute: true}
	st[mixer.MainChannel] = mixer.ChannelState{Level: 1, Solo: true, Mono: true}
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	want := sampleState()

	file, err := s.Save("live set", want)
	if err != nil {
		t.Fatal(err)
	}
	if file != "2024-01-15_14-30-00_live-set.json" {
		t.Errorf("filename = %q", file)
	}

	got, err := s.Load(file)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	s, now := testStore(t)
	st := sampleState()
	s.Save("", st)
	*now = now.Add(time.Hour)
	s.Save("later", st)
	os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(s.Dir, "random.json"), []byte("[]"), 0644)

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d, want 2", len(list))
	}
	if list[0].Name != "later" || list[1].Name != "" {
		t.Errorf("order = %q, %q", list[0].Name, list[1].Name)
	}
	if list[1].Label() != "2024-01-15 14:30:00" {
		t.Errorf("label = %q", list[1].Label())
	}

	latest, err := s.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if latest[0].Level != 0.5 {
		t.Errorf("latest level = %v", latest[0].Level)
	}
}

func TestRenameKeepsTimestamp(t *testing.T) {
	s, _ := testStore(t)
	file, _ := s.Save("a", sampleState())
	next, err := s.Rename(file, "b/c")
	if err != nil {
		t.Fatal(err)
	}
	if next != "2024-01-15_14-30-00_b-c.json" {
		t.Errorf("renamed to %q", next)
	}
	if err := s.Delete(next); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.List(); len(list) != 0 {
		t.Errorf("%d left after delete", len(list))
	}
}

func TestLoadErrors(t *testing.T) {
	s, _ := testStore(t)
	if _, err := s.Load(""); err == nil {
		t.Error("empty store loaded")
	}
	if _, err := s.Save("short", make([]mixer.ChannelState, 3)); err == nil {
		t.Error("short state saved")
	}
	os.WriteFile(filepath.Join(s.Dir, "2024-01-01_00-00-00.json"), []byte("[{}]"), 0644)
	if _, err := s.Load("2024-01-01_00-00-00.json"); err == nil {
		t.Error("short file loaded")
	}
}

func TestMissingDir(t *testing.T) {
	s := &Store{Dir: filepath.Join(t.TempDir(), "nope"), Now: time.Now}
	list, err := s.List()
	if err != nil || len(list) != 0 {
		t.Errorf("list = %v, %v", list, err)
	}
}
