package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

type fakeSettings struct {
	Name    string `yaml:"name"`
	Retries int    `yaml:"retries"`
}

func TestServiceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fake.yaml")

	in := &fakeSettings{Name: "studio", Retries: 3}
	if err := SaveService(path, in); err != nil {
		t.Fatalf("SaveService: %v", err)
	}

	out, err := LoadService[fakeSettings](path)
	if err != nil {
		t.Fatalf("LoadService: %v", err)
	}
	if out.Name != "studio" || out.Retries != 3 {
		t.Errorf("loaded %+v", out)
	}
}

func TestLoadServiceMissing(t *testing.T) {
	_, err := LoadService[fakeSettings](filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
}
