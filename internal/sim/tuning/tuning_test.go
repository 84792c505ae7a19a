package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := []byte("seed: 99\nspawn_chance: 0.25\ntarget_value: 32\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != 99 || got.SpawnChance != 0.25 || got.TargetValue != 32 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	// Untouched fields keep defaults.
	if got.CellSize != Defaults().CellSize || got.Colors.Near != Defaults().Colors.Near {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"chance": "spawn_chance: 1.5\n",
		"size":   "cell_size: 0\n",
		"target": "target_value: 13\n",
		"radii":  "near_radius: 5\nmid_radius: 2\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
