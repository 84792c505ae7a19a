package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	// Grid geometry.
	OriginLat float64 `yaml:"origin_lat"`
	OriginLng float64 `yaml:"origin_lng"`
	CellSize  float64 `yaml:"cell_size"`

	// Generation.
	Seed        int64   `yaml:"seed"`
	SpawnChance float64 `yaml:"spawn_chance"`

	// Viewport and interaction.
	ViewportPadding   int `yaml:"viewport_padding"`
	InteractionRadius int `yaml:"interaction_radius"`
	NearRadius        int `yaml:"near_radius"`
	MidRadius         int `yaml:"mid_radius"`

	TargetValue int `yaml:"target_value"`

	Colors Colors `yaml:"colors"`
}

// Colors are the cell fill colors by distance tier, as CSS hex strings.
type Colors struct {
	Near   string `yaml:"near"`
	Mid    string `yaml:"mid"`
	Far    string `yaml:"far"`
	Border string `yaml:"border"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:   "1.0",
		OriginLat:         36.98949379578401,
		OriginLng:         -122.06277128548504,
		CellSize:          0.0001,
		Seed:              1337,
		SpawnChance:       0.1,
		ViewportPadding:   2,
		InteractionRadius: 2,
		NearRadius:        2,
		MidRadius:         5,
		TargetValue:       16,
		Colors: Colors{
			Near:   "#2e7d32",
			Mid:    "#f9a825",
			Far:    "#90a4ae",
			Border: "#444444",
		},
	}
}

// Load reads path over Defaults, so a partial file only overrides what it
// names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %v", t.CellSize)
	}
	if t.SpawnChance < 0 || t.SpawnChance > 1 {
		return fmt.Errorf("spawn_chance must be in [0,1], got %v", t.SpawnChance)
	}
	if t.ViewportPadding < 0 {
		return fmt.Errorf("viewport_padding must be >= 0, got %d", t.ViewportPadding)
	}
	if t.InteractionRadius < 0 {
		return fmt.Errorf("interaction_radius must be >= 0, got %d", t.InteractionRadius)
	}
	if t.NearRadius < 0 || t.MidRadius < t.NearRadius {
		return fmt.Errorf("color radii must satisfy 0 <= near <= mid, got near=%d mid=%d", t.NearRadius, t.MidRadius)
	}
	if t.TargetValue < 2 || t.TargetValue&(t.TargetValue-1) != 0 {
		return fmt.Errorf("target_value must be a power of two >= 2, got %d", t.TargetValue)
	}
	return nil
}
