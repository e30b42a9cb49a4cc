package capability

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestClampToCommanderColors(t *testing.T) {
	tests := []struct {
		name      string
		produced  ColorSet
		commander ColorSet
		want      ColorSet
	}{
		{
			name:      "rainbow clamps to commander",
			produced:  WUBRG,
			commander: Blue | Green,
			want:      Blue | Green,
		},
		{
			name:      "rainbow with colorless clamps",
			produced:  WUBRG | Colorless,
			commander: Red,
			want:      Red,
		},
		{
			name:      "rainbow for colorless commander",
			produced:  WUBRG,
			commander: 0,
			want:      0,
		},
		{
			name:      "dual land untouched",
			produced:  White | Blue,
			commander: Blue | Green,
			want:      White | Blue,
		},
		{
			name:      "four colors is not rainbow",
			produced:  White | Blue | Black | Red,
			commander: Green,
			want:      White | Blue | Black | Red,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampToCommanderColors(tt.produced, tt.commander)
			if got != tt.want {
				t.Errorf("ClampToCommanderColors() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseColors(t *testing.T) {
	got, err := ParseColors("W", "u", "BR")
	if err != nil {
		t.Fatalf("ParseColors() error = %v", err)
	}
	if got != White|Blue|Black|Red {
		t.Errorf("ParseColors() = %s, want WUBR", got)
	}
	if got.String() != "WUBR" {
		t.Errorf("String() = %q, want WUBR", got.String())
	}

	if _, err := ParseColors("X"); err == nil {
		t.Error("expected error for unknown symbol")
	}
}

func TestColorSetJSON(t *testing.T) {
	data, err := json.Marshal(Green | White)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["W","G"]` {
		t.Errorf("Marshal() = %s, want [\"W\",\"G\"]", data)
	}

	var set ColorSet
	if err := json.Unmarshal([]byte(`["R","C"]`), &set); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if set != Red|Colorless {
		t.Errorf("Unmarshal() = %s, want RC", set)
	}
}

func TestCardCategories(t *testing.T) {
	one := 1
	tests := []struct {
		name       string
		card       Card
		land       bool
		ramp       bool
		engine     bool
		burst      bool
		producedBG ColorSet
	}{
		{
			name: "basic forest",
			card: Card{
				Types:         []string{"basic", "land", "forest"},
				ManaAbilities: []ManaAbility{{Produces: Green, Repeatable: true, Source: SourceLand}},
			},
			land:       true,
			producedBG: Green,
		},
		{
			name: "mana rock",
			card: Card{
				Types:         []string{"artifact"},
				ManaAbilities: []ManaAbility{{Produces: Colorless, Repeatable: true, Source: SourceNonland}},
				ManaValue:     floatPtr(2),
			},
			ramp:       true,
			producedBG: Colorless,
		},
		{
			name: "ritual is not ramp",
			card: Card{
				Types:         []string{"instant"},
				ManaAbilities: []ManaAbility{{Produces: Black, Repeatable: false, Source: SourceNonland}},
			},
			producedBG: Black,
		},
		{
			name: "rainbow dork",
			card: Card{
				Types:         []string{"creature"},
				ManaAbilities: []ManaAbility{{Produces: WUBRG, Repeatable: true, Source: SourceNonland}},
			},
			ramp:       true,
			producedBG: Black | Green,
		},
		{
			name: "draw engine",
			card: Card{
				Types:         []string{"enchantment"},
				DrawAbilities: []DrawAbility{{Amount: &one, Repeatable: true}},
			},
			engine: true,
		},
		{
			name: "burst draw",
			card: Card{
				Types:         []string{"sorcery"},
				DrawAbilities: []DrawAbility{{Amount: nil}},
			},
			burst: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.card
			if got := c.IsLand(); got != tt.land {
				t.Errorf("IsLand() = %v, want %v", got, tt.land)
			}
			if got := c.IsRamp(); got != tt.ramp {
				t.Errorf("IsRamp() = %v, want %v", got, tt.ramp)
			}
			if got := c.IsDrawEngine(); got != tt.engine {
				t.Errorf("IsDrawEngine() = %v, want %v", got, tt.engine)
			}
			if got := c.IsBurstDraw(); got != tt.burst {
				t.Errorf("IsBurstDraw() = %v, want %v", got, tt.burst)
			}
			if got := c.ProducedColors(Black | Green); got != tt.producedBG {
				t.Errorf("ProducedColors() = %s, want %s", got, tt.producedBG)
			}
		})
	}
}

func TestPips(t *testing.T) {
	c := Card{ManaCost: "{2}{W}{W}{U/B}{G/P}{C}{X}"}
	got := c.Pips()
	want := map[string]int{"W": 2, "U": 1, "B": 1, "G": 1}
	if len(got) != len(want) {
		t.Fatalf("Pips() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Pips()[%s] = %d, want %d", k, got[k], v)
		}
	}
}

func TestModelLookupMissingIsEmpty(t *testing.T) {
	m := NewModel(Card{Name: "Sol Ring", Types: []string{"Artifact"}})

	got := m.Lookup("Mana Crypt")
	if got == nil {
		t.Fatal("Lookup() returned nil for missing card")
	}
	if got.IsLand() || got.ProducesMana() || got.ManaValue != nil || len(got.DrawAbilities) != 0 {
		t.Errorf("missing card should be empty, got %+v", got)
	}

	if !m.Lookup("sol ring").HasType("artifact") {
		t.Error("case-insensitive lookup should find Sol Ring with normalized types")
	}
	if !m.Has("SOL RING") {
		t.Error("Has() should be case-insensitive")
	}
}

func TestModelSuggest(t *testing.T) {
	m := NewModel(
		Card{Name: "Arcane Signet"},
		Card{Name: "Command Tower"},
		Card{Name: "Rhystic Study"},
	)

	got, ok := m.Suggest("Comand Tower")
	if !ok || got != "Command Tower" {
		t.Errorf("Suggest() = %q, %v; want Command Tower", got, ok)
	}

	if _, ok := m.Suggest("Completely Different"); ok {
		t.Error("Suggest() should not match distant names")
	}
}

func TestLoadModel(t *testing.T) {
	input := `[
		{"name": "Forest", "types": ["Basic", "Land", "Forest"],
		 "mana_abilities": [{"produces": ["G"], "repeatable": true, "source": "land"}],
		 "mana_value": null},
		{"name": "Cultivate", "types": ["sorcery"], "mana_value": 3, "mana_cost": "{2}{G}",
		 "color_identity": ["G"]}
	]`

	m, err := LoadModel(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	forest := m.Lookup("Forest")
	if !forest.IsLand() || forest.ProducedColors(Green) != Green {
		t.Errorf("Forest decoded incorrectly: %+v", forest)
	}
	cultivate := m.Lookup("Cultivate")
	if cultivate.ManaValue == nil || *cultivate.ManaValue != 3 {
		t.Errorf("Cultivate mana value = %v, want 3", cultivate.ManaValue)
	}
	if cultivate.ColorIdentity != Green {
		t.Errorf("Cultivate identity = %s, want G", cultivate.ColorIdentity)
	}
}

func TestLoadModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed", input: `{"name":`},
		{name: "missing name", input: `[{"types":["land"]}]`},
		{name: "duplicate", input: `[{"name":"Island"},{"name":"Island"}]`},
		{name: "bad color", input: `[{"name":"Odd","color_identity":["Q"]}]`},
		{name: "negative mana value", input: `[{"name":"Odd","mana_value":-1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadModel(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("LoadModel() error = %v, want ErrInvalidModel", err)
			}
		})
	}
}
