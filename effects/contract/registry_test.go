package contract

import (
	"errors"
	"testing"
)

func TestRegistryValidate(t *testing.T) {
	good := Registry{
		"fireball": {Direction: [3]float64{0, 0, 1}, Speed: 30},
		"zone":     {Kind: EntityKindAreaEffect, Radius: 3},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid registry rejected: %v", err)
	}

	cases := map[string]Registry{
		"empty name":   {" ": {Speed: 30}},
		"nil template": {"fireball": nil},
		"zero speed":   {"fireball": {Direction: [3]float64{0, 0, 1}}},
	}
	for name, registry := range cases {
		if err := registry.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestRegistryResolveUnknownType(t *testing.T) {
	registry := Registry{}
	if _, err := registry.Resolve("ghost", SpawnConfig{}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRegistryResolveMergesOverrides(t *testing.T) {
	registry := Registry{
		"fireball": {
			Direction:   [3]float64{0, 0, 1},
			Speed:       30,
			Duration:    3000,
			MaxDistance: 60,
			Impact:      ImpactConsume,
			Payload:     []EffectPayload{{Kind: PayloadAreaDamage, Magnitude: 40, Radius: 8}},
		},
	}

	resolved, err := registry.Resolve("fireball", SpawnConfig{
		StartPosition: [3]float64{1, 2, 3},
		Direction:     [3]float64{1, 0, 0},
		Speed:         45,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.StartPosition != [3]float64{1, 2, 3} {
		t.Fatalf("start position %v", resolved.StartPosition)
	}
	if resolved.Direction != [3]float64{1, 0, 0} {
		t.Fatalf("direction override lost: %v", resolved.Direction)
	}
	if resolved.Speed != 45 {
		t.Fatalf("speed override lost: %v", resolved.Speed)
	}
	// Unset request fields fall back to the template.
	if resolved.Duration != 3000 || resolved.MaxDistance != 60 {
		t.Fatalf("template defaults lost: %+v", resolved)
	}
	if len(resolved.Payload) != 1 || resolved.Payload[0].Magnitude != 40 {
		t.Fatalf("template payload lost: %+v", resolved.Payload)
	}
}

func TestRegistryResolveNeverMutatesTemplate(t *testing.T) {
	template := &SpawnConfig{
		Direction: [3]float64{0, 0, 1},
		Speed:     30,
		Payload:   []EffectPayload{{Kind: PayloadInstantDamage, Magnitude: 25}},
	}
	registry := Registry{"bolt": template}

	resolved, err := registry.Resolve("bolt", SpawnConfig{
		Payload: []EffectPayload{{Kind: PayloadInstantDamage, Magnitude: 999}},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	resolved.Payload[0].Magnitude = 1
	resolved.Speed = 1

	if template.Speed != 30 || template.Payload[0].Magnitude != 25 {
		t.Fatalf("resolve leaked into template: %+v", template)
	}
}

func TestBuiltInRegistryValid(t *testing.T) {
	registry := BuiltInRegistry()
	if err := registry.Validate(); err != nil {
		t.Fatalf("built-in registry invalid: %v", err)
	}
	for _, name := range []string{"fireball", "meteor", "piercer-bolt", "bounce-orb", "explosion", "burn-zone"} {
		if _, ok := registry[name]; !ok {
			t.Fatalf("missing built-in type %q", name)
		}
	}
}
