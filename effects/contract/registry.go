package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errEmptyTypeName = errors.New("effect type name must not be empty")
	errNilTemplate   = errors.New("effect template must not be nil")

	// ErrUnknownType is returned when a spawn event references a type that
	// was never registered.
	ErrUnknownType = errors.New("unknown effect type")
)

// Registry maps wire type names to their spawn templates. Callers should
// Validate before use.
type Registry map[string]*SpawnConfig

// Validate ensures every entry carries a usable template.
func (r Registry) Validate() error {
	for name, tpl := range r {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("contract: %w", errEmptyTypeName)
		}
		if tpl == nil {
			return fmt.Errorf("contract: %q: %w", name, errNilTemplate)
		}
		if tpl.Kind != EntityKindAreaEffect && tpl.Speed <= 0 {
			return fmt.Errorf("contract: %q: template speed must be positive", name)
		}
	}
	return nil
}

// Resolve returns a copy of the named template merged with the request's
// overrides, so callers can never mutate the registered defaults. Zero-valued
// request fields fall back to the template.
func (r Registry) Resolve(name string, req SpawnConfig) (SpawnConfig, error) {
	tpl, ok := r[name]
	if !ok {
		return SpawnConfig{}, fmt.Errorf("contract: %q: %w", name, ErrUnknownType)
	}
	merged := *tpl
	merged.Payload = append([]EffectPayload(nil), tpl.Payload...)

	merged.StartPosition = req.StartPosition
	if req.Direction != ([3]float64{}) {
		merged.Direction = req.Direction
	}
	if req.Speed > 0 {
		merged.Speed = req.Speed
	}
	if req.Duration > 0 {
		merged.Duration = req.Duration
	}
	if req.MaxDistance > 0 {
		merged.MaxDistance = req.MaxDistance
	}
	if req.Radius > 0 {
		merged.Radius = req.Radius
	}
	if req.Motion != "" {
		merged.Motion = req.Motion
	}
	if req.GravityScale != 0 {
		merged.GravityScale = req.GravityScale
	}
	if req.Impact != "" {
		merged.Impact = req.Impact
	}
	if req.BounceBudget > 0 {
		merged.BounceBudget = req.BounceBudget
	}
	if req.Homing != nil {
		homing := *req.Homing
		merged.Homing = &homing
	}
	if len(req.Payload) > 0 {
		merged.Payload = append([]EffectPayload(nil), req.Payload...)
	}
	return merged, nil
}

// Names returns the registered type names; order is unspecified.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
