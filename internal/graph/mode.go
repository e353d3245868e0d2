package graph

// RoutingMode is a named weighting profile: an empty name selects the
// server-default mode (preference factor 0, i.e. "exact": effective cost
// equals raw cost).
type RoutingMode struct {
	Name             string
	PreferenceFactor float64
}

// DefaultMode is the server-default routing mode ("exact").
var DefaultMode = RoutingMode{Name: "", PreferenceFactor: 0}

// EffectiveCost computes w · (1 + f · (1 − p)) for this mode.
func (m RoutingMode) EffectiveCost(e Edge) float64 {
	return e.EffectiveCost(m.PreferenceFactor)
}

// Registry resolves named routing modes to their preference factor,
// configured via routing_modes.<name>.edge_preference_factor.
type Registry struct {
	modes map[string]RoutingMode
}

// NewRegistry builds a Registry from a name→preference-factor map.
func NewRegistry(factors map[string]float64) *Registry {
	modes := make(map[string]RoutingMode, len(factors)+1)
	modes[""] = DefaultMode
	for name, factor := range factors {
		modes[name] = RoutingMode{Name: name, PreferenceFactor: factor}
	}
	return &Registry{modes: modes}
}

// Resolve looks up a routing mode by name. An empty name always resolves to
// DefaultMode, even if not explicitly configured.
func (r *Registry) Resolve(name string) (RoutingMode, bool) {
	if name == "" {
		return DefaultMode, true
	}
	mode, ok := r.modes[name]
	return mode, ok
}
