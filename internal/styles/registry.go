package styles

import (
	"strings"
)

// Provider ids understood by the adapter set.
const (
	ProviderFlux       = "flux"
	ProviderTurbo      = "turbo"
	ProviderNanoBanana = "nanobanana"
	ProviderImagen     = "imagen"
	ProviderReplicate  = "replicate"
	ProviderProcedural = "procedural"
)

// BaselineStyle is used whenever a caller asks for an unknown style.
const BaselineStyle = "traditional"

// SubjectPlaceholder marks where the user's text lands in a template.
const SubjectPlaceholder = "{subject}"

// StyleConfig is an immutable preset pairing a provider with a prompt template.
type StyleConfig struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Provider    string `json:"ai"`
	Template    string `json:"-"`
}

// Prompt renders the template around text. Callers normally go through
// BuildPrompt, which also handles empty input.
func (s StyleConfig) Prompt(text string) string {
	if !strings.Contains(s.Template, SubjectPlaceholder) {
		return text + ", " + s.Template
	}
	return strings.ReplaceAll(s.Template, SubjectPlaceholder, text)
}

// Registry maps style ids to their configuration. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	order    []string
	styles   map[string]StyleConfig
	baseline string
}

// NewRegistry builds a registry from the given styles. The first style wins
// when ids collide; baseline must name one of them.
func NewRegistry(baseline string, list ...StyleConfig) *Registry {
	r := &Registry{styles: make(map[string]StyleConfig, len(list)), baseline: baseline}
	for _, s := range list {
		id := normalizeID(s.ID)
		if id == "" {
			continue
		}
		if _, exists := r.styles[id]; exists {
			continue
		}
		s.ID = id
		r.styles[id] = s
		r.order = append(r.order, id)
	}
	return r
}

// Default returns the registry with the studio's built-in styles.
func Default() *Registry {
	return NewRegistry(BaselineStyle, builtin...)
}

// Resolve returns the style for id, or the baseline style when id is empty
// or unknown. ok is false only when the baseline itself is missing.
func (r *Registry) Resolve(id string) (StyleConfig, bool) {
	if r == nil {
		return StyleConfig{}, false
	}
	if s, found := r.styles[normalizeID(id)]; found {
		return s, true
	}
	s, found := r.styles[r.baseline]
	return s, found
}

// Lookup reports whether id is registered, without defaulting.
func (r *Registry) Lookup(id string) (StyleConfig, bool) {
	if r == nil {
		return StyleConfig{}, false
	}
	s, ok := r.styles[normalizeID(id)]
	return s, ok
}

// List returns the styles in registration order.
func (r *Registry) List() []StyleConfig {
	if r == nil {
		return nil
	}
	out := make([]StyleConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.styles[id])
	}
	return out
}

// Providers returns the distinct provider ids referenced by the registry.
func (r *Registry) Providers() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range r.List() {
		if _, ok := seen[s.Provider]; ok {
			continue
		}
		seen[s.Provider] = struct{}{}
		out = append(out, s.Provider)
	}
	return out
}

// Baseline returns the id used for unknown styles.
func (r *Registry) Baseline() string {
	if r == nil {
		return ""
	}
	return r.baseline
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
