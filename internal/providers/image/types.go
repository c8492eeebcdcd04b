package image

import (
	"context"
	"sort"
	"strings"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
)

// Request describes a normalized request passed to any image provider.
type Request struct {
	Prompt      string
	SourceImage *domain.SourceImage
	// Seed pins the randomness of providers that accept one. Zero lets the
	// provider pick.
	Seed      int64
	RequestID string
}

// Result is the tagged outcome of one provider call. Provider always names the
// adapter that actually produced Ref.
type Result struct {
	Provider    string
	Requested   string
	Ref         domain.ImageRef
	Model       string
	Substituted bool
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Result, error)
}

// Availability is implemented by generators that depend on credentials.
type Availability interface {
	Available() bool
}

// Set indexes generators by provider id.
type Set map[string]Generator

// NewSet builds a set keyed by each generator's Name.
func NewSet(gens ...Generator) Set {
	s := make(Set, len(gens))
	for _, g := range gens {
		if g == nil {
			continue
		}
		s[strings.ToLower(g.Name())] = g
	}
	return s
}

// Get returns the generator registered under id.
func (s Set) Get(id string) (Generator, bool) {
	g, ok := s[strings.ToLower(strings.TrimSpace(id))]
	return g, ok
}

// Names returns the registered ids in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Available lists the ids that can currently run.
func (s Set) Available() []string {
	var out []string
	for _, id := range s.Names() {
		if a, ok := s[id].(Availability); ok && !a.Available() {
			continue
		}
		out = append(out, id)
	}
	return out
}
