package image

import (
	"context"
	"strings"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
)

// Substitute stands in for a generator that cannot run (typically because its
// credentials are missing) by delegating to another one. Results produced by
// the stand-in are flagged so callers can label them.
type Substitute struct {
	primary    Generator
	substitute Generator
	logger     *infra.Logger
}

// NewSubstitute wraps primary so that substitute serves its requests while
// primary is unavailable.
func NewSubstitute(primary, substitute Generator, logger *infra.Logger) *Substitute {
	return &Substitute{primary: primary, substitute: substitute, logger: loggerOrDiscard(logger)}
}

func (s *Substitute) Name() string { return s.primary.Name() }

// Available is always true: the stand-in covers for the primary.
func (s *Substitute) Available() bool { return true }

// Generate fulfils the Generator interface.
func (s *Substitute) Generate(ctx context.Context, req Request) (Result, error) {
	if a, ok := s.primary.(Availability); !ok || a.Available() {
		return s.primary.Generate(ctx, req)
	}
	s.logger.Warn().
		Str("provider", s.primary.Name()).
		Str("substitute", s.substitute.Name()).
		Str("request_id", req.RequestID).
		Msg("provider unavailable, substituting")
	res, err := s.substitute.Generate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	res.Requested = s.primary.Name()
	res.Substituted = true
	return res, nil
}

var _ Generator = (*Substitute)(nil)

// ApplySubstitutions returns a copy of set where every generator named as a
// key of subs is wrapped with its stand-in. Pairs naming unknown ids are
// reported in skipped.
func ApplySubstitutions(set Set, subs map[string]string, logger *infra.Logger) (out Set, skipped []string) {
	out = make(Set, len(set))
	for id, g := range set {
		out[id] = g
	}
	for from, to := range subs {
		primary, ok := set.Get(from)
		if !ok {
			skipped = append(skipped, from)
			continue
		}
		stand, ok := set.Get(to)
		if !ok {
			skipped = append(skipped, from)
			continue
		}
		out[strings.ToLower(primary.Name())] = NewSubstitute(primary, stand, logger)
	}
	return out, skipped
}
