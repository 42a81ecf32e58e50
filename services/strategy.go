package services

import "github.com/rs/zerolog"

// strategy is one extraction attempt against an already-loaded page. The
// chain runs in priority order; the first strategy reporting a hit wins and
// the rest are skipped. A miss is not an error, just a fall-through.
type strategy[T any] struct {
	name string
	run  func() (T, bool)
}

func firstHit[T any](log zerolog.Logger, strategies []strategy[T]) (T, bool) {
	for _, s := range strategies {
		if out, ok := s.run(); ok {
			log.Debug().Str("strategy", s.name).Msg("extraction strategy produced data")
			return out, true
		}
	}
	var zero T
	return zero, false
}
