// Package mock provides test doubles for concierge interfaces using function fields.
package mock

import (
	"context"
	"errors"

	"github.com/fwojciec/concierge"
)

var errScriptExhausted = errors.New("mock: script exhausted")

// Interface compliance check.
var _ concierge.Engine = (*Engine)(nil)

// Engine is a test double for concierge.Engine.
// Set DecideFn before calling Decide.
type Engine struct {
	DecideFn func(ctx context.Context, req concierge.Request) (concierge.Decision, error)
}

// Decide delegates to DecideFn.
func (e *Engine) Decide(ctx context.Context, req concierge.Request) (concierge.Decision, error) {
	return e.DecideFn(ctx, req)
}

// Script returns an Engine that replays decisions in order, one per call.
// Calls past the end of the script fail.
func Script(decisions ...concierge.Decision) *Engine {
	ch := make(chan concierge.Decision, len(decisions))
	for _, d := range decisions {
		ch <- d
	}
	close(ch)
	return &Engine{
		DecideFn: func(ctx context.Context, req concierge.Request) (concierge.Decision, error) {
			d, ok := <-ch
			if !ok {
				return nil, errScriptExhausted
			}
			return d, nil
		},
	}
}
