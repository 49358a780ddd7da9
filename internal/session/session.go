// Package session applies top-level commands to a growing environment and
// optionally records them in a Store so the environment can be rebuilt.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/maxsklar/newmap.ai.nyu/internal/config"
	"github.com/maxsklar/newmap.ai.nyu/internal/evaluator"
	"github.com/maxsklar/newmap.ai.nyu/internal/symbols"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

type Session struct {
	// ID is the store's session id; empty for sessions without a store.
	ID string

	env     *symbols.Environment
	eval    *evaluator.Evaluator
	timeout time.Duration
	store   *Store
	logger  *log.Logger
}

// New creates a session that keeps its environment in memory only. logger
// may be nil.
func New(limits config.Limits, logger *log.Logger) *Session {
	return &Session{
		env:     symbols.NewEnvironment(),
		eval:    evaluator.NewWithLimits(limits),
		timeout: limits.Timeout,
		logger:  logger,
	}
}

// Open resumes the session of channel and user from store, replaying its
// command log.
func Open(ctx context.Context, store *Store, channel, user string, limits config.Limits, logger *log.Logger) (*Session, error) {
	id, err := store.OpenSession(ctx, channel, user)
	if err != nil {
		return nil, err
	}
	cmds, err := store.Commands(ctx, id)
	if err != nil {
		return nil, err
	}

	s := New(limits, logger)
	s.ID = id
	for i, cmd := range cmds {
		_, env, err := s.apply(ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("replaying command %d (%s): %w", i+1, cmd, err)
		}
		s.env = env
	}
	s.store = store
	s.logf("session %s: replayed %d commands", id, len(cmds))
	return s, nil
}

// Apply runs cmd and, when it succeeds, records it. For a Let the result is
// the bound value. A failed command leaves the environment unchanged.
func (s *Session) Apply(ctx context.Context, cmd Command) (typesystem.Object, error) {
	s.logf("session %s: %s", s.ID, cmd)
	result, env, err := s.apply(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if _, err := s.store.Append(ctx, s.ID, cmd); err != nil {
			return nil, err
		}
	}
	s.env = env
	return result, nil
}

// apply evaluates cmd and returns the environment that follows it.
func (s *Session) apply(ctx context.Context, cmd Command) (typesystem.Object, *symbols.Environment, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	switch c := cmd.(type) {
	case *Let:
		t, err := s.checkLet(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		value, err := s.eval.Run(ctx, c.Value, s.env)
		if err != nil {
			return nil, nil, fmt.Errorf("let %s: %w", c.Name, err)
		}
		return value, s.env.Extend(c.Name, t, value), nil
	case *Expr:
		value, err := s.eval.Run(ctx, c.Value, s.env)
		if err != nil {
			return nil, nil, err
		}
		return value, s.env, nil
	}
	return nil, nil, fmt.Errorf("unknown command %T", cmd)
}

// checkLet reads the declared type of c under the same deadline as its
// value.
func (s *Session) checkLet(ctx context.Context, c *Let) (typesystem.Type, error) {
	prev := s.eval.Context
	s.eval.Context = ctx
	defer func() { s.eval.Context = prev }()

	return s.eval.Checker().CheckLet(c.Name, c.Type, s.env)
}

// Env returns the current environment. It is immutable; later commands do
// not change it.
func (s *Session) Env() *symbols.Environment {
	return s.env
}

// Lookup returns the binding of name, or a *typesystem.UnboundNameError.
func (s *Session) Lookup(name string) (symbols.Binding, error) {
	return s.env.Resolve(name)
}

// Bindings lists the current bindings in the order they were made.
func (s *Session) Bindings() []symbols.Binding {
	names := s.env.Names()
	bindings := make([]symbols.Binding, 0, len(names))
	for _, name := range names {
		if b, ok := s.env.Lookup(name); ok {
			bindings = append(bindings, b)
		}
	}
	return bindings
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
