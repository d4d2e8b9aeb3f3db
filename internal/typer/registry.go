package typer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Resolver fetches the text a file reference points at.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithFinishHook registers fn to run after every session leaves the registry.
func WithFinishHook(fn func(*Session)) Option {
	return func(r *Registry) {
		r.hooks = append(r.hooks, fn)
	}
}

// Registry owns the active session of each surface. All methods must be
// called from the registry's loop.
type Registry struct {
	loop     Loop
	sessions map[string]*Session
	logger   *slog.Logger
	hooks    []func(*Session)
}

func NewRegistry(loop Loop, opts ...Option) *Registry {
	r := &Registry{
		loop:     loop,
		sessions: make(map[string]*Session),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start creates a session on target. If target already has an active session
// that session is returned and nothing new is created. With cfg.File set the
// session stays idle until Begin is called with the resolved text.
func (r *Registry) Start(target Surface, cfg Config) (*Session, error) {
	s, _, err := r.start(target, cfg)
	return s, err
}

// start is Start that also reports whether the session was created by this
// call rather than found on a busy surface.
func (r *Registry) start(target Surface, cfg Config) (*Session, bool, error) {
	if target == nil {
		return nil, false, &ConfigError{Field: "target", Reason: "is required"}
	}

	if active, ok := r.sessions[target.ID()]; ok {
		r.logger.Debug("surface busy, start ignored", "surface", target.ID(), "session", active.id)
		return active, false, nil
	}

	cfg = cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return nil, false, err
	}

	if cfg.Text == "" && cfg.File == "" {
		return nil, false, &ConfigError{Field: "text", Reason: "or file is required"}
	}

	s := &Session{
		id:       uuid.NewString(),
		surface:  target,
		registry: r,
		cfg:      cfg,
		logger:   r.logger,
	}

	r.sessions[target.ID()] = s

	r.logger.Info("session started", "session", s.id, "surface", target.ID(), "file", cfg.File)

	if cfg.File != "" {
		return s, true, nil
	}

	if err := s.Begin(cfg.Text); err != nil {
		return nil, false, err
	}

	return s, true, nil
}

// StartResolved is Start with the file reference resolved synchronously
// before any tick is armed. A session already on target is returned as is,
// even while it waits for its own text.
func (r *Registry) StartResolved(ctx context.Context, target Surface, cfg Config, resolver Resolver) (*Session, error) {
	s, created, err := r.start(target, cfg)

	if err != nil {
		return nil, err
	}

	if !created || s.State() != Idle {
		return s, nil
	}

	text, err := resolver.Resolve(ctx, s.cfg.File)

	if err != nil {
		s.Abandon()
		return nil, fmt.Errorf("resolve %s: %w", s.cfg.File, err)
	}

	if err := s.Begin(text); err != nil {
		return nil, err
	}

	return s, nil
}

// Reset finishes the active session on target. It reports whether there was one.
func (r *Registry) Reset(target Surface) bool {
	if target == nil {
		return false
	}

	s, ok := r.sessions[target.ID()]

	if !ok {
		return false
	}

	s.Reset()

	return true
}

func (r *Registry) Active(target Surface) (*Session, bool) {
	if target == nil {
		return nil, false
	}

	s, ok := r.sessions[target.ID()]
	return s, ok
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) release(s *Session) {
	if r.sessions[s.surface.ID()] == s {
		delete(r.sessions, s.surface.ID())
	}
}

func (r *Registry) notify(s *Session) {
	for _, hook := range r.hooks {
		hook(s)
	}
}
