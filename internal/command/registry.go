// Package command implements the named command surface the views invoke.
package command

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"zettel/internal/logger"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateCommand = errors.New("command already registered")
)

// Args carries the caller-supplied parameters of an invocation.
type Args map[string]interface{}

// String returns the string argument under key, or "" when absent or of another type.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

type Handler func(ctx context.Context, args Args) (interface{}, error)

// PanicError is returned when a handler panics.
type PanicError struct {
	Command string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("command %s panicked: %v", e.Command, e.Value)
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   log,
	}
}

func (r *Registry) Register(name string, handler Handler) error {
	if name == "" || handler == nil {
		return errors.New("command name and handler are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[name]; ok {
		return errors.Wrap(ErrDuplicateCommand, name)
	}
	r.handlers[name] = handler
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named handler. Handler panics are returned as *PanicError.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) (result interface{}, err error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Wrap(ErrUnknownCommand, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &PanicError{Command: name, Value: p}
		}
		fields := map[string]interface{}{
			"command":  name,
			"duration": time.Since(start).String(),
		}
		if err != nil {
			fields["failed"] = true
			r.logger.Error("Commands", err, fields)
			return
		}
		r.logger.Debug("Commands", "command invoked", fields)
	}()

	return handler(ctx, args)
}
