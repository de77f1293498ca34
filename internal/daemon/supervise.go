package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

// NewSupervisor creates a supervisor that logs its events through logger.
func NewSupervisor(name string, logger *slog.Logger) *suture.Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return suture.New(name, suture.Spec{
		EventHook: EventHook(logger.With("component", "supervisor")),
	})
}

// EventHook logs supervisor events.
func EventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Info("service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			logger.Warn("caught a service panic", "service", e.ServiceName, "panic", e.PanicMsg)
			logger.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Error("service failed", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventBackoff:
			logger.Debug("too many service failures, backing off", "supervisor", e.SupervisorName)
		case suture.EventResume:
			logger.Debug("exiting backoff state", "supervisor", e.SupervisorName)
		default:
			b, _ := json.Marshal(e)
			logger.Warn("unknown supervisor event", "type", int(e.Type()), "event", string(b))
		}
	}
}

// Add adds service to super with context errors sanitized.
func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a service error from reading as a context error unless
// ctx really is done. suture stops restarting a service that returns one.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var newErrs [3]error
	if errors.Is(err, suture.ErrDoNotRestart) {
		newErrs[0] = suture.ErrDoNotRestart
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		newErrs[1] = suture.ErrTerminateSupervisorTree
	}
	newErrs[2] = errors.New(err.Error())

	return errors.Join(newErrs[:]...)
}

// ServiceFunc adapts a function to a named service.
type ServiceFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewServiceFunc(name string, fn func(ctx context.Context) error) ServiceFunc {
	return ServiceFunc{name: name, fn: fn}
}

func (s ServiceFunc) String() string { return s.name }

func (s ServiceFunc) Serve(ctx context.Context) error {
	return s.fn(ctx)
}
