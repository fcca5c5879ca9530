package middleware

import (
	"context"
	"errors"

	"venuedesk/internal/app/commands"
	"venuedesk/internal/app/queries"
)

var ErrStaffRequired = errors.New("middleware: staff PIN required")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// StaffGated is implemented by messages that only staff may send, or that
// carry staff-only fields.
type StaffGated interface {
	RequiresStaff() bool
}

type staffKey struct{}

// WithStaff marks ctx as carrying verified staff credentials.
func WithStaff(ctx context.Context) context.Context {
	return context.WithValue(ctx, staffKey{}, true)
}

func IsStaff(ctx context.Context) bool {
	v, _ := ctx.Value(staffKey{}).(bool)
	return v
}

// StaffAuthorizer rejects staff-gated messages from callers without staff
// credentials. A disabled authorizer lets everything through.
type StaffAuthorizer struct {
	Enabled bool
}

func (a StaffAuthorizer) Authorize(ctx context.Context, message any) error {
	if !a.Enabled {
		return nil
	}
	gated, ok := message.(StaffGated)
	if !ok || !gated.RequiresStaff() {
		return nil
	}
	if !IsStaff(ctx) {
		return ErrStaffRequired
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queries.BusFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
