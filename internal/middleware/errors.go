package middleware

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/internal/apperr"
)

var errInternal = errors.New("internal error")

// CodeOf maps an application error to its Connect code.
func CodeOf(err error) connect.Code {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInvalidSignature):
		return connect.CodeInvalidArgument
	case errors.Is(err, apperr.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, apperr.ErrPermissionDenied):
		return connect.CodePermissionDenied
	case errors.Is(err, apperr.ErrUnauthenticated):
		return connect.CodeUnauthenticated
	case errors.Is(err, apperr.ErrAlreadyExists):
		return connect.CodeAlreadyExists
	default:
		return connect.CodeInternal
	}
}

// ErrorInterceptor translates service errors into Connect errors.
// Errors that are already *connect.Error pass through untouched. Anything
// outside the apperr taxonomy becomes CodeInternal with the detail logged
// and withheld from the client.
func ErrorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err == nil {
				return resp, nil
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				return nil, err
			}

			code := CodeOf(err)
			if code == connect.CodeInternal {
				slog.Error("Internal error",
					"procedure", req.Spec().Procedure,
					"error", err,
				)
				return nil, connect.NewError(code, errInternal)
			}
			return nil, connect.NewError(code, err)
		}
	}
}
