package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/errs"
	"github.com/mmynk/hisab/internal/middleware"
)

// codeOf maps a ledger error to its Connect code. Conflict is checked before
// NotFound because submitting a non-draft matches both.
func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, errs.ErrConflict):
		return connect.CodeFailedPrecondition
	case errors.Is(err, errs.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, errs.ErrForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, errs.ErrInvalidSplit), errors.Is(err, errs.ErrInvalidInput):
		return connect.CodeInvalidArgument
	case errors.Is(err, errs.ErrStorageUnavailable):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

// fail logs a failed operation and converts err for the client. Caller
// mistakes are logged as warnings, server faults as errors.
func fail(op string, err error, args ...any) error {
	code := codeOf(err)
	args = append(args, "code", code, "error", err)
	switch code {
	case connect.CodeInternal, connect.CodeUnavailable:
		slog.Error(op+" failed", args...)
	default:
		slog.Warn(op+" failed", args...)
	}
	return connect.NewError(code, err)
}

// callerID returns the authenticated user of the request.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetUserID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}
