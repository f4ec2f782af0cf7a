package rpc

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/service"
	"github.com/mmynk/splitright/internal/storage"
)

// CodeOf maps a service error to its Connect code.
func CodeOf(err error) connect.Code {
	var validation *calculator.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.As(err, &validation), errors.Is(err, service.ErrInvalidArgument):
		return connect.CodeInvalidArgument
	case errors.Is(err, service.ErrMemberInUse):
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}

// toConnectError logs a failed call and wraps err with its Connect code.
func toConnectError(procedure string, err error) *connect.Error {
	code := CodeOf(err)
	if code == connect.CodeInternal {
		slog.Error(procedure+" failed", "error", err)
	} else {
		slog.Warn(procedure+" rejected", "code", code, "error", err)
	}
	return connect.NewError(code, err)
}

func requireGroupID(groupID string) *connect.Error {
	if groupID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("group_id required"))
	}
	return nil
}
