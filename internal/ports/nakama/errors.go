package nakama

import (
	"encoding/json"
	"errors"

	"zkhunt/internal/domain"
	"zkhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
	codeInternal           = 13
	codeUnauthenticated    = 16
)

// Error kinds reported for failures outside the game taxonomy.
const (
	kindInvalidRequest  = "invalid_request"
	kindUnauthenticated = "unauthenticated"
	kindConflict        = "conflict"
	kindInternal        = "internal"
)

// errorBody is the JSON message of every runtime error returned to clients.
// Code is the game error code (0 outside the game taxonomy) and Kind its group,
// so clients can branch without parsing Message.
type errorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newRuntimeError(body errorBody, status int) *runtime.Error {
	b, err := json.Marshal(body)
	if err != nil {
		return runtime.NewError(body.Message, status)
	}
	return runtime.NewError(string(b), status)
}

func requestError(message string) *runtime.Error {
	return newRuntimeError(errorBody{Kind: kindInvalidRequest, Message: message}, codeInvalidArgument)
}

var (
	errInvalidPayload  = requestError("invalid payload")
	errUnauthenticated = newRuntimeError(errorBody{Kind: kindUnauthenticated, Message: "authentication required"}, codeUnauthenticated)
)

// toRuntimeError maps service errors to client-facing runtime errors.
// Infrastructure faults are reported without detail.
func toRuntimeError(err error) error {
	if errors.Is(err, ports.ErrConflict) {
		return newRuntimeError(errorBody{Kind: kindConflict, Message: "session changed concurrently, retry"}, codeAborted)
	}
	kind := domain.KindOf(err)
	if kind == domain.KindUnknown {
		return newRuntimeError(errorBody{Kind: kindInternal, Message: "internal error"}, codeInternal)
	}
	return newRuntimeError(errorBody{Code: domain.CodeOf(err), Kind: string(kind), Message: err.Error()}, statusOf(err, kind))
}

func statusOf(err error, kind domain.ErrorKind) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return codeNotFound
	case errors.Is(err, domain.ErrNotPlayer),
		errors.Is(err, domain.ErrNotHunter),
		errors.Is(err, domain.ErrNotPrey):
		return codePermissionDenied
	case kind == domain.KindLifecycle:
		return codeFailedPrecondition
	}
	return codeInvalidArgument
}

// isRejection reports whether err is a rule rejection rather than an infrastructure fault.
func isRejection(err error) bool {
	return domain.KindOf(err) != domain.KindUnknown || errors.Is(err, ports.ErrConflict)
}
