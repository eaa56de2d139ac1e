package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/booking-agent/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const busyText = "I'm still working on your previous message. Please send this again in a moment."

// grpcError maps a failed turn to a status whose message can be shown to
// the customer.
func grpcError(err error) error {
	switch {
	case errors.Is(err, agentboot.ErrEmptyInput):
		return status.Error(codes.InvalidArgument, "session_id and text are required")
	case errors.Is(err, session.ErrTurnInProgress):
		return status.Error(codes.ResourceExhausted, busyText)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, render.RetryText)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, render.RetryText)
	default:
		return status.Error(codes.Unavailable, render.RetryText)
	}
}

func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, agentboot.ErrEmptyInput):
		return http.StatusBadRequest, "text is required"
	case errors.Is(err, session.ErrTurnInProgress):
		return http.StatusTooManyRequests, busyText
	default:
		return http.StatusServiceUnavailable, render.RetryText
	}
}
