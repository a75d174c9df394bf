package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/receipt"
	"github.com/mmynk/splitroom/internal/storage"
	"github.com/mmynk/splitroom/internal/validate"
)

var (
	errNotParticipant = errors.New("you are not a participant of this room")
	errNotOrganizer   = errors.New("only the room organizer can do this")
	errNotItemOwner   = errors.New("only the person who added an item or the organizer can remove it")
	errUnknownProfile = errors.New("tax profile does not exist in this room")
)

// toConnectError maps domain errors onto Connect codes. Validation failures
// carry their violations as a structured error detail.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	if verr, ok := validate.AsError(err); ok {
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		if detail, derr := violationsDetail(verr); derr == nil {
			cerr.AddDetail(detail)
		} else {
			slog.Warn("Failed to attach violations detail", "error", derr)
		}
		return cerr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, errNotParticipant),
		errors.Is(err, errNotOrganizer),
		errors.Is(err, errNotItemOwner):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrDisplayNameRequired),
		errors.Is(err, errUnknownProfile),
		errors.Is(err, receipt.ErrNotAReceipt):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, receipt.ErrUnavailable), errors.Is(err, receipt.ErrMalformed):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func violationsDetail(verr *validate.Error) (*connect.ErrorDetail, error) {
	violations := make([]any, len(verr.Violations))
	for i, v := range verr.Violations {
		violations[i] = map[string]any{"field": v.Field, "message": v.Message}
	}
	st, err := structpb.NewStruct(map[string]any{"violations": violations})
	if err != nil {
		return nil, err
	}
	return connect.NewErrorDetail(st)
}

// Violations reads the field violations attached to a Connect error.
func Violations(err error) []validate.Violation {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return nil
	}
	var out []validate.Violation
	for _, d := range connectErr.Details() {
		msg, derr := d.Value()
		if derr != nil {
			continue
		}
		st, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		list := st.GetFields()["violations"].GetListValue()
		for _, v := range list.GetValues() {
			fields := v.GetStructValue().GetFields()
			out = append(out, validate.Violation{
				Field:   fields["field"].GetStringValue(),
				Message: fields["message"].GetStringValue(),
			})
		}
	}
	return out
}
