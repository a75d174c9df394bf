// Package receipt turns receipt photos into reviewable drafts.
//
// A draft is untrusted input. Nothing is persisted here: callers show the
// draft to the user and feed the accepted lines into the normal item and tax
// profile entry points.
package receipt

import (
	"context"
	"errors"

	"github.com/mmynk/splitroom/internal/models"
)

var (
	// ErrNotAReceipt is returned when the model reports the image is not a
	// readable receipt.
	ErrNotAReceipt = errors.New("image is not a readable receipt")

	// ErrMalformed is returned when the model response cannot be decoded.
	ErrMalformed = errors.New("failed to parse receipt data")

	// ErrUnavailable is returned when the scanning backend failed or is not
	// configured.
	ErrUnavailable = errors.New("receipt scanning unavailable")
)

// Scanner extracts a draft from an image.
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*models.ReceiptDraft, error)
}

// DisabledScanner is used when no backend is configured.
type DisabledScanner struct{}

func (DisabledScanner) Scan(ctx context.Context, image []byte, mimeType string) (*models.ReceiptDraft, error) {
	return nil, ErrUnavailable
}
