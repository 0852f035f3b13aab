package repository

import (
	stderrors "errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mangareader/pkg/errors"
)

// storeError maps a Firestore failure onto an AppError. AppErrors returned
// from inside a transaction pass through untouched.
func storeError(err error, resource, message string) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound(resource, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return errors.Unavailable(message, err)
	}
	return errors.Internal(message, err)
}

// isCanceled reports whether a snapshot iterator stopped because its
// context ended.
func isCanceled(err error) bool {
	code := status.Code(err)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}
