package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

// mapStoreError converts persistence errors into domain errors. The format
// arguments name the resource for the NOT_FOUND and ALREADY_EXISTS messages.
func mapStoreError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExistsf("%s already exists", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyMerged):
		return domainerrors.Newf(domainerrors.CodeAlreadyMerged, "%s is already merged", what).WithCause(err)
	case errors.Is(err, store.ErrConflict):
		return domainerrors.Conflictf("%s was changed concurrently, retry", what).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validationf("%s rejected by store", what).WithCause(err)
	default:
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "%s", what)
	}
}
