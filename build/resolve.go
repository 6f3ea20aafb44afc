package build

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/errors"
)

// UserLookup finds active participants by employ id.
// Satisfied by competition.UserStore.
type UserLookup interface {
	GetByEmployID(employID string) (*competition.User, error)
}

// Resolver maps a CI submitter handle to an internal user id.
//
// Handles follow the "name-initial prefix + employ id" convention; the
// first rune is dropped before lookup. Soft-deleted users do not match.
type Resolver struct {
	users  UserLookup
	logger *zap.SugaredLogger
}

// NewResolver creates a resolver over the given user lookup
func NewResolver(users UserLookup, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Resolve returns the user id for a submitter handle. A handle of one
// rune or fewer fails without a lookup. The caller supplies the
// fallback on failure; Resolve never panics past its boundary.
func (r *Resolver) Resolve(handle string) (int64, error) {
	if utf8.RuneCountInString(handle) <= 1 {
		return 0, errors.NewInvalidRequestError("handle %q too short to carry an employ id", handle)
	}

	_, size := utf8.DecodeRuneInString(handle)
	employID := handle[size:]

	user, err := r.users.GetByEmployID(employID)
	if err != nil {
		return 0, errors.Wrapf(err, "no active user for employ id %q", employID)
	}

	if r.logger != nil {
		r.logger.Infow("Resolved submitter handle",
			"handle", handle,
			"employ_id", employID,
			"user_id", user.ID)
	}
	return user.ID, nil
}
