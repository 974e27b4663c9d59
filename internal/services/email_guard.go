package services

import (
	"context"
	"errors"

	"github.com/fmontilla/users-system/internal/store"
)

// ensureEmailAvailable fails with ErrEmailTaken when any record already
// holds the address. The check and the subsequent write are not atomic:
// a second writer can claim the email inside that window, in which case
// the unique index on the email column surfaces the conflict instead.
func (s *UserService) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil
	}
	return err
}
