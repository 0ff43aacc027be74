package service

import (
	"context"
	"errors"
	"fmt"

	"campusbridge/internal/models"
)

// storageErr passes AppErrors through and wraps anything else as STORAGE_ERROR.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return models.NewStorageError(err)
}

// authorizeOwner allows admins and the recorded author. Anonymous content has
// no recorded author, so only admins may remove it.
func authorizeOwner(authorID *uint, actorID uint, adminOverride bool, resource string) error {
	if adminOverride {
		return nil
	}
	if authorID != nil && actorID != 0 && *authorID == actorID {
		return nil
	}
	return models.NewPermissionDeniedError(fmt.Sprintf("only the author or an admin can delete this %s", resource))
}

// Viewer identifies who is reading, for visibility and liked annotations.
type Viewer struct {
	ID      uint
	IsAdmin bool
}
