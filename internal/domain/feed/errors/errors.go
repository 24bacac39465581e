// Package errors contains domain-specific errors for the feed domain
package errors

import (
	pkgerrors "github.com/Conte777/feedbot/pkg/errors"
)

// Domain errors for feed operations
var (
	ErrChannelNameEmpty      = pkgerrors.NewValidationError("channel name is empty")
	ErrChannelNameFormat     = pkgerrors.NewValidationError("channel name must start with @")
	ErrUserIDRequired        = pkgerrors.NewInvalidArgumentError("user id is required")
	ErrChannelIDRequired     = pkgerrors.NewInvalidArgumentError("channel id is required")
	ErrChannelTitleRequired  = pkgerrors.NewInvalidArgumentError("channel title is required")
	ErrChannelTitleTooLong   = pkgerrors.NewInvalidArgumentError("channel title exceeds 500 characters")
	ErrDatabaseOperation     = pkgerrors.NewInternalError("database operation failed")
	ErrEventPublishingFailed = pkgerrors.NewInternalError("subscription event publishing failed")
)
