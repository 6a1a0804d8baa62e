// Package shared provides value objects and error definitions common to all
// domain packages.
package shared

import (
	"pcforge-backend/internal/errors"
)

// Domain error definitions using the unified error system.
var (
	// Identifier errors
	ErrInvalidComponentID = errors.Validation(errors.CodeInvalidUUID.String(), "invalid component ID: must be a valid UUID").
				WithResource("component").
				Build()
	ErrInvalidBuildID = errors.Validation(errors.CodeInvalidUUID.String(), "invalid build ID: must be a valid UUID").
				WithResource("build").
				Build()
	ErrEmptyUserID = errors.Validation(errors.CodeInvalidInput.String(), "user ID cannot be empty").
			WithResource("user").
			Build()
	ErrUserIDTooLong = errors.Validation(errors.CodeInvalidInput.String(), "user ID exceeds maximum length").
				WithResource("user").
				Build()

	// Component errors
	ErrComponentNotFound = errors.NotFound(errors.CodeComponentNotFound.String(), "component not found").
				WithResource("component").
				Build()
	ErrComponentExists = errors.Conflict(errors.CodeComponentExists.String(), "component already exists").
				WithResource("component").
				Build()
	ErrUnknownCategory = errors.Validation(errors.CodeInvalidCategory.String(), "unknown component category").
				WithResource("component").
				Build()
	ErrNegativePrice = errors.Validation(errors.CodeNegativePrice.String(), "price cannot be negative").
				WithResource("component").
				Build()
	ErrSpecCategoryMismatch = errors.Validation(errors.CodeInvalidSpecification.String(), "specification does not match component category").
				WithResource("component").
				Build()
	ErrInsufficientStock = errors.NewError(errors.ErrorTypeDomain, errors.CodeInsufficientStock.String(), "stock cannot go below zero").
				WithResource("component").
				WithSeverity(errors.SeverityMedium).
				Build()

	// Build errors
	ErrBuildNotFound = errors.NotFound(errors.CodeBuildNotFound.String(), "build not found").
				WithResource("build").
				Build()
	ErrCategoryConflict = errors.Conflict(errors.CodeCategoryConflict.String(), "category already occupied in this build").
				WithResource("build").
				Build()
	ErrSelectionNotFound = errors.NotFound(errors.CodeSelectionNotFound.String(), "component is not part of this build").
				WithResource("build").
				Build()
	ErrInvalidQuantity = errors.Validation(errors.CodeInvalidQuantity.String(), "quantity must be at least 1").
				WithResource("build").
				Build()
	ErrBuildNameRequired = errors.Validation(errors.CodeBuildNameRequired.String(), "build name is required").
				WithResource("build").
				Build()

	// User errors
	ErrUserNotFound = errors.NotFound(errors.CodeUserNotFound.String(), "user not found").
			WithResource("user").
			Build()
	ErrEmailTaken = errors.Conflict(errors.CodeEmailTaken.String(), "email is already registered").
			WithResource("user").
			Build()
	ErrSelfFollow = errors.NewError(errors.ErrorTypeDomain, errors.CodeSelfFollow.String(), "users cannot follow themselves").
			WithResource("user").
			WithSeverity(errors.SeverityLow).
			Build()
	ErrUnauthorized = errors.Unauthorized(errors.CodeUserUnauthorized.String(), "unauthorized operation").
			WithResource("user").
			Build()

	// Social errors
	ErrAlreadyLiked = errors.Conflict(errors.CodeAlreadyLiked.String(), "build is already liked by this user").
			WithResource("like").
			Build()
	ErrLikeNotFound = errors.NotFound(errors.CodeLikeNotFound.String(), "like not found").
			WithResource("like").
			Build()
	ErrCommentNotFound = errors.NotFound(errors.CodeCommentNotFound.String(), "comment not found").
				WithResource("comment").
				Build()
	ErrNotCommentAuthor = errors.Forbidden(errors.CodeNotCommentAuthor.String(), "only the comment author may modify it").
				WithResource("comment").
				Build()

	// General errors
	ErrValidation = errors.Validation(errors.CodeValidationFailed.String(), "validation failed").
			Build()
	ErrVersionConflict = errors.Conflict(errors.CodeOptimisticLock.String(), "aggregate was modified concurrently").
				Build()
)

// Error type checking helpers used by services and handlers.

func IsValidationError(err error) bool { return errors.IsValidation(err) }
func IsNotFoundError(err error) bool   { return errors.IsNotFound(err) }
func IsConflictError(err error) bool   { return errors.IsConflict(err) }

// IsBusinessRuleError reports whether an error is a domain rule violation
// rather than bad input or a missing resource.
func IsBusinessRuleError(err error) bool {
	return errors.IsType(err, errors.ErrorTypeDomain)
}
