package errors

// Code is a stable, machine-readable error code. Codes never change once
// clients depend on them; messages may.
type Code string

func (c Code) String() string { return string(c) }

const (
	// Component codes
	CodeComponentNotFound    Code = "COMPONENT_NOT_FOUND"
	CodeComponentExists      Code = "COMPONENT_ALREADY_EXISTS"
	CodeInvalidCategory      Code = "INVALID_CATEGORY"
	CodeInvalidSpecification Code = "INVALID_SPECIFICATION"
	CodeNegativePrice        Code = "NEGATIVE_PRICE"
	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeInvalidStockMovement Code = "INVALID_STOCK_MOVEMENT"
	CodeReorderNotFound      Code = "REORDER_NOT_FOUND"
	CodeInvalidReorderStatus Code = "INVALID_REORDER_STATUS"

	// Build codes
	CodeBuildNotFound        Code = "BUILD_NOT_FOUND"
	CodeCategoryConflict     Code = "CATEGORY_CONFLICT"
	CodeSelectionNotFound    Code = "SELECTION_NOT_FOUND"
	CodeInvalidQuantity      Code = "INVALID_QUANTITY"
	CodeBuildNameRequired    Code = "BUILD_NAME_REQUIRED"
	CodeShareTokenNotFound   Code = "SHARE_TOKEN_NOT_FOUND"
	CodeBuildVersionConflict Code = "BUILD_VERSION_CONFLICT"

	// User codes
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeEmailTaken         Code = "EMAIL_ALREADY_REGISTERED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUserUnauthorized   Code = "USER_UNAUTHORIZED"
	CodeAdminRequired      Code = "ADMIN_REQUIRED"
	CodeSelfFollow         Code = "CANNOT_FOLLOW_SELF"

	// Social codes
	CodeAlreadyLiked     Code = "ALREADY_LIKED"
	CodeLikeNotFound     Code = "LIKE_NOT_FOUND"
	CodeCommentNotFound  Code = "COMMENT_NOT_FOUND"
	CodeNotCommentAuthor Code = "NOT_COMMENT_AUTHOR"

	// General codes
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeInvalidUUID      Code = "INVALID_UUID"
	CodeInternalError    Code = "INTERNAL_ERROR"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeOptimisticLock   Code = "OPTIMISTIC_LOCK_CONFLICT"
)
