package shared

// Domain-wide limits enforced by value objects and aggregates.
const (
	MaxUserIDLength      = 128
	MaxBuildNameLength   = 200
	MaxDescriptionLength = 2000
	MaxCommentLength     = 1000
	MaxQuantityPerPart   = 8
)
