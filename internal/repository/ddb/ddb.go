// Package ddb implements the repository ports on a DynamoDB single table.
//
// Key layout:
//
//	Component   PK=COMPONENT#id   SK=METADATA     GSI1PK=CATEGORY#cat     GSI1SK=name
//	Movement    PK=COMPONENT#id   SK=MOVEMENT#ts#id
//	PricePoint  PK=COMPONENT#id   SK=PRICE#ts#id
//	Alert       PK=ALERTS         SK=ALERT#ts#id
//	Reorder     PK=REORDER#id     SK=METADATA     GSI1PK=REORDERS         GSI1SK=ts#id
//	Build       PK=USER#uid       SK=BUILD#id     GSI1PK=BUILD#id         GSI1SK=METADATA
//	                                              GSI2PK=SHARE#token|PUBLIC GSI2SK=ts#id
//	User        PK=USER#uid       SK=PROFILE      GSI1PK=EMAIL#email      GSI1SK=PROFILE
//	Follow      PK=USER#follower  SK=FOLLOWS#uid  GSI1PK=USER#followee    GSI1SK=FOLLOWER#uid
//	Like        PK=BUILD#id       SK=LIKE#uid
//	Comment     PK=BUILD#id       SK=COMMENT#ts#id GSI1PK=COMMENT#id      GSI1SK=METADATA
//	Notification PK=USER#uid      SK=NOTIF#ts#id
package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"pcforge-backend/internal/errors"
	"pcforge-backend/internal/repository"
)

const (
	gsi1 = "GSI1"
	gsi2 = "GSI2"
)

// Repository implements repository.Repository against a single DynamoDB
// table. All calls go through a circuit breaker so a struggling table sheds
// load fast instead of piling up timeouts.
type Repository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
	breaker   *gobreaker.CircuitBreaker
}

// New creates a DynamoDB-backed repository.
func New(client *dynamodb.Client, tableName string, logger *zap.Logger) *Repository {
	settings := gobreaker.Settings{
		Name:        "dynamodb",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Conditional failures and client errors are application
			// outcomes, not table health signals.
			if err == nil || isConditionalCheckFailed(err) {
				return true
			}
			var apiErr smithy.APIError
			if stderrors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultClient {
				return true
			}
			return false
		},
	}

	return &Repository{
		client:    client,
		tableName: tableName,
		logger:    logger,
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

var _ repository.Repository = (*Repository)(nil)

// execute runs a DynamoDB call through the circuit breaker.
func execute[T any](r *Repository, fn func() (T, error)) (T, error) {
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, errors.Unavailable("STORE_UNAVAILABLE", "datastore temporarily unavailable").
				WithCause(err).
				Build()
		}
		return zero, err
	}
	return out.(T), nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if stderrors.As(err, &ccf) {
		return true
	}
	var canceled *types.TransactionCanceledException
	if stderrors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

// wrapStoreError converts low-level SDK failures into classified errors so
// callers never see raw smithy errors.
func wrapStoreError(err error, operation string) error {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException":
			return errors.Unavailable("STORE_THROTTLED", "datastore is throttling requests").
				WithOperation(operation).
				WithCause(err).
				Build()
		case "ResourceNotFoundException":
			return errors.Internal("STORE_MISCONFIGURED", "datastore table not found").
				WithOperation(operation).
				WithCause(err).
				Build()
		}
	}
	return errors.Internal(errors.CodeInternalError.String(), fmt.Sprintf("%s failed", operation)).
		WithOperation(operation).
		WithCause(err).
		Build()
}

func componentPK(id string) string { return "COMPONENT#" + id }
func userPK(id string) string      { return "USER#" + id }
func buildSK(id string) string     { return "BUILD#" + id }
func buildGSI1PK(id string) string { return "BUILD#" + id }
func categoryPK(cat string) string { return "CATEGORY#" + cat }
// emailPK lowercases so lookups match stored profiles regardless of the
// casing the caller typed; accounts store emails lowercased.
func emailPK(email string) string { return "EMAIL#" + strings.ToLower(strings.TrimSpace(email)) }
func sharePK(token string) string  { return "SHARE#" + token }
func likeSK(userID string) string  { return "LIKE#" + userID }
func followSK(id string) string    { return "FOLLOWS#" + id }

const (
	skMetadata    = "METADATA"
	skProfile     = "PROFILE"
	pkAlerts      = "ALERTS"
	gsi1Reorders  = "REORDERS"
	gsi2Public    = "PUBLIC"
)

// tsID builds a sort key suffix that orders items chronologically while
// staying unique.
func tsID(prefix string, at time.Time, id string) string {
	return fmt.Sprintf("%s#%s#%s", prefix, at.UTC().Format(time.RFC3339Nano), id)
}

// ctxCheck returns early when the context is already done, saving a wasted
// round trip through the breaker.
func ctxCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Timeout("REQUEST_CANCELLED", "request cancelled").
			WithCause(ctx.Err()).
			Build()
	default:
		return nil
	}
}
