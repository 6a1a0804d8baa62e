// Package social implements likes, comments, follows, and the notification
// inbox over builds and users.
package social

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/social"
	"pcforge-backend/internal/domain/user"
	"pcforge-backend/internal/repository"
)

// Service coordinates social interactions. Notification writes are best
// effort: the triggering action never fails because its notification could
// not be stored.
type Service struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewService creates a social service.
func NewService(repo repository.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LikeSummary reports a build's like state for one viewer.
type LikeSummary struct {
	Count    int  `json:"count"`
	HasLiked bool `json:"hasLiked"`
}

// Like records that a user likes a build and notifies the build owner.
// Liking twice fails; liking your own build skips the notification.
func (s *Service) Like(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (*LikeSummary, error) {
	b, err := s.visibleBuild(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateLike(ctx, social.NewLike(userID, buildID)); err != nil {
		return nil, err
	}

	if !b.UserID.Equals(userID) {
		s.notify(ctx, social.NewNotification(b.UserID, userID, social.NotificationLike, &buildID,
			fmt.Sprintf("Someone liked your build %q", b.Name)))
	}
	return s.likeSummary(ctx, userID, buildID)
}

// Unlike removes a user's like from a build.
func (s *Service) Unlike(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (*LikeSummary, error) {
	if err := s.repo.DeleteLike(ctx, userID, buildID); err != nil {
		return nil, err
	}
	return s.likeSummary(ctx, userID, buildID)
}

// Likes returns the like count and whether the viewer has liked the build.
func (s *Service) Likes(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (*LikeSummary, error) {
	if _, err := s.visibleBuild(ctx, userID, buildID); err != nil {
		return nil, err
	}
	return s.likeSummary(ctx, userID, buildID)
}

func (s *Service) likeSummary(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (*LikeSummary, error) {
	count, err := s.repo.CountLikes(ctx, buildID)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.HasLiked(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	return &LikeSummary{Count: count, HasLiked: liked}, nil
}

// Comment posts a comment on a build and notifies the build owner.
func (s *Service) Comment(ctx context.Context, userID shared.UserID, buildID shared.BuildID, content string) (*social.Comment, error) {
	b, err := s.visibleBuild(ctx, userID, buildID)
	if err != nil {
		return nil, err
	}
	c, err := social.NewComment(userID, buildID, content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	if !b.UserID.Equals(userID) {
		s.notify(ctx, social.NewNotification(b.UserID, userID, social.NotificationComment, &buildID,
			fmt.Sprintf("New comment on your build %q", b.Name)))
	}

	s.logger.Info("comment posted",
		zap.String("commentId", c.ID),
		zap.String("buildId", buildID.String()),
	)
	return c, nil
}

// EditComment updates a comment's content. Only the author may edit.
func (s *Service) EditComment(ctx context.Context, userID shared.UserID, commentID, content string) (*social.Comment, error) {
	c, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !c.UserID.Equals(userID) {
		return nil, shared.ErrNotCommentAuthor
	}
	if err := c.Edit(content); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. The author or the build owner may delete.
func (s *Service) DeleteComment(ctx context.Context, userID shared.UserID, commentID string) error {
	c, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !c.UserID.Equals(userID) {
		b, err := s.repo.FindBuildByID(ctx, c.BuildID)
		if err != nil || !b.UserID.Equals(userID) {
			return shared.ErrNotCommentAuthor
		}
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// ListComments returns a build's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, userID shared.UserID, buildID shared.BuildID) ([]*social.Comment, error) {
	if _, err := s.visibleBuild(ctx, userID, buildID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, buildID)
}

// Follow adds a follow edge and notifies the followee. Following twice is a
// no-op at the storage layer.
func (s *Service) Follow(ctx context.Context, follower, followee shared.UserID) error {
	if _, err := s.repo.FindUserByID(ctx, followee); err != nil {
		return err
	}
	already, err := s.repo.IsFollowing(ctx, follower, followee)
	if err != nil {
		return err
	}
	f, err := user.NewFollow(follower, followee)
	if err != nil {
		return err
	}
	if err := s.repo.CreateFollow(ctx, f); err != nil {
		return err
	}

	if !already {
		s.notify(ctx, social.NewNotification(followee, follower, social.NotificationFollow, nil,
			"You have a new follower"))
	}
	return nil
}

// Unfollow removes a follow edge.
func (s *Service) Unfollow(ctx context.Context, follower, followee shared.UserID) error {
	return s.repo.DeleteFollow(ctx, follower, followee)
}

// FollowStats holds a user's follow graph counts as seen by one viewer.
type FollowStats struct {
	Followers   int  `json:"followers"`
	Following   int  `json:"following"`
	IsFollowing bool `json:"isFollowing"`
}

// FollowStatsFor returns follower and following counts for a user, plus
// whether the viewer follows them.
func (s *Service) FollowStatsFor(ctx context.Context, viewer, userID shared.UserID) (*FollowStats, error) {
	followers, err := s.repo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.repo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	isFollowing, err := s.repo.IsFollowing(ctx, viewer, userID)
	if err != nil {
		return nil, err
	}
	return &FollowStats{Followers: followers, Following: following, IsFollowing: isFollowing}, nil
}

// ListNotifications returns a user's inbox, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID shared.UserID, unreadOnly bool) ([]*social.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, unreadOnly)
}

// MarkNotificationRead flags one of the user's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID shared.UserID, notificationID string) error {
	return s.repo.MarkNotificationRead(ctx, userID, notificationID)
}

func (s *Service) notify(ctx context.Context, n *social.Notification) {
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("notification write failed",
			zap.String("recipientId", n.Recipient.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

// visibleBuild loads a build that the user may interact with: their own, or
// any public one. Private foreign builds read as not found.
func (s *Service) visibleBuild(ctx context.Context, userID shared.UserID, buildID shared.BuildID) (*build.Build, error) {
	b, err := s.repo.FindBuildByID(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if !b.IsPublic && !b.UserID.Equals(userID) {
		return nil, shared.ErrBuildNotFound
	}
	return b, nil
}
