package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/social"
	"pcforge-backend/internal/domain/user"
	"pcforge-backend/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	return NewService(repo, zaptest.NewLogger(t)), repo
}

func mustUserID(t *testing.T, s string) shared.UserID {
	t.Helper()
	id, err := shared.NewUserID(s)
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, repo *memory.Repository, id shared.UserID) {
	t.Helper()
	u, err := user.New(id, id.String(), id.String()+"@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), u))
}

func seedPublicBuild(t *testing.T, repo *memory.Repository, owner shared.UserID, name string) *build.Build {
	t.Helper()
	b, err := build.New(owner, name, "")
	require.NoError(t, err)
	b.Publish()
	require.NoError(t, repo.CreateBuild(context.Background(), b))
	return b
}

func seedPrivateBuild(t *testing.T, repo *memory.Repository, owner shared.UserID, name string) *build.Build {
	t.Helper()
	b, err := build.New(owner, name, "")
	require.NoError(t, err)
	require.NoError(t, repo.CreateBuild(context.Background(), b))
	return b
}

func TestLikeNotifiesOwner(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "owner")
	fan := mustUserID(t, "fan")
	b := seedPublicBuild(t, repo, owner, "Showcase")

	summary, err := svc.Like(ctx, fan, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.True(t, summary.HasLiked)

	inbox, err := svc.ListNotifications(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, social.NotificationLike, inbox[0].Type)
	assert.False(t, inbox[0].IsRead)
}

func TestLikeTwiceFails(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fan := mustUserID(t, "fan")
	b := seedPublicBuild(t, repo, mustUserID(t, "owner"), "Showcase")

	_, err := svc.Like(ctx, fan, b.ID)
	require.NoError(t, err)
	_, err = svc.Like(ctx, fan, b.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyLiked)
}

func TestLikingOwnBuildSkipsNotification(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "owner")
	b := seedPrivateBuild(t, repo, owner, "Mine")

	_, err := svc.Like(ctx, owner, b.ID)
	require.NoError(t, err)

	inbox, err := svc.ListNotifications(ctx, owner, false)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestUnlike(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fan := mustUserID(t, "fan")
	b := seedPublicBuild(t, repo, mustUserID(t, "owner"), "Showcase")

	_, err := svc.Like(ctx, fan, b.ID)
	require.NoError(t, err)

	summary, err := svc.Unlike(ctx, fan, b.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.False(t, summary.HasLiked)

	_, err = svc.Unlike(ctx, fan, b.ID)
	assert.ErrorIs(t, err, shared.ErrLikeNotFound)
}

func TestPrivateBuildIsInvisibleToOthers(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	b := seedPrivateBuild(t, repo, mustUserID(t, "owner"), "Mine")

	_, err := svc.Like(ctx, mustUserID(t, "stranger"), b.ID)
	assert.ErrorIs(t, err, shared.ErrBuildNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "owner")
	author := mustUserID(t, "author")
	b := seedPublicBuild(t, repo, owner, "Showcase")

	c, err := svc.Comment(ctx, author, b.ID, "  nice airflow  ")
	require.NoError(t, err)
	assert.Equal(t, "nice airflow", c.Content)

	inbox, err := svc.ListNotifications(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, social.NotificationComment, inbox[0].Type)

	edited, err := svc.EditComment(ctx, author, c.ID, "great airflow")
	require.NoError(t, err)
	assert.Equal(t, "great airflow", edited.Content)

	comments, err := svc.ListComments(ctx, author, b.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, svc.DeleteComment(ctx, author, c.ID))
	comments, err = svc.ListComments(ctx, author, b.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestOnlyAuthorMayEdit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := mustUserID(t, "author")
	b := seedPublicBuild(t, repo, mustUserID(t, "owner"), "Showcase")

	c, err := svc.Comment(ctx, author, b.ID, "first")
	require.NoError(t, err)

	_, err = svc.EditComment(ctx, mustUserID(t, "stranger"), c.ID, "hijack")
	assert.ErrorIs(t, err, shared.ErrNotCommentAuthor)
}

func TestBuildOwnerMayDeleteComment(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "owner")
	b := seedPublicBuild(t, repo, owner, "Showcase")

	c, err := svc.Comment(ctx, mustUserID(t, "author"), b.ID, "spam")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteComment(ctx, mustUserID(t, "stranger"), c.ID), shared.ErrNotCommentAuthor)
	assert.NoError(t, svc.DeleteComment(ctx, owner, c.ID))
}

func TestEmptyCommentRejected(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	b := seedPublicBuild(t, repo, mustUserID(t, "owner"), "Showcase")

	_, err := svc.Comment(ctx, mustUserID(t, "author"), b.ID, "   ")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFollowGraph(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	alice := mustUserID(t, "alice")
	bob := mustUserID(t, "bob")
	seedUser(t, repo, alice)
	seedUser(t, repo, bob)

	require.NoError(t, svc.Follow(ctx, alice, bob))

	stats, err := svc.FollowStatsFor(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Followers)
	assert.Zero(t, stats.Following)
	assert.True(t, stats.IsFollowing)

	inbox, err := svc.ListNotifications(ctx, bob, false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, social.NotificationFollow, inbox[0].Type)

	// Re-following does not produce a second notification.
	require.NoError(t, svc.Follow(ctx, alice, bob))
	inbox, err = svc.ListNotifications(ctx, bob, false)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	require.NoError(t, svc.Unfollow(ctx, alice, bob))
	stats, err = svc.FollowStatsFor(ctx, alice, bob)
	require.NoError(t, err)
	assert.Zero(t, stats.Followers)
	assert.False(t, stats.IsFollowing)
}

func TestSelfFollowRejected(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	alice := mustUserID(t, "alice")
	seedUser(t, repo, alice)

	assert.ErrorIs(t, svc.Follow(ctx, alice, alice), shared.ErrSelfFollow)
}

func TestFollowUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Follow(ctx, mustUserID(t, "alice"), mustUserID(t, "ghost"))
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestMarkNotificationRead(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := mustUserID(t, "owner")
	b := seedPublicBuild(t, repo, owner, "Showcase")

	_, err := svc.Like(ctx, mustUserID(t, "fan"), b.ID)
	require.NoError(t, err)

	inbox, err := svc.ListNotifications(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	require.NoError(t, svc.MarkNotificationRead(ctx, owner, inbox[0].ID))

	unread, err := svc.ListNotifications(ctx, owner, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.ListNotifications(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRead)
}
