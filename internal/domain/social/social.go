// Package social models likes, comments, and notifications on builds.
package social

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"pcforge-backend/internal/domain/shared"
)

// Like marks that a user likes a build. At most one like exists per
// user and build pair.
type Like struct {
	UserID    shared.UserID  `json:"userId"`
	BuildID   shared.BuildID `json:"buildId"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewLike creates a like.
func NewLike(userID shared.UserID, buildID shared.BuildID) *Like {
	return &Like{
		UserID:    userID,
		BuildID:   buildID,
		CreatedAt: time.Now(),
	}
}

// Comment is a user's remark on a build. Only the author may edit or
// delete it.
type Comment struct {
	ID        string         `json:"id"`
	UserID    shared.UserID  `json:"userId"`
	BuildID   shared.BuildID `json:"buildId"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewComment creates a comment with content validation.
func NewComment(userID shared.UserID, buildID shared.BuildID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > shared.MaxCommentLength {
		return nil, shared.ErrValidation
	}
	now := time.Now()
	return &Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		BuildID:   buildID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Edit replaces the comment content. The service layer enforces authorship.
func (c *Comment) Edit(content string) error {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > shared.MaxCommentLength {
		return shared.ErrValidation
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return nil
}

// NotificationType says what event produced a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is a stored event for a recipient's inbox. Delivery is pull
// only; readers list and mark them read over the API.
type Notification struct {
	ID        string           `json:"id"`
	Recipient shared.UserID    `json:"recipientId"`
	Sender    shared.UserID    `json:"senderId"`
	Type      NotificationType `json:"type"`
	BuildID   *shared.BuildID  `json:"buildId,omitempty"`
	Content   string           `json:"content"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification creates an unread notification.
func NewNotification(recipient, sender shared.UserID, t NotificationType, buildID *shared.BuildID, content string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Sender:    sender,
		Type:      t,
		BuildID:   buildID,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() {
	n.IsRead = true
}
