// Package memory provides an in-memory Repository used by unit tests and
// local development mode. It is safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pcforge-backend/internal/domain/build"
	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/social"
	"pcforge-backend/internal/domain/user"
	"pcforge-backend/internal/repository"
)

// Repository is the in-memory implementation of repository.Repository.
type Repository struct {
	mu sync.RWMutex

	components map[string]*component.Component
	movements  map[string][]component.Movement
	alerts     map[string]component.Alert
	reorders   map[string]*component.Reorder
	prices     map[string][]component.PricePoint

	builds map[string]*build.Build

	users   map[string]*user.User
	byEmail map[string]string // email -> user ID
	follows map[string]map[string]bool // follower -> followees

	likes         map[string]map[string]*social.Like // build -> user -> like
	comments      map[string]*social.Comment
	notifications map[string][]*social.Notification // recipient -> inbox

	// failures maps an operation name to an error the next matching call
	// returns, letting tests exercise failure paths.
	failMu   sync.Mutex
	failures map[string]error
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		components:    make(map[string]*component.Component),
		movements:     make(map[string][]component.Movement),
		alerts:        make(map[string]component.Alert),
		reorders:      make(map[string]*component.Reorder),
		prices:        make(map[string][]component.PricePoint),
		builds:        make(map[string]*build.Build),
		users:         make(map[string]*user.User),
		byEmail:       make(map[string]string),
		follows:       make(map[string]map[string]bool),
		likes:         make(map[string]map[string]*social.Like),
		comments:      make(map[string]*social.Comment),
		notifications: make(map[string][]*social.Notification),
		failures:      make(map[string]error),
	}
}

// SetError makes the named operation fail once with err.
func (r *Repository) SetError(operation string, err error) {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	r.failures[operation] = err
}

func (r *Repository) failFor(operation string) error {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	if err, ok := r.failures[operation]; ok {
		delete(r.failures, operation)
		return err
	}
	return nil
}

// Component catalog

func (r *Repository) CreateComponent(_ context.Context, c *component.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor("CreateComponent"); err != nil {
		return err
	}
	if _, ok := r.components[c.ID.String()]; ok {
		return shared.ErrComponentExists
	}
	cp := *c
	r.components[c.ID.String()] = &cp
	return nil
}

func (r *Repository) UpdateComponent(_ context.Context, c *component.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor("UpdateComponent"); err != nil {
		return err
	}
	if _, ok := r.components[c.ID.String()]; !ok {
		return shared.ErrComponentNotFound
	}
	cp := *c
	r.components[c.ID.String()] = &cp
	return nil
}

func (r *Repository) DeleteComponent(_ context.Context, id shared.ComponentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[id.String()]; !ok {
		return shared.ErrComponentNotFound
	}
	delete(r.components, id.String())
	return nil
}

func (r *Repository) FindComponentByID(_ context.Context, id shared.ComponentID) (*component.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.failFor("FindComponentByID"); err != nil {
		return nil, err
	}
	c, ok := r.components[id.String()]
	if !ok {
		return nil, shared.ErrComponentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Repository) FindComponents(_ context.Context, q repository.ComponentQuery) ([]*component.Component, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*component.Component
	for _, c := range r.components {
		if q.HasCategory() && c.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Search)) {
			continue
		}
		if c.Price.Cents() < q.MinCents {
			continue
		}
		if q.MaxCents > 0 && c.Price.Cents() > q.MaxCents {
			continue
		}
		if q.InStock && c.Stock <= 0 {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	sortComponents(out, q.SortBy, q.SortOrder)

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func sortComponents(cs []*component.Component, by, order string) {
	less := func(i, j int) bool { return cs[i].Name < cs[j].Name }
	if by == "price" {
		less = func(i, j int) bool { return cs[i].Price.Cents() < cs[j].Price.Cents() }
	}
	if order == "desc" {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.SliceStable(cs, less)
}

// Inventory

func (r *Repository) RecordMovement(_ context.Context, m component.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := m.ComponentID.String()
	r.movements[key] = append(r.movements[key], m)
	return nil
}

func (r *Repository) ListMovements(_ context.Context, id shared.ComponentID) ([]component.Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]component.Movement(nil), r.movements[id.String()]...), nil
}

func (r *Repository) CreateAlert(_ context.Context, a component.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[a.ID] = a
	return nil
}

func (r *Repository) ListOpenAlerts(_ context.Context) ([]component.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []component.Alert
	for _, a := range r.alerts {
		if a.ResolvedAt == nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) ResolveAlert(_ context.Context, alertID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return shared.ErrValidation
	}
	now := time.Now()
	a.ResolvedAt = &now
	r.alerts[alertID] = a
	return nil
}

func (r *Repository) CreateReorder(_ context.Context, re *component.Reorder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *re
	r.reorders[re.ID] = &cp
	return nil
}

func (r *Repository) UpdateReorder(_ context.Context, re *component.Reorder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reorders[re.ID]; !ok {
		return shared.ErrValidation
	}
	cp := *re
	r.reorders[re.ID] = &cp
	return nil
}

func (r *Repository) FindReorderByID(_ context.Context, id string) (*component.Reorder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	re, ok := r.reorders[id]
	if !ok {
		return nil, shared.ErrValidation
	}
	cp := *re
	return &cp, nil
}

func (r *Repository) ListReorders(_ context.Context, status component.ReorderStatus) ([]*component.Reorder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*component.Reorder
	for _, re := range r.reorders {
		if status != "" && re.Status != status {
			continue
		}
		cp := *re
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) RecordPricePoint(_ context.Context, p component.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := p.ComponentID.String()
	r.prices[key] = append(r.prices[key], p)
	return nil
}

func (r *Repository) ListPriceHistory(_ context.Context, id shared.ComponentID) ([]component.PricePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]component.PricePoint(nil), r.prices[id.String()]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Builds

func (r *Repository) CreateBuild(_ context.Context, b *build.Build) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor("CreateBuild"); err != nil {
		return err
	}
	r.builds[b.ID.String()] = cloneBuild(b)
	return nil
}

func (r *Repository) UpdateBuild(_ context.Context, b *build.Build, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor("UpdateBuild"); err != nil {
		return err
	}
	stored, ok := r.builds[b.ID.String()]
	if !ok {
		return shared.ErrBuildNotFound
	}
	if stored.Version.Int() != expectedVersion {
		return shared.ErrVersionConflict
	}
	r.builds[b.ID.String()] = cloneBuild(b)
	return nil
}

func (r *Repository) DeleteBuild(_ context.Context, id shared.BuildID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builds[id.String()]; !ok {
		return shared.ErrBuildNotFound
	}
	delete(r.builds, id.String())
	return nil
}

func (r *Repository) FindBuildByID(_ context.Context, id shared.BuildID) (*build.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builds[id.String()]
	if !ok {
		return nil, shared.ErrBuildNotFound
	}
	return cloneBuild(b), nil
}

func (r *Repository) FindBuildByShareToken(_ context.Context, token string) (*build.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.builds {
		if b.ShareToken != "" && b.ShareToken == token {
			return cloneBuild(b), nil
		}
	}
	return nil, shared.ErrBuildNotFound
}

func (r *Repository) FindBuildsByUser(_ context.Context, userID shared.UserID) ([]*build.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*build.Build
	for _, b := range r.builds {
		if b.UserID.Equals(userID) {
			out = append(out, cloneBuild(b))
		}
	}
	sortBuildsNewestFirst(out)
	return out, nil
}

func (r *Repository) FindPublicBuilds(_ context.Context, p repository.Pagination) ([]*build.Build, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*build.Build
	for _, b := range r.builds {
		if b.IsPublic {
			out = append(out, cloneBuild(b))
		}
	}
	sortBuildsNewestFirst(out)

	if p.Offset >= len(out) {
		return nil, nil
	}
	out = out[p.Offset:]
	if limit := p.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) ListAllBuilds(_ context.Context) ([]*build.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*build.Build, 0, len(r.builds))
	for _, b := range r.builds {
		out = append(out, cloneBuild(b))
	}
	sortBuildsNewestFirst(out)
	return out, nil
}

func sortBuildsNewestFirst(bs []*build.Build) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].CreatedAt.After(bs[j].CreatedAt) })
}

func cloneBuild(b *build.Build) *build.Build {
	cp := *b
	cp.Selections = append([]build.Selection(nil), b.Selections...)
	return &cp
}

// Users

func (r *Repository) CreateUser(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return shared.ErrEmailTaken
	}
	cp := *u
	r.users[u.ID.String()] = &cp
	r.byEmail[u.Email] = u.ID.String()
	return nil
}

func (r *Repository) UpdateUser(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID.String()]; !ok {
		return shared.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID.String()] = &cp
	return nil
}

func (r *Repository) FindUserByID(_ context.Context, id shared.UserID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id.String()]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repository) FindUserByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *Repository) CreateFollow(_ context.Context, f *user.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.follows[f.FollowerID.String()]
	if !ok {
		set = make(map[string]bool)
		r.follows[f.FollowerID.String()] = set
	}
	set[f.FolloweeID.String()] = true
	return nil
}

func (r *Repository) DeleteFollow(_ context.Context, follower, followee shared.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.follows[follower.String()]
	if !set[followee.String()] {
		return shared.ErrUserNotFound
	}
	delete(set, followee.String())
	return nil
}

func (r *Repository) CountFollowers(_ context.Context, id shared.UserID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, set := range r.follows {
		if set[id.String()] {
			count++
		}
	}
	return count, nil
}

func (r *Repository) CountFollowing(_ context.Context, id shared.UserID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.follows[id.String()]), nil
}

func (r *Repository) IsFollowing(_ context.Context, follower, followee shared.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.follows[follower.String()][followee.String()], nil
}

// Social

func (r *Repository) CreateLike(_ context.Context, l *social.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.likes[l.BuildID.String()]
	if !ok {
		byUser = make(map[string]*social.Like)
		r.likes[l.BuildID.String()] = byUser
	}
	if _, exists := byUser[l.UserID.String()]; exists {
		return shared.ErrAlreadyLiked
	}
	cp := *l
	byUser[l.UserID.String()] = &cp
	return nil
}

func (r *Repository) DeleteLike(_ context.Context, userID shared.UserID, buildID shared.BuildID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser := r.likes[buildID.String()]
	if _, ok := byUser[userID.String()]; !ok {
		return shared.ErrLikeNotFound
	}
	delete(byUser, userID.String())
	return nil
}

func (r *Repository) CountLikes(_ context.Context, buildID shared.BuildID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.likes[buildID.String()]), nil
}

func (r *Repository) HasLiked(_ context.Context, userID shared.UserID, buildID shared.BuildID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.likes[buildID.String()][userID.String()]
	return ok, nil
}

func (r *Repository) CreateComment(_ context.Context, c *social.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *Repository) UpdateComment(_ context.Context, c *social.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[c.ID]; !ok {
		return shared.ErrCommentNotFound
	}
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *Repository) DeleteComment(_ context.Context, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[commentID]; !ok {
		return shared.ErrCommentNotFound
	}
	delete(r.comments, commentID)
	return nil
}

func (r *Repository) FindCommentByID(_ context.Context, commentID string) (*social.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, shared.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Repository) ListComments(_ context.Context, buildID shared.BuildID) ([]*social.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*social.Comment
	for _, c := range r.comments {
		if c.BuildID.Equals(buildID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) CreateNotification(_ context.Context, n *social.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	key := n.Recipient.String()
	r.notifications[key] = append(r.notifications[key], &cp)
	return nil
}

func (r *Repository) ListNotifications(_ context.Context, recipient shared.UserID, unreadOnly bool) ([]*social.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*social.Notification
	for _, n := range r.notifications[recipient.String()] {
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) MarkNotificationRead(_ context.Context, recipient shared.UserID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications[recipient.String()] {
		if n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return shared.ErrValidation
}

var _ repository.Repository = (*Repository)(nil)
