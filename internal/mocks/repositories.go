// Package mocks provides in-memory implementations of the repository
// interfaces for service and handler tests. All repositories created from
// one DB share its data, so a post sees its author and category.
package mocks

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// DB is the shared in-memory state.
type DB struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	posts      map[uuid.UUID]*models.Post
	postTags   map[uuid.UUID][]uuid.UUID
	categories map[uuid.UUID]*models.Category
	tags       map[uuid.UUID]*models.Tag
	comments   map[uuid.UUID]*models.Comment
	clock      time.Time

	// Err, when set, is returned by every repository call.
	Err error
}

// NewDB returns an empty in-memory database.
func NewDB() *DB {
	return &DB{
		users:      make(map[uuid.UUID]*models.User),
		posts:      make(map[uuid.UUID]*models.Post),
		postTags:   make(map[uuid.UUID][]uuid.UUID),
		categories: make(map[uuid.UUID]*models.Category),
		tags:       make(map[uuid.UUID]*models.Tag),
		comments:   make(map[uuid.UUID]*models.Comment),
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so rows get distinct, ordered timestamps.
func (db *DB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// Users returns a user repository over db.
func (db *DB) Users() *MockUserRepository { return &MockUserRepository{db: db} }

// Posts returns a post repository over db.
func (db *DB) Posts() *MockPostRepository { return &MockPostRepository{db: db} }

// Categories returns a category repository over db.
func (db *DB) Categories() *MockCategoryRepository { return &MockCategoryRepository{db: db} }

// Tags returns a tag repository over db.
func (db *DB) Tags() *MockTagRepository { return &MockTagRepository{db: db} }

// Comments returns a comment repository over db.
func (db *DB) Comments() *MockCommentRepository { return &MockCommentRepository{db: db} }

// MockUserRepository is an in-memory account.UserRepository.
type MockUserRepository struct{ db *DB }

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	for _, existing := range db.users {
		if existing.Email == u.Email {
			return apperr.Conflict("email", "already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = db.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	db.users[u.ID] = &cp
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	if u, ok := db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	stored, ok := db.users[u.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Name, stored.Bio, stored.Avatar = u.Name, u.Bio, u.Avatar
	stored.Website, stored.Twitter, stored.LinkedIn, stored.GitHub = u.Website, u.Twitter, u.LinkedIn, u.GitHub
	stored.UpdatedAt = db.tick()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if u, ok := db.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (m *MockUserRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if u, ok := db.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

// SetActive toggles a user's active flag. Test helper.
func (m *MockUserRepository) SetActive(id uuid.UUID, active bool) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if u, ok := m.db.users[id]; ok {
		u.IsActive = active
	}
}

// MockPostRepository is an in-memory blog.PostRepository.
type MockPostRepository struct{ db *DB }

func (m *MockPostRepository) Create(ctx context.Context, p *models.Post) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	for _, existing := range db.posts {
		if existing.Slug == p.Slug {
			return apperr.Conflict("slug", "already exists")
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = db.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	cp.Author, cp.Category, cp.Tags = nil, nil, nil
	db.posts[p.ID] = &cp
	db.postTags[p.ID] = p.TagIDs()
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, p *models.Post) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	stored, ok := db.posts[p.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	publishedAt := stored.PublishedAt
	if publishedAt == nil {
		publishedAt = p.PublishedAt
	}
	cp := *p
	cp.Author, cp.Category, cp.Tags = nil, nil, nil
	cp.Slug, cp.AuthorID, cp.CreatedAt = stored.Slug, stored.AuthorID, stored.CreatedAt
	cp.Views, cp.Likes = stored.Views, stored.Likes
	cp.PublishedAt = publishedAt
	cp.UpdatedAt = db.tick()
	db.posts[p.ID] = &cp
	db.postTags[p.ID] = p.TagIDs()
	p.PublishedAt, p.UpdatedAt = cp.PublishedAt, cp.UpdatedAt
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.posts[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(db.posts, id)
	delete(db.postTags, id)
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
	return nil
}

func (m *MockPostRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	for _, p := range db.posts {
		if p.Slug == slug {
			return db.materialize(p), nil
		}
	}
	return nil, nil
}

func (m *MockPostRepository) List(ctx context.Context, f blog.PostFilter) ([]models.Post, int, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, 0, db.Err
	}

	var matched []models.Post
	for _, p := range db.posts {
		full := db.materialize(p)
		if matches(full, f) {
			matched = append(matched, *full)
		}
	}

	ordering := f.Ordering
	if ordering.IsZero() {
		ordering = blog.DefaultOrdering
	}
	slices.SortFunc(matched, func(a, b models.Post) int {
		c := comparePosts(a, b, ordering.Field)
		if ordering.Desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})

	total := len(matched)
	if f.Limit > 0 {
		start := min(max(0, f.Offset), total)
		end := min(start+f.Limit, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.increment(id, func(p *models.Post) *int64 { return &p.Views })
}

func (m *MockPostRepository) IncrementLikes(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.increment(id, func(p *models.Post) *int64 { return &p.Likes })
}

func (m *MockPostRepository) increment(id uuid.UUID, field func(*models.Post) *int64) (int64, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return 0, db.Err
	}
	p, ok := db.posts[id]
	if !ok {
		return 0, apperr.ErrNotFound
	}
	n := field(p)
	*n++
	return *n, nil
}

// materialize copies p with its relations. Caller holds db.mu.
func (db *DB) materialize(p *models.Post) *models.Post {
	cp := *p
	if u, ok := db.users[p.AuthorID]; ok {
		cp.Author = u.Summary()
	}
	cp.Category = nil
	if p.CategoryID != nil {
		if c, ok := db.categories[*p.CategoryID]; ok {
			cat := *c
			cp.Category = &cat
		} else {
			cp.CategoryID = nil
		}
	}
	cp.Tags = []models.Tag{}
	for _, id := range db.postTags[p.ID] {
		if t, ok := db.tags[id]; ok {
			cp.Tags = append(cp.Tags, *t)
		}
	}
	slices.SortFunc(cp.Tags, func(a, b models.Tag) int { return strings.Compare(a.Name, b.Name) })
	return &cp
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matches(p *models.Post, f blog.PostFilter) bool {
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.Featured != nil && p.IsFeatured != *f.Featured {
		return false
	}
	if f.CategorySlug != "" && (p.Category == nil || p.Category.Slug != f.CategorySlug) {
		return false
	}
	if f.Tag != "" && !slices.ContainsFunc(p.Tags, func(t models.Tag) bool { return containsFold(t.Name, f.Tag) }) {
		return false
	}
	if f.Search != "" {
		author := ""
		if p.Author != nil {
			author = p.Author.Name
		}
		if !containsFold(p.Title, f.Search) && !containsFold(p.Content, f.Search) &&
			!containsFold(p.Excerpt, f.Search) && !containsFold(author, f.Search) {
			return false
		}
	}
	return true
}

func comparePosts(a, b models.Post, field string) int {
	switch field {
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "published_at":
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return 1
		case b.PublishedAt == nil:
			return -1
		}
		return a.PublishedAt.Compare(*b.PublishedAt)
	case "views":
		return cmpInt(a.Views, b.Views)
	case "likes":
		return cmpInt(a.Likes, b.Likes)
	case "title":
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MockCategoryRepository is an in-memory blog.CategoryRepository.
type MockCategoryRepository struct{ db *DB }

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	items := []models.Category{}
	for _, c := range db.categories {
		cp := *c
		for _, p := range db.posts {
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				cp.PostCount++
			}
		}
		items = append(items, cp)
	}
	slices.SortFunc(items, func(a, b models.Category) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	if c, ok := db.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	for _, c := range db.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if err := db.categoryConflict(c); err != nil {
		return err
	}
	c.ID = uuid.New()
	c.CreatedAt = db.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	db.categories[c.ID] = &cp
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.categories[c.ID]; !ok {
		return apperr.ErrNotFound
	}
	if err := db.categoryConflict(c); err != nil {
		return err
	}
	c.UpdatedAt = db.tick()
	cp := *c
	db.categories[c.ID] = &cp
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.categories[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(db.categories, id)
	for _, p := range db.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

func (db *DB) categoryConflict(c *models.Category) error {
	for _, other := range db.categories {
		if other.ID == c.ID {
			continue
		}
		if other.Name == c.Name {
			return apperr.Conflict("name", "already exists")
		}
		if other.Slug == c.Slug {
			return apperr.Conflict("slug", "already exists")
		}
	}
	return nil
}

// MockTagRepository is an in-memory blog.TagRepository.
type MockTagRepository struct{ db *DB }

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	items := []models.Tag{}
	for _, t := range db.tags {
		cp := *t
		for _, ids := range db.postTags {
			if slices.Contains(ids, t.ID) {
				cp.PostCount++
			}
		}
		items = append(items, cp)
	}
	slices.SortFunc(items, func(a, b models.Tag) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (m *MockTagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	items := []models.Tag{}
	for _, id := range ids {
		if t, ok := db.tags[id]; ok {
			items = append(items, *t)
		}
	}
	slices.SortFunc(items, func(a, b models.Tag) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (m *MockTagRepository) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	for _, t := range db.tags {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockTagRepository) Create(ctx context.Context, t *models.Tag) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if err := db.tagConflict(t); err != nil {
		return err
	}
	t.ID = uuid.New()
	t.CreatedAt = db.tick()
	cp := *t
	db.tags[t.ID] = &cp
	return nil
}

func (m *MockTagRepository) Update(ctx context.Context, t *models.Tag) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.tags[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	if err := db.tagConflict(t); err != nil {
		return err
	}
	cp := *t
	db.tags[t.ID] = &cp
	return nil
}

func (m *MockTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.tags[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(db.tags, id)
	for postID, ids := range db.postTags {
		db.postTags[postID] = slices.DeleteFunc(ids, func(x uuid.UUID) bool { return x == id })
	}
	return nil
}

func (db *DB) tagConflict(t *models.Tag) error {
	for _, other := range db.tags {
		if other.ID == t.ID {
			continue
		}
		if other.Name == t.Name {
			return apperr.Conflict("name", "already exists")
		}
		if other.Slug == t.Slug {
			return apperr.Conflict("slug", "already exists")
		}
	}
	return nil
}

// MockCommentRepository is an in-memory blog.CommentRepository.
type MockCommentRepository struct{ db *DB }

func (m *MockCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	c.ID = uuid.New()
	c.CreatedAt = db.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.Author = nil
	db.comments[c.ID] = &cp
	return nil
}

func (m *MockCommentRepository) Update(ctx context.Context, c *models.Comment) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	stored, ok := db.comments[c.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Content = c.Content
	stored.UpdatedAt = db.tick()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}
	if _, ok := db.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	db.deleteComment(id)
	return nil
}

// deleteComment removes id and, recursively, its replies.
func (db *DB) deleteComment(id uuid.UUID) {
	delete(db.comments, id)
	for cid, c := range db.comments {
		if c.ParentID != nil && *c.ParentID == id {
			db.deleteComment(cid)
		}
	}
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	if c, ok := db.comments[id]; ok {
		return db.withAuthor(c), nil
	}
	return nil, nil
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}
	items := []models.Comment{}
	for _, c := range db.comments {
		if c.PostID != postID || (approvedOnly && !c.IsApproved) {
			continue
		}
		items = append(items, *db.withAuthor(c))
	}
	slices.SortFunc(items, func(a, b models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return items, nil
}

func (m *MockCommentRepository) SetApproval(ctx context.Context, ids []uuid.UUID, approved bool) (int64, error) {
	db := m.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return 0, db.Err
	}
	var n int64
	for _, id := range ids {
		if c, ok := db.comments[id]; ok {
			c.IsApproved = approved
			n++
		}
	}
	return n, nil
}

func (db *DB) withAuthor(c *models.Comment) *models.Comment {
	cp := *c
	if u, ok := db.users[c.AuthorID]; ok {
		cp.Author = u.Summary()
	}
	return &cp
}
