package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/apperr"
	"blogpress/internal/blog"
	"blogpress/internal/models"
)

func nowForTest() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TestPostStoreCreateWithRelations(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	author := newTestUser(t, db)

	cat := &models.Category{Name: "Cat " + uuid.NewString()[:8], Slug: "cat-" + uuid.NewString()}
	if err := NewCategoryStore(db).Create(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", cat.ID) })

	tag := &models.Tag{Name: "tag-" + uuid.NewString()[:8], Slug: "tag-" + uuid.NewString()}
	if err := NewTagStore(db).Create(ctx, tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE id = $1", tag.ID) })

	s := NewPostStore(db)
	p := &models.Post{
		Title:      "Relations",
		Slug:       "relations-" + uuid.NewString(),
		Content:    "Content long enough.",
		AuthorID:   author.ID,
		CategoryID: &cat.ID,
		Status:     models.PostStatusDraft,
		Tags:       []models.Tag{*tag},
	}
	if err := s.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got == nil {
		t.Fatal("expected post, got nil")
	}
	if got.Author == nil || got.Author.Name != author.Name {
		t.Errorf("author summary = %+v", got.Author)
	}
	if got.Category == nil || got.Category.Slug != cat.Slug {
		t.Errorf("category = %+v", got.Category)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != tag.ID {
		t.Errorf("tags = %+v", got.Tags)
	}
	if got.PublishedAt != nil {
		t.Error("draft must not have published_at")
	}
}

func TestPostStoreDuplicateSlug(t *testing.T) {
	db := testDB(t)
	author := newTestUser(t, db)
	p := newTestPost(t, db, author, "Original")

	dup := &models.Post{Title: "Dup", Slug: p.Slug, Content: "xxxxxxxxxxxx", AuthorID: author.ID, Status: models.PostStatusDraft}
	err := NewPostStore(db).Create(context.Background(), dup)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPostStoreUpdateKeepsPublishedAt(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewPostStore(db)
	author := newTestUser(t, db)
	p := newTestPost(t, db, author, "Publish once")
	first := *p.PublishedAt

	later := first.Add(time.Hour)
	p.PublishedAt = &later
	p.Status = models.PostStatusDraft
	p.Title = "Unpublished"
	if err := s.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.FindBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(first) {
		t.Errorf("published_at = %v, want %v", got.PublishedAt, first)
	}
	if got.Title != "Unpublished" || got.Status != models.PostStatusDraft {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestPostStoreListFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewPostStore(db)
	author := newTestUser(t, db)

	marker := uuid.NewString()[:8]
	newTestPost(t, db, author, "Alpha "+marker)
	newTestPost(t, db, author, "Beta "+marker)

	published := models.PostStatusPublished
	posts, total, err := s.List(ctx, blog.PostFilter{
		Search:   marker,
		AuthorID: &author.ID,
		Status:   &published,
		Ordering: blog.Ordering{Field: "title"},
		Limit:    1,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(posts) != 1 || posts[0].Title != "Alpha "+marker {
		t.Errorf("first page = %+v", posts)
	}
}

func TestPostStoreConcurrentCounters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewPostStore(db)
	author := newTestUser(t, db)
	p := newTestPost(t, db, author, "Counters")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementLikes(ctx, p.ID); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.IncrementViews(ctx, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("increment: %v", err)
	}

	got, err := s.FindBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got.Likes != n || got.Views != n {
		t.Errorf("likes=%d views=%d, want %d each", got.Likes, got.Views, n)
	}
}

func TestPostStoreDeleteCascadesComments(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	author := newTestUser(t, db)
	p := newTestPost(t, db, author, "Doomed")

	cs := NewCommentStore(db)
	c := &models.Comment{PostID: p.ID, AuthorID: author.ID, Content: "bye", IsApproved: true}
	if err := cs.Create(ctx, c); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := NewPostStore(db).Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := cs.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Error("comment should be removed with its post")
	}

	if _, err := NewPostStore(db).IncrementLikes(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("increment on deleted post: %v", err)
	}
}
