package blog

import (
	"context"
	"fmt"
	"strings"

	"blogpress/internal/apperr"
	"blogpress/internal/authz"
	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// TaxonomyInput creates or patches a category or tag. On update, nil
// fields are left unchanged. Description is ignored for tags.
type TaxonomyInput struct {
	Name        *string
	Slug        *string
	Description *string
}

// Taxonomy lists categories and tags publicly and lets staff manage them.
type Taxonomy struct {
	categories CategoryRepository
	tags       TagRepository
}

// NewTaxonomy wires the taxonomy service to its repositories.
func NewTaxonomy(categories CategoryRepository, tags TagRepository) *Taxonomy {
	return &Taxonomy{categories: categories, tags: tags}
}

// Categories returns every category with its post count.
func (s *Taxonomy) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Tags returns every tag with its post count.
func (s *Taxonomy) Tags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

// CreateCategory adds a category. Staff only.
func (s *Taxonomy) CreateCategory(ctx context.Context, caller *models.User, in TaxonomyInput) (*models.Category, error) {
	if err := authz.RequireStaff(caller); err != nil {
		return nil, err
	}
	c := &models.Category{}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	name, sl, err := nameAndSlug(in, "", "", maxCategoryName, true)
	if err != nil {
		return nil, err
	}
	c.Name, c.Slug = name, sl
	if runeLen(c.Description) > maxDescriptionLen {
		return nil, apperr.Invalid("description", "Description is too long.")
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory patches the category identified by categorySlug.
func (s *Taxonomy) UpdateCategory(ctx context.Context, caller *models.User, categorySlug string, in TaxonomyInput) (*models.Category, error) {
	if err := authz.RequireStaff(caller); err != nil {
		return nil, err
	}
	c, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	name, sl, err := nameAndSlug(in, c.Name, c.Slug, maxCategoryName, false)
	if err != nil {
		return nil, err
	}
	c.Name, c.Slug = name, sl
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
		if runeLen(c.Description) > maxDescriptionLen {
			return nil, apperr.Invalid("description", "Description is too long.")
		}
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category; its posts become uncategorized.
func (s *Taxonomy) DeleteCategory(ctx context.Context, caller *models.User, categorySlug string) error {
	if err := authz.RequireStaff(caller); err != nil {
		return err
	}
	c, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.ErrNotFound
	}
	return s.categories.Delete(ctx, c.ID)
}

// CreateTag adds a tag. Staff only.
func (s *Taxonomy) CreateTag(ctx context.Context, caller *models.User, in TaxonomyInput) (*models.Tag, error) {
	if err := authz.RequireStaff(caller); err != nil {
		return nil, err
	}
	name, sl, err := nameAndSlug(in, "", "", maxTagName, true)
	if err != nil {
		return nil, err
	}
	t := &models.Tag{Name: name, Slug: sl}
	if err := s.tags.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTag patches the tag identified by tagSlug.
func (s *Taxonomy) UpdateTag(ctx context.Context, caller *models.User, tagSlug string, in TaxonomyInput) (*models.Tag, error) {
	if err := authz.RequireStaff(caller); err != nil {
		return nil, err
	}
	t, err := s.tags.FindBySlug(ctx, tagSlug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.ErrNotFound
	}
	name, sl, err := nameAndSlug(in, t.Name, t.Slug, maxTagName, false)
	if err != nil {
		return nil, err
	}
	t.Name, t.Slug = name, sl
	if err := s.tags.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTag removes a tag and its post links.
func (s *Taxonomy) DeleteTag(ctx context.Context, caller *models.User, tagSlug string) error {
	if err := authz.RequireStaff(caller); err != nil {
		return err
	}
	t, err := s.tags.FindBySlug(ctx, tagSlug)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.ErrNotFound
	}
	return s.tags.Delete(ctx, t.ID)
}

// nameAndSlug applies in to the current name and slug. On create the name
// is required and a missing slug is derived from it. An existing slug is
// only replaced when one is supplied explicitly.
func nameAndSlug(in TaxonomyInput, name, sl string, maxName int, creating bool) (string, string, error) {
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	switch n := runeLen(name); {
	case n == 0:
		return "", "", apperr.Invalid("name", "Name is required.")
	case n > maxName:
		return "", "", apperr.Invalid("name", fmt.Sprintf("Name cannot exceed %d characters.", maxName))
	}

	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		sl = strings.TrimSpace(*in.Slug)
		if !slug.Valid(sl) || runeLen(sl) > maxName {
			return "", "", apperr.Invalid("slug", "Slug may contain only lowercase letters, digits and single hyphens.")
		}
	} else if creating {
		sl = slug.Generate(name)
		if runeLen(sl) > maxName {
			sl = strings.TrimRight(sl[:maxName], "-")
		}
		if sl == "" {
			return "", "", apperr.Invalid("name", "Name must contain at least one letter or digit.")
		}
	}
	return name, sl, nil
}
