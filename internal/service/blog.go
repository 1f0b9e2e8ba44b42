package service

import (
	"context"
	"errors"
	"strings"

	"practice-api/internal/db"
	"practice-api/internal/models"
)

type BlogStore interface {
	CreatePost(ctx context.Context, p *models.BlogPost) error
	ListPublishedPosts(ctx context.Context, page models.Page) ([]models.BlogPost, int, error)
	GetPublishedPost(ctx context.Context, slug string) (*models.BlogPost, error)
}

type BlogService struct {
	store BlogStore
}

func NewBlogService(store BlogStore) *BlogService {
	return &BlogService{store: store}
}

func (s *BlogService) List(ctx context.Context, page models.Page) ([]models.BlogPost, models.Pagination, error) {
	posts, total, err := s.store.ListPublishedPosts(ctx, page)
	if err != nil {
		return nil, models.Pagination{}, Internal(err)
	}
	return posts, models.NewPagination(page, total), nil
}

// Get hides drafts: an unpublished slug is NotFound.
func (s *BlogService) Get(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := s.store.GetPublishedPost(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return nil, NotFound("Post not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return p, nil
}

func (s *BlogService) Create(ctx context.Context, p *models.BlogPost) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Title == "" || p.Slug == "" || p.Content == "" {
		return BadRequest("Title, slug and content required")
	}
	p.Tags = dedupeTags(p.Tags)

	err := s.store.CreatePost(ctx, p)
	if errors.Is(err, db.ErrDuplicate) {
		return Conflict("Slug already in use")
	}
	if err != nil {
		return Internal(err)
	}
	return nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
