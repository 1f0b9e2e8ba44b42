package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"practice-api/internal/models"
)

func (db *DB) CreatePost(ctx context.Context, p *models.BlogPost) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	p.ID = newID()
	p.CreatedAt = now()
	var publishedAt sql.NullTime
	if p.Published {
		t := p.CreatedAt
		p.PublishedAt = &t
		publishedAt = sql.NullTime{Time: t, Valid: true}
	} else {
		p.PublishedAt = nil
	}

	query := `INSERT INTO blog_posts (id, title, slug, content, excerpt, author_id, meta_title,
		meta_description, tags, published, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.exec(ctx, query, p.ID, p.Title, p.Slug, p.Content, nullString(p.Excerpt), p.Author.ID,
		nullString(p.MetaTitle), nullString(p.MetaDescription), string(tags), p.Published, publishedAt, p.CreatedAt)
	return storeErr("create post", err)
}

// ListPublishedPosts returns a page of published posts, newest first,
// without their content.
func (db *DB) ListPublishedPosts(ctx context.Context, page models.Page) ([]models.BlogPost, int, error) {
	total, err := db.count(ctx, "SELECT COUNT(*) FROM blog_posts WHERE published = ?", true)
	if err != nil {
		return nil, 0, storeErr("count posts", err)
	}

	query := `SELECT p.id, p.title, p.slug, p.excerpt, p.author_id, COALESCE(u.email, ''), p.tags,
			p.published, p.published_at, p.created_at
		FROM blog_posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.published = ?
		ORDER BY p.published_at DESC, p.id DESC LIMIT ? OFFSET ?`
	rows, err := db.query(ctx, query, true, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, storeErr("list posts", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		var p models.BlogPost
		var excerpt sql.NullString
		var publishedAt sql.NullTime
		var tags string
		err := rows.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &p.Author.ID, &p.Author.Email, &tags,
			&p.Published, &publishedAt, &p.CreatedAt)
		if err != nil {
			return nil, 0, storeErr("scan post", err)
		}
		if err := finishPost(&p, excerpt, publishedAt, tags); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list posts", err)
	}
	return posts, total, nil
}

func (db *DB) GetPublishedPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.author_id, COALESCE(u.email, ''),
			p.meta_title, p.meta_description, p.tags, p.published, p.published_at, p.created_at
		FROM blog_posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.slug = ? AND p.published = ?`

	var p models.BlogPost
	var excerpt, metaTitle, metaDescription sql.NullString
	var publishedAt sql.NullTime
	var tags string
	err := db.queryRow(ctx, query, slug, true).Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &excerpt,
		&p.Author.ID, &p.Author.Email, &metaTitle, &metaDescription, &tags, &p.Published, &publishedAt, &p.CreatedAt)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	p.MetaTitle = stringPtr(metaTitle)
	p.MetaDescription = stringPtr(metaDescription)
	if err := finishPost(&p, excerpt, publishedAt, tags); err != nil {
		return nil, err
	}
	return &p, nil
}

func finishPost(p *models.BlogPost, excerpt sql.NullString, publishedAt sql.NullTime, tags string) error {
	p.Excerpt = stringPtr(excerpt)
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	return nil
}
