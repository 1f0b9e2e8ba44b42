package models

import "time"

type Author struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type BlogPost struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         *string    `json:"excerpt"`
	Author          Author     `json:"author"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
	Tags            []string   `json:"tags"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"publishedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}
