package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/service"
)

type BlogHandler struct {
	blog *service.BlogService
}

func NewBlogHandler(blog *service.BlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, pagination, err := h.blog.List(r.Context(), pageFromQuery(r, 10))
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"posts":      posts,
		"pagination": pagination,
	})
}

func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.Get(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title           string   `json:"title"`
		Slug            string   `json:"slug"`
		Content         string   `json:"content"`
		Excerpt         *string  `json:"excerpt"`
		MetaTitle       *string  `json:"metaTitle"`
		MetaDescription *string  `json:"metaDescription"`
		Tags            []string `json:"tags"`
		Published       bool     `json:"published"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	claims := caller(r)
	post := &models.BlogPost{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Author:          models.Author{ID: claims.ID, Email: claims.Email},
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Tags:            req.Tags,
		Published:       req.Published,
	}
	if err := h.blog.Create(r.Context(), post); err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, post)
}
