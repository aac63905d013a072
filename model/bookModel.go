// model/book.go
package model

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultRating = 4.5
	DefaultCover  = "/book-1.png"
)

// Book is a lendable title. Invariant: 0 <= Available <= Total.
type Book struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Author       string    `json:"author" bson:"author"`
	Category     string    `json:"category" bson:"category"`
	Total        int       `json:"total" bson:"total"`
	Available    int       `json:"available" bson:"available"`
	Image        string    `json:"image" bson:"image"`
	FilePublicID string    `json:"filePublicId" bson:"file_public_id"`
	FileURL      string    `json:"fileUrl" bson:"file_url"`
	Rating       float64   `json:"rating" bson:"rating"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// BookFilter drives catalog search. Empty fields are ignored.
type BookFilter struct {
	Text     string
	Category string
}

// CreateBookReq represents the admin create payload
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title        string   `json:"title" validate:"required"`
	Author       string   `json:"author" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Total        *int     `json:"total"`
	Available    *int     `json:"available"`
	Image        string   `json:"image" validate:"required"`
	FilePublicID string   `json:"filePublicId" validate:"required"`
	FileURL      string   `json:"fileUrl"`
	Rating       *float64 `json:"rating"`
}

// BookPatch is a partial admin edit; nil fields are left untouched.
// swagger:model BookPatch
type BookPatch struct {
	Title     *string  `json:"title"`
	Author    *string  `json:"author"`
	Category  *string  `json:"category"`
	Total     *int     `json:"total"`
	Available *int     `json:"available"`
	Image     *string  `json:"image"`
	FileURL   *string  `json:"fileUrl"`
	Rating    *float64 `json:"rating"`
}

// NewBook builds a book from a create request, coercing stock and rating.
func NewBook(req CreateBookReq) Book {
	total := 1
	if req.Total != nil {
		total = *req.Total
	}
	total = max(1, total)

	avail := total
	if req.Available != nil {
		avail = clamp(*req.Available, 0, total)
	}

	rating := DefaultRating
	if req.Rating != nil {
		rating = coerceRating(*req.Rating)
	}

	return Book{
		Title:        strings.TrimSpace(req.Title),
		Author:       strings.TrimSpace(req.Author),
		Category:     strings.TrimSpace(req.Category),
		Total:        total,
		Available:    avail,
		Image:        req.Image,
		FilePublicID: req.FilePublicID,
		FileURL:      req.FileURL,
		Rating:       rating,
	}
}

// Apply writes the patch onto b. Total is coerced to >= 1 and pulls Available
// down with it; Available is coerced into [0, Total]. The override does not
// look at outstanding loans.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Total != nil {
		b.Total = max(1, *p.Total)
		b.Available = min(b.Available, b.Total)
	}
	if p.Available != nil {
		b.Available = clamp(*p.Available, 0, b.Total)
	}
	if p.Image != nil {
		b.Image = *p.Image
	}
	if p.FileURL != nil {
		b.FileURL = *p.FileURL
	}
	if p.Rating != nil {
		b.Rating = coerceRating(*p.Rating)
	}
}

func coerceRating(r float64) float64 {
	if r <= 0 || math.IsNaN(r) {
		return DefaultRating
	}
	return min(r, 5)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
