package book

import "github.com/kp7829294-create/libzone/model"

// SearchQuery is the catalog filter on GET /api/books.
type SearchQuery struct {
	Q        string `query:"q"`
	Category string `query:"category"`
}

func (q SearchQuery) Filter() model.BookFilter {
	return model.BookFilter{Text: q.Q, Category: q.Category}
}
