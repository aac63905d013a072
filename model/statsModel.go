package model

type Stats struct {
	TotalBooks  int64 `json:"totalBooks"`
	ActiveUsers int64 `json:"activeUsers"`
	IssuedBooks int64 `json:"issuedBooks"`
	Overdue     int64 `json:"overdue"`
}
