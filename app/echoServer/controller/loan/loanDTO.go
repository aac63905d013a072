package loan

type IssueReq struct {
	BookID string `json:"bookId" validate:"required"`
}

type ReturnReq struct {
	BorrowID string `json:"borrowId" validate:"required"`
}

// ReadQuery picks how a borrowed PDF is delivered. Without either flag the
// client is redirected to the file.
type ReadQuery struct {
	Stream string `query:"stream"`
	JSON   string `query:"json"`
}
