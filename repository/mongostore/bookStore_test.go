package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kp7829294-create/libzone/model"
)

func TestSearchFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, searchFilter(model.BookFilter{}))

	f := searchFilter(model.BookFilter{Text: "c++ (2nd)", Category: "Programming"})
	re := bson.M{"$regex": `c\+\+ \(2nd\)`, "$options": "i"}
	assert.Equal(t, bson.A{bson.M{"title": re}, bson.M{"author": re}}, f["$or"])
	assert.Equal(t, "Programming", f["category"])

	f = searchFilter(model.BookFilter{Category: "History"})
	assert.NotContains(t, f, "$or")
}
