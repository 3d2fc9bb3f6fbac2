package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"socialnova/internal/models"
	"socialnova/internal/repository"
)

// MaxRangeSize bounds one collection query window.
const MaxRangeSize = 100

// Collection names accepted by CollectionService.
const (
	CollectionPosts  = "posts"
	CollectionUsers  = "users"
	CollectionRealms = "realms"
)

var orderColumns = map[string]map[string]bool{
	CollectionPosts:  {"id": true, "created_at": true, "likes_count": true, "comments_count": true},
	CollectionUsers:  {"id": true, "created_at": true, "username": true},
	CollectionRealms: {"id": true, "created_at": true, "name": true, "members_count": true, "posts_count": true},
}

// CollectionQuery selects rows [From, To] of a named collection.
type CollectionQuery struct {
	Name  string
	Order string // "column" or "column.asc" / "column.desc"
	From  int
	To    int
}

// CollectionService exposes a small generic query surface over the
// whitelisted collections.
type CollectionService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	realms repository.RealmRepository
	create func(context.Context, CreatePostInput) (*models.Post, error)
}

func NewCollectionService(
	posts repository.PostRepository,
	users repository.UserRepository,
	realms repository.RealmRepository,
	postService *PostService,
) *CollectionService {
	return &CollectionService{posts: posts, users: users, realms: realms, create: postService.CreatePost}
}

// ParseOrder validates "col[.asc|.desc]" against a collection's columns.
func ParseOrder(collection, order string) (repository.OrderBy, error) {
	cols, ok := orderColumns[collection]
	if !ok {
		return repository.OrderBy{}, models.NewNotFoundError("Collection", collection)
	}
	if order == "" {
		return repository.OrderBy{Column: "created_at", Desc: true}, nil
	}
	col, dir, _ := strings.Cut(order, ".")
	if !cols[col] {
		return repository.OrderBy{}, models.NewValidationError(fmt.Sprintf("cannot order %s by %q", collection, col))
	}
	switch dir {
	case "", "asc":
		return repository.OrderBy{Column: col}, nil
	case "desc":
		return repository.OrderBy{Column: col, Desc: true}, nil
	default:
		return repository.OrderBy{}, models.NewValidationError(fmt.Sprintf("invalid order direction %q", dir))
	}
}

// Query returns the rows of q's window. The result is a slice of the
// collection's model type.
func (s *CollectionService) Query(ctx context.Context, q CollectionQuery, viewerID uint) (interface{}, error) {
	order, err := ParseOrder(q.Name, q.Order)
	if err != nil {
		return nil, err
	}
	if q.From < 0 || q.To < q.From {
		return nil, models.NewValidationError("range must satisfy 0 <= from <= to")
	}
	if q.To-q.From >= MaxRangeSize {
		return nil, models.NewValidationError(fmt.Sprintf("range too large (max %d rows)", MaxRangeSize))
	}
	limit := q.To - q.From + 1

	switch q.Name {
	case CollectionPosts:
		return s.posts.List(ctx, order, limit, q.From, viewerID)
	case CollectionUsers:
		return s.users.List(ctx, order, limit, q.From)
	default:
		return s.realms.List(ctx, order, limit, q.From, viewerID)
	}
}

// Insert adds a record to a collection. Only posts accept inserts.
func (s *CollectionService) Insert(ctx context.Context, name string, userID uint, record json.RawMessage) (interface{}, error) {
	if _, ok := orderColumns[name]; !ok {
		return nil, models.NewNotFoundError("Collection", name)
	}
	if name != CollectionPosts {
		return nil, models.NewForbiddenError(fmt.Sprintf("collection %q is read-only", name))
	}

	var in CreatePostInput
	dec := json.NewDecoder(bytes.NewReader(record))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, models.NewValidationError("invalid post record: " + err.Error())
	}
	in.UserID = userID
	return s.create(ctx, in)
}
