// Package seed fills a database with demo data: the embedded sample
// accounts, realms and posts, and synthetic users and posts built with
// gofakeit. It is meant for development and tests only.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"socialnova/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

var captionTags = []string{
	"#photography", "#travel", "#design", "#cityscape", "#nature",
	"#food", "#art", "#streetphotography", "#sunset", "#architecture",
}

// Factory builds and persists synthetic users and posts.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
	now   time.Time

	password string
	seq      int
}

// NewFactory creates a Factory. A zero opts.RandSeed picks a random seed.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	password := SamplePassword
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(SamplePassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		password = string(hashed)
	}
	return &Factory{
		db:       db,
		faker:    gofakeit.New(opts.RandSeed),
		opts:     opts,
		now:      time.Now().UTC(),
		password: password,
	}, nil
}

// BuildUser returns an unsaved user with a unique, valid username.
func (f *Factory) BuildUser() *models.User {
	f.seq++
	base := usernameUnsafe.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	if len(base) > 20 {
		base = base[:20]
	}
	if len(base) < 3 {
		base = "user"
	}
	username := fmt.Sprintf("%s_%d", base, f.seq)
	bio := f.faker.Sentence(8)
	return &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: f.password,
		FullName: f.faker.Name(),
		Bio:      &bio,
	}
}

// BuildPost returns an unsaved image post by userID dated within the last
// opts.MaxDays days.
func (f *Factory) BuildPost(userID uint, realmID *uint) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	age := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	caption := fmt.Sprintf("%s %s %s",
		strings.TrimSuffix(f.faker.Sentence(f.faker.Number(4, 10)), "."),
		captionTags[f.faker.Number(0, len(captionTags)-1)],
		captionTags[f.faker.Number(0, len(captionTags)-1)])

	return &models.Post{
		UserID:    userID,
		RealmID:   realmID,
		MediaURL:  fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", f.faker.UUID()),
		MediaType: models.MediaTypeImage,
		Caption:   &caption,
		CreatedAt: f.now.Add(-age),
	}
}

// CreateUsers persists n synthetic users.
func (f *Factory) CreateUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, f.BuildUser())
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := f.db.CreateInBatches(users, batchSize(f.opts)).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePosts persists n posts spread across authors.
func (f *Factory) CreatePosts(authors []*models.User, n int) ([]*models.Post, error) {
	if len(authors) == 0 || n <= 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := authors[f.faker.Number(0, len(authors)-1)]
		posts = append(posts, f.BuildPost(author.ID, nil))
	}
	if err := f.db.CreateInBatches(posts, batchSize(f.opts)).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateFollowMesh makes each user follow up to perUser random others.
func (f *Factory) CreateFollowMesh(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	seen := make(map[[2]uint]bool)
	var follows []models.Follow
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			other := users[f.faker.Number(0, len(users)-1)]
			key := [2]uint{u.ID, other.ID}
			if other.ID == u.ID || seen[key] {
				continue
			}
			seen[key] = true
			follows = append(follows, models.Follow{FollowerID: u.ID, FolloweeID: other.ID})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	err := f.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(follows, batchSize(f.opts)).Error
	return len(follows), err
}

// CreateLikes has random users like each post with probability ratio.
func (f *Factory) CreateLikes(users []*models.User, posts []*models.Post, ratio float64) (int, error) {
	var likes []models.Like
	for _, p := range posts {
		for _, u := range users {
			if f.faker.Float64Range(0, 1) < ratio {
				likes = append(likes, models.Like{UserID: u.ID, PostID: p.ID})
			}
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	err := f.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(likes, batchSize(f.opts)).Error
	return len(likes), err
}

func batchSize(opts Options) int {
	if opts.BatchSize > 0 {
		return opts.BatchSize
	}
	return 100
}
