package seed

import (
	"fmt"
	"log"

	"socialnova/internal/database"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers int
	NumPosts int
	// Clean deletes every row before seeding.
	Clean bool
	// Samples loads the embedded sample accounts, realms and posts.
	Samples bool

	SkipBcrypt bool
	MaxDays    int
	BatchSize  int
	// RandSeed makes synthetic data reproducible; 0 means random.
	RandSeed int64
}

// Result counts what a run created.
type Result struct {
	Users   int
	Posts   int
	Follows int
	Likes   int
}

// Seed populates the database according to opts.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("Seeding database: users=%d posts=%d samples=%t clean=%t",
		opts.NumUsers, opts.NumPosts, opts.Samples, opts.Clean)

	if opts.Clean {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
	}
	if opts.Samples {
		if err := Samples(db, opts.SkipBcrypt); err != nil {
			return nil, fmt.Errorf("samples: %w", err)
		}
		log.Println("Sample data loaded")
	}

	res := &Result{}
	if opts.NumUsers <= 0 {
		return res, nil
	}

	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	res.Users = len(users)

	if res.Follows, err = f.CreateFollowMesh(users, 3); err != nil {
		return nil, fmt.Errorf("create follows: %w", err)
	}

	posts, err := f.CreatePosts(users, opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = len(posts)

	if res.Likes, err = f.CreateLikes(users, posts, 0.2); err != nil {
		return nil, fmt.Errorf("create likes: %w", err)
	}

	log.Printf("Seeded %d users, %d posts, %d follows, %d likes", res.Users, res.Posts, res.Follows, res.Likes)
	return res, nil
}

// Clean deletes all rows, children first. It works on every supported driver.
func Clean(db *gorm.DB) error {
	tables := database.PersistentModels()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(tables[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
