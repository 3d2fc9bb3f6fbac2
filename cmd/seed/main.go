// Command main runs the database seeder for SocialNova.
package main

import (
	"errors"
	"log"
	"os"

	"socialnova/internal/config"
	"socialnova/internal/database"
	"socialnova/internal/middleware"
	"socialnova/internal/seed"

	"github.com/jessevdk/go-flags"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Users      int   `long:"users" env:"SEED_USERS" default:"50" description:"number of synthetic users to create"`
	Posts      int   `long:"posts" env:"SEED_POSTS" default:"200" description:"number of synthetic posts to create"`
	Clean      bool  `long:"clean" description:"delete every row before seeding"`
	Samples    bool  `long:"samples" description:"load the built-in sample accounts, realms and posts"`
	SkipBcrypt bool  `long:"skip-bcrypt" description:"store unhashed passwords for faster bulk seeding (accounts cannot sign in)"`
	MaxDays    int   `long:"max-days" default:"30" description:"spread synthetic posts over this many days"`
	BatchSize  int   `long:"batch-size" default:"100" description:"insert batch size"`
	RandSeed   int64 `long:"rand-seed" env:"SEED_RAND" description:"seed for reproducible data, 0 means random"`
}{}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "SocialNova Seeder"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetupLogger(cfg.Env, os.Stdout)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	res, err := seed.Seed(db, seed.Options{
		NumUsers:   opts.Users,
		NumPosts:   opts.Posts,
		Clean:      opts.Clean,
		Samples:    opts.Samples,
		SkipBcrypt: opts.SkipBcrypt,
		MaxDays:    opts.MaxDays,
		BatchSize:  opts.BatchSize,
		RandSeed:   opts.RandSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded users=%d posts=%d follows=%d likes=%d",
		res.Users, res.Posts, res.Follows, res.Likes)
	log.Printf("All seeded users have the password: %s", seed.SamplePassword)
}
