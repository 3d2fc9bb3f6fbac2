package seed

import (
	_ "embed"
	"fmt"
	"time"

	"socialnova/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SamplePassword is the password of every sample account.
const SamplePassword = "password123"

//go:embed samples.yaml
var samplesYAML []byte

type SampleUser struct {
	Username string `yaml:"username"`
	FullName string `yaml:"full_name"`
	Bio      string `yaml:"bio"`
}

type SampleRealm struct {
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Creator     string   `yaml:"creator"`
	Members     []string `yaml:"members"`
}

type SamplePost struct {
	Author    string           `yaml:"author"`
	Realm     string           `yaml:"realm"`
	MediaURL  string           `yaml:"media_url"`
	MediaType models.MediaType `yaml:"media_type"`
	Caption   string           `yaml:"caption"`
	CreatedAt time.Time        `yaml:"created_at"`
}

// SampleData is the demo content shipped with the binary.
type SampleData struct {
	Users   []SampleUser  `yaml:"users"`
	Realms  []SampleRealm `yaml:"realms"`
	Follows [][]string    `yaml:"follows"`
	Posts   []SamplePost  `yaml:"posts"`
}

// LoadSamples parses the embedded sample data and checks that every
// reference names a declared user or realm.
func LoadSamples() (*SampleData, error) {
	var data SampleData
	if err := yaml.Unmarshal(samplesYAML, &data); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}

	users := make(map[string]bool, len(data.Users))
	for _, u := range data.Users {
		users[u.Username] = true
	}
	realms := make(map[string]bool, len(data.Realms))
	for _, r := range data.Realms {
		realms[r.Slug] = true
		for _, name := range append([]string{r.Creator}, r.Members...) {
			if !users[name] {
				return nil, fmt.Errorf("realm %s references unknown user %q", r.Slug, name)
			}
		}
	}
	for _, f := range data.Follows {
		if len(f) != 2 || !users[f[0]] || !users[f[1]] {
			return nil, fmt.Errorf("follow %v references an unknown user", f)
		}
	}
	for _, p := range data.Posts {
		if !users[p.Author] {
			return nil, fmt.Errorf("post %s references unknown user %q", p.MediaURL, p.Author)
		}
		if p.Realm != "" && !realms[p.Realm] {
			return nil, fmt.Errorf("post %s references unknown realm %q", p.MediaURL, p.Realm)
		}
		if !p.MediaType.Valid() {
			return nil, fmt.Errorf("post %s has invalid media type %q", p.MediaURL, p.MediaType)
		}
	}
	return &data, nil
}

// Samples inserts the sample data. Running it again leaves existing rows
// untouched.
func Samples(db *gorm.DB, skipBcrypt bool) error {
	data, err := LoadSamples()
	if err != nil {
		return err
	}

	password := SamplePassword
	if !skipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(SamplePassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash sample password: %w", err)
		}
		password = string(hashed)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		userIDs := make(map[string]uint, len(data.Users))
		for _, su := range data.Users {
			bio := su.Bio
			user := models.User{
				Username: su.Username,
				Email:    su.Username + "@socialnova.local",
				Password: password,
				FullName: su.FullName,
				Bio:      &bio,
			}
			if err := tx.Where(models.User{Username: su.Username}).FirstOrCreate(&user).Error; err != nil {
				return fmt.Errorf("sample user %s: %w", su.Username, err)
			}
			userIDs[su.Username] = user.ID
		}

		realmIDs := make(map[string]uint, len(data.Realms))
		for _, sr := range data.Realms {
			realm := models.Realm{
				Name:        sr.Name,
				Slug:        sr.Slug,
				Description: sr.Description,
				CreatorID:   userIDs[sr.Creator],
			}
			if err := tx.Where(models.Realm{Slug: sr.Slug}).FirstOrCreate(&realm).Error; err != nil {
				return fmt.Errorf("sample realm %s: %w", sr.Slug, err)
			}
			realmIDs[sr.Slug] = realm.ID

			memberships := []models.RealmMembership{{RealmID: realm.ID, UserID: realm.CreatorID, Role: models.RealmRoleOwner}}
			for _, name := range sr.Members {
				memberships = append(memberships, models.RealmMembership{RealmID: realm.ID, UserID: userIDs[name], Role: models.RealmRoleMember})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberships).Error; err != nil {
				return fmt.Errorf("sample realm members %s: %w", sr.Slug, err)
			}
		}

		if len(data.Follows) > 0 {
			follows := make([]models.Follow, 0, len(data.Follows))
			for _, f := range data.Follows {
				follows = append(follows, models.Follow{FollowerID: userIDs[f[0]], FolloweeID: userIDs[f[1]]})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&follows).Error; err != nil {
				return fmt.Errorf("sample follows: %w", err)
			}
		}

		for _, sp := range data.Posts {
			caption := sp.Caption
			post := models.Post{
				UserID:    userIDs[sp.Author],
				MediaURL:  sp.MediaURL,
				MediaType: sp.MediaType,
				Caption:   &caption,
				CreatedAt: sp.CreatedAt,
			}
			if sp.Realm != "" {
				id := realmIDs[sp.Realm]
				post.RealmID = &id
			}
			if err := tx.Where(models.Post{UserID: post.UserID, MediaURL: post.MediaURL}).FirstOrCreate(&post).Error; err != nil {
				return fmt.Errorf("sample post %s: %w", sp.MediaURL, err)
			}
		}
		return nil
	})
}
