package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"socialnova/internal/cache"
	"socialnova/internal/models"
	"socialnova/internal/repository"
)

const (
	maxQueryLen  = 100
	topicsToShow = 6
)

// defaultTopics pad the trending list when there are few realms.
var defaultTopics = []string{"Photography", "Digital Art", "Travel", "Fashion", "Food", "Technology"}

// Topic is a trending topic and its hashtag form.
type Topic struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

type SearchService struct {
	users  repository.UserRepository
	realms repository.RealmRepository
}

func NewSearchService(users repository.UserRepository, realms repository.RealmRepository) *SearchService {
	return &SearchService{users: users, realms: realms}
}

// Users matches usernames and names case-insensitively. An empty query
// returns every user up to the result cap.
func (s *SearchService) Users(ctx context.Context, q string) ([]models.User, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}
	return s.users.Search(ctx, q, repository.MaxSearchResults)
}

// Realms matches realm names, slugs and descriptions case-insensitively.
func (s *SearchService) Realms(ctx context.Context, q string) ([]*models.Realm, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}
	return s.realms.Search(ctx, q, repository.MaxSearchResults)
}

// Topics lists the most joined realms followed by default topics.
func (s *SearchService) Topics(ctx context.Context) ([]Topic, error) {
	topics := []Topic{}
	err := cache.Aside(ctx, cache.TopicsKey, &topics, cache.TopicsTTL, func() error {
		popular, err := s.realms.Popular(ctx, topicsToShow)
		if err != nil {
			return err
		}
		names := make([]string, 0, topicsToShow)
		for _, r := range popular {
			names = append(names, r.Name)
		}
		topics = buildTopics(append(names, defaultTopics...), topicsToShow)
		return nil
	})
	return topics, err
}

func buildTopics(names []string, limit int) []Topic {
	seen := map[string]bool{}
	out := make([]Topic, 0, limit)
	for _, name := range names {
		tag := "#" + strings.ToLower(strings.ReplaceAll(name, " ", ""))
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, Topic{Name: name, Tag: tag})
		if len(out) == limit {
			break
		}
	}
	return out
}

func normalizeQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) > maxQueryLen {
		return "", models.NewValidationError("Search query too long (max 100 characters)")
	}
	return q, nil
}
