package models

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/joestump/govuk-admin/internal/store"
)

var (
	firstNames = []string{
		"Ada", "Alan", "Amara", "Bilal", "Chloe", "Dev", "Eilidh", "Femi",
		"Grace", "Hamish", "Imogen", "Jas", "Kemi", "Leon", "Mei", "Niamh",
		"Owen", "Priya", "Rhys", "Sian", "Tariq", "Una", "Wen", "Zara",
	}
	lastNames = []string{
		"Adeyemi", "Brown", "Campbell", "Davies", "Evans", "Fraser", "Gill",
		"Hughes", "Iqbal", "Jones", "Khan", "Lewis", "MacLeod", "Nowak",
		"Okafor", "Patel", "Quinn", "Roberts", "Singh", "Taylor", "Walker",
	}
	jobs = []string{
		"Caseworker", "Content designer", "Delivery manager", "Developer",
		"Interaction designer", "Policy advisor", "Product manager",
		"Service owner", "Technical architect", "User researcher",
	}
	words = []string{
		"access", "account", "address", "apply", "benefit", "check", "claim",
		"council", "data", "digital", "form", "guidance", "help", "licence",
		"local", "notice", "online", "passport", "payment", "permit", "public",
		"record", "register", "renew", "report", "request", "service",
		"support", "tax", "update", "vehicle", "visa",
	}
)

// Seeder fills an empty database with sample users, accounts and posts.
// The same seed always produces the same rows relative to Now.
type Seeder struct {
	Records *store.RecordStore
	Rand    *rand.Rand
	Now     time.Time
}

// NewSeeder returns a Seeder using a fixed random seed.
func NewSeeder(records *store.RecordStore, seed int64) *Seeder {
	return &Seeder{
		Records: records,
		Rand:    rand.New(rand.NewSource(seed)),
		Now:     time.Now().UTC(),
	}
}

// SeedIfEmpty runs Seed when the users table has no rows. It reports whether
// anything was inserted.
func (s *Seeder) SeedIfEmpty(ctx context.Context, users int) (bool, error) {
	n, err := s.Records.Count(ctx, User)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, s.Seed(ctx, users)
}

// Seed inserts users, each with one account and two to five posts. About
// 70% of users have a last login and about 70% of posts are published.
func (s *Seeder) Seed(ctx context.Context, users int) error {
	for i := 0; i < users; i++ {
		userID, err := s.Records.Create(ctx, User, s.user(i))
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
		if _, err := s.Records.Create(ctx, Account, store.Record{"user_id": userID}); err != nil {
			return fmt.Errorf("seed account for user %s: %w", userID, err)
		}
		for p, n := 0, 2+s.Rand.Intn(4); p < n; p++ {
			if _, err := s.Records.Create(ctx, Post, s.post(userID)); err != nil {
				return fmt.Errorf("seed post for user %s: %w", userID, err)
			}
		}
	}
	return nil
}

func (s *Seeder) user(i int) store.Record {
	first := pick(s.Rand, firstNames)
	last := pick(s.Rand, lastNames)

	var lastLogin any
	if s.Rand.Float64() > 0.3 {
		lastLogin = s.daysAgo(365).Format(store.DateTimeLayout)
	}
	return store.Record{
		// The index keeps emails unique however the names repeat.
		"email":             fmt.Sprintf("%s.%s.%d@example.gov.uk", strings.ToLower(first), strings.ToLower(last), i+1),
		"name":              first + " " + last,
		"age":               18 + s.Rand.Intn(83),
		"job":               pick(s.Rand, jobs),
		"favourite_colour":  Colours[s.Rand.Intn(len(Colours))].Value,
		"created_at":        s.Now.Format(store.DateLayout),
		"last_logged_in_at": lastLogin,
	}
}

func (s *Seeder) post(authorID string) store.Record {
	var published any
	if s.Rand.Float64() > 0.3 {
		published = s.daysAgo(180).Format(store.DateTimeLayout)
	}
	return store.Record{
		"title":        s.sentence(6),
		"content":      s.paragraph(5),
		"author_id":    authorID,
		"published_at": published,
		"created_at":   s.daysAgo(365).Format(store.DateTimeLayout),
	}
}

func (s *Seeder) daysAgo(within int) time.Time {
	return s.Now.AddDate(0, 0, -s.Rand.Intn(within+1)).Truncate(time.Second)
}

func (s *Seeder) sentence(n int) string {
	ws := make([]string, n)
	for i := range ws {
		ws[i] = pick(s.Rand, words)
	}
	ws[0] = strings.ToUpper(ws[0][:1]) + ws[0][1:]
	return strings.Join(ws, " ")
}

func (s *Seeder) paragraph(sentences int) string {
	out := make([]string, sentences)
	for i := range out {
		out[i] = s.sentence(6+s.Rand.Intn(6)) + "."
	}
	return strings.Join(out, " ")
}

func pick(r *rand.Rand, from []string) string {
	return from[r.Intn(len(from))]
}
