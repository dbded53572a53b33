// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"clipstream/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers int
	// MaxSubscriptionsPerUser caps how many channels each seeded user
	// subscribes to.
	MaxSubscriptionsPerUser int
	ShouldClean             bool
	// SkipBcrypt stores the plaintext password instead of a hash. Much
	// faster for large seeds; dev only.
	SkipBcrypt bool
}

// Seeder builds domain entities and persists them to the database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxSubscriptionsPerUser <= 0 {
		opts.MaxSubscriptionsPerUser = 10
	}
	// #nosec G404: acceptable for seeding
	return &Seeder{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes all seeded data. Subscriptions go first so user deletes
// never trip foreign keys.
func (s *Seeder) ClearAll() error {
	if err := s.db.Exec("DELETE FROM subscriptions").Error; err != nil {
		return fmt.Errorf("failed to clear subscriptions: %w", err)
	}
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	log.Println("✓ Database cleared")
	return nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		FullName: gofakeit.Name(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if s.rng.Intn(2) == 0 {
		user.CoverImage = fmt.Sprintf("https://picsum.photos/seed/%s/1200/300", gofakeit.UUID())
	}

	if s.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SeedCommunity creates users and a random subscription mesh between them.
func (s *Seeder) SeedCommunity() ([]models.User, error) {
	log.Printf("🌱 Seeding %d users...", s.opts.NumUsers)

	users := make([]models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, *user)
	}
	log.Printf("✓ %d users created", len(users))

	subs, err := s.seedSubscriptions(users)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d subscriptions created", subs)

	return users, nil
}

// seedSubscriptions gives each user a random set of channels to follow.
func (s *Seeder) seedSubscriptions(users []models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	total := 0
	for _, user := range users {
		wanted := s.rng.Intn(s.opts.MaxSubscriptionsPerUser + 1)
		seen := map[uint]bool{user.ID: true}
		for created := 0; created < wanted; {
			channel := users[s.rng.Intn(len(users))]
			if seen[channel.ID] {
				// Bail once the pool is exhausted.
				if len(seen) >= len(users) {
					break
				}
				continue
			}
			seen[channel.ID] = true

			sub := models.Subscription{SubscriberID: user.ID, ChannelID: channel.ID}
			if err := s.db.Create(&sub).Error; err != nil {
				return total, fmt.Errorf("failed to create subscription: %w", err)
			}
			created++
			total++
		}
	}
	return total, nil
}
