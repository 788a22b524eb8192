package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

type sampleProfile struct {
	user    models.User
	listing models.Listing
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var sampleProfiles = []sampleProfile{
	{
		user: models.User{
			ID:          "user1",
			DisplayName: "Alex Chen",
			Bio:         "Full-stack developer passionate about AI and user experience",
			AvatarRef:   "https://via.placeholder.com/100x100/6366F1/FFFFFF?text=AC",
		},
		listing: models.Listing{
			ID:          "listing_1",
			OwnerID:     "user1",
			Title:       "AI-Powered Recipe App",
			Description: "Building a mobile app that uses AI to suggest recipes based on available ingredients. Looking for a UI/UX designer to help create an intuitive and beautiful interface.",
			Skills:      []string{"UI/UX Design", "Mobile Design", "Prototyping"},
			Vision:      "Make cooking accessible and fun for everyone",
			WorkStyle:   "Remote",
			Status:      models.ListingActive,
			ImageURL:    "https://via.placeholder.com/400x300/4F46E5/FFFFFF?text=Recipe+App",
			CreatedAt:   day(2024, time.January, 15),
		},
	},
	{
		user: models.User{
			ID:          "user2",
			DisplayName: "Sarah Johnson",
			Bio:         "Sustainable fashion advocate and e-commerce expert",
			AvatarRef:   "https://via.placeholder.com/100x100/EC4899/FFFFFF?text=SJ",
		},
		listing: models.Listing{
			ID:          "listing_2",
			OwnerID:     "user2",
			Title:       "Sustainable Fashion Platform",
			Description: "Creating an e-commerce platform for sustainable fashion brands. Need a full-stack developer to help build the marketplace and payment integration.",
			Skills:      []string{"Full-Stack Development", "E-commerce", "Payment Systems"},
			Vision:      "Revolutionize fashion industry sustainability",
			WorkStyle:   "Hybrid",
			Status:      models.ListingActive,
			ImageURL:    "https://via.placeholder.com/400x300/10B981/FFFFFF?text=Fashion+Platform",
			CreatedAt:   day(2024, time.January, 20),
		},
	},
	{
		user: models.User{
			ID:          "user3",
			DisplayName: "Mike Rodriguez",
			Bio:         "Community organizer and digital marketing specialist",
			AvatarRef:   "https://via.placeholder.com/100x100/10B981/FFFFFF?text=MR",
		},
		listing: models.Listing{
			ID:          "listing_3",
			OwnerID:     "user3",
			Title:       "Local Community Garden Network",
			Description: "Building a platform to connect local gardeners and share resources. Looking for someone with marketing expertise to help grow our community.",
			Skills:      []string{"Digital Marketing", "Community Building", "Social Media"},
			Vision:      "Strengthen local communities through gardening",
			WorkStyle:   "In-person",
			Status:      models.ListingActive,
			ImageURL:    "https://via.placeholder.com/400x300/059669/FFFFFF?text=Garden+Network",
			CreatedAt:   day(2024, time.January, 25),
		},
	},
}

// Seed loads the demo users and their listings. Records that already exist are left alone.
func Seed(ctx context.Context, store *repository.Store) error {
	created := 0
	for _, p := range sampleProfiles {
		user := p.user
		if err := store.Users.Create(ctx, &user); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed user %s: %w", p.user.ID, err)
		}

		listing := p.listing
		listing.Skills = append([]string(nil), p.listing.Skills...)
		if err := store.Listings.Create(ctx, &listing); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("failed to seed listing %s: %w", p.listing.ID, err)
		}
		if err := store.Users.AddListing(ctx, user.ID, listing.ID); err != nil {
			return fmt.Errorf("failed to link seeded listing %s: %w", listing.ID, err)
		}
		created++
	}

	log.Info().Int("users", created).Msg("Sample data loaded")
	return nil
}
