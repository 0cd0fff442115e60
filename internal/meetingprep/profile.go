package meetingprep

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/relatahq/oracle/internal/database"
)

const (
	profileMaxInteractions = 10
	profileMaxActivities   = 5
	profileMaxTopics       = 3
	profileMaxMutual       = 3
)

// ProfileBuilder resolves attendee emails to relationship profiles.
type ProfileBuilder struct {
	store  database.Store
	logger *slog.Logger
}

// NewProfileBuilder creates a ProfileBuilder over the given store.
func NewProfileBuilder(store database.Store, logger *slog.Logger) *ProfileBuilder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProfileBuilder{
		store:  store,
		logger: logger.With("component", "profile_builder"),
	}
}

// BuildProfiles fetches profiles for all attendee emails concurrently. An
// attendee with no matching contact, or whose fetch fails, simply yields no
// profile; other attendees are unaffected. The returned slice preserves the
// input order of the attendees that resolved.
func (b *ProfileBuilder) BuildProfiles(ctx context.Context, userID int64, emails []string) []AttendeeProfile {
	results := make([]*AttendeeProfile, len(emails))

	var g errgroup.Group
	for i, email := range emails {
		g.Go(func() error {
			profile, err := b.BuildProfile(ctx, userID, email)
			if err != nil {
				// One attendee's failure must not block the others.
				b.logger.WarnContext(ctx, "Skipping attendee profile",
					"user_id", userID, "email", email, "error", err)
				return nil
			}
			results[i] = profile
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	profiles := make([]AttendeeProfile, 0, len(emails))
	for _, p := range results {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles
}

// BuildProfile resolves one attendee email to a relationship profile.
// Returns nil, nil when no contact matches the email. The interaction,
// activity, and mutual-connection sub-fetches run concurrently and each
// degrades independently on failure.
func (b *ProfileBuilder) BuildProfile(ctx context.Context, userID int64, email string) (*AttendeeProfile, error) {
	contact, err := b.store.GetContactByEmail(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		b.logger.DebugContext(ctx, "No contact for attendee email", "user_id", userID, "email", email)
		return nil, nil
	}

	profile := &AttendeeProfile{
		ContactID:            contact.ID,
		Name:                 contact.Name,
		Email:                contact.Email,
		Company:              contact.Company,
		Title:                contact.Title,
		RelationshipStrength: contact.RelationshipStrength,
		RecentTopics:         []string{},
		RecentActivity:       []string{},
		MutualConnections:    []string{},
	}
	if contact.LastContactDate.Valid {
		t := contact.LastContactDate.Time
		profile.LastInteraction = &t
	}

	var mu sync.Mutex
	var g errgroup.Group

	g.Go(func() error {
		interactions, err := b.store.GetInteractionsForContact(ctx, userID, contact.ID, profileMaxInteractions)
		if err != nil {
			b.logger.WarnContext(ctx, "Interactions unavailable for profile",
				"contact_id", contact.ID, "error", err)
			return nil
		}
		topics := make([]string, 0, profileMaxTopics)
		total := 0.0
		for _, in := range interactions {
			if len(topics) < profileMaxTopics && in.Subject != "" {
				topics = append(topics, in.Subject)
			}
			total += in.Sentiment
		}
		trend := 0.0
		if len(interactions) > 0 {
			trend = total / float64(len(interactions))
		}
		mu.Lock()
		profile.RecentTopics = topics
		profile.SentimentTrend = trend
		if profile.LastInteraction == nil && len(interactions) > 0 {
			t := interactions[0].Timestamp
			profile.LastInteraction = &t
		}
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		activities, err := b.store.GetActivitiesForContact(ctx, userID, contact.ID, profileMaxActivities)
		if err != nil {
			b.logger.WarnContext(ctx, "Activities unavailable for profile",
				"contact_id", contact.ID, "error", err)
			return nil
		}
		entries := make([]string, 0, len(activities))
		for _, a := range activities {
			entries = append(entries, a.Detail)
		}
		mu.Lock()
		profile.RecentActivity = entries
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		peers, err := b.store.GetContactsByCompany(ctx, userID, contact.Company, contact.ID, profileMaxMutual)
		if err != nil {
			b.logger.WarnContext(ctx, "Mutual connections unavailable for profile",
				"contact_id", contact.ID, "error", err)
			return nil
		}
		names := make([]string, 0, len(peers))
		for _, p := range peers {
			names = append(names, p.Name)
		}
		mu.Lock()
		profile.MutualConnections = names
		mu.Unlock()
		return nil
	})

	_ = g.Wait() // goroutines never return errors

	return profile, nil
}
