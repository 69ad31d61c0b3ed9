package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
)

// AccountsConfig bounds user-supplied interest data.
type AccountsConfig struct {
	MaxInterestLength   int
	MaxSuggestions      int
	FallbackSuggestions []string
}

// AccountsDeps wires repositories and the optional inference gateway.
type AccountsDeps struct {
	Users     ports.UserRepository
	Content   ports.ContentRepository
	Completer ports.Completer
	Config    AccountsConfig
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Accounts handles registration and interest writes and interest suggestions.
type Accounts struct {
	users     ports.UserRepository
	content   ports.ContentRepository
	completer ports.Completer
	cfg       AccountsConfig
	logger    *slog.Logger
	clock     func() time.Time
}

// NewAccounts constructs the accounts use case.
func NewAccounts(deps AccountsDeps) *Accounts {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	cfg := deps.Config
	if cfg.MaxInterestLength <= 0 {
		cfg.MaxInterestLength = 30
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 15
	}
	return &Accounts{
		users:     deps.Users,
		content:   deps.Content,
		completer: deps.Completer,
		cfg:       cfg,
		logger:    orDiscard(deps.Logger),
		clock:     clock,
	}
}

// Register records that a user signed up for a content item.
func (a *Accounts) Register(ctx context.Context, userID, eventID int64) (domain.Registration, error) {
	if userID <= 0 || eventID <= 0 {
		return domain.Registration{}, fmt.Errorf("%w: userId and eventId are required", domain.ErrValidation)
	}

	reg, err := a.users.AddRegistration(ctx, userID, eventID, a.clock().UTC())
	if err != nil {
		return domain.Registration{}, fmt.Errorf("register user %d for %d: %w", userID, eventID, err)
	}

	a.logger.Info("registration created", "user_id", userID, "event_id", eventID)
	return reg, nil
}

// AddInterest attaches a free-form tag to a user.
func (a *Accounts) AddInterest(ctx context.Context, userID int64, tag string) (domain.Interest, error) {
	tag = strings.TrimSpace(tag)
	if userID <= 0 || tag == "" {
		return domain.Interest{}, fmt.Errorf("%w: userId and tag are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(tag) > a.cfg.MaxInterestLength {
		return domain.Interest{}, fmt.Errorf("%w: tag longer than %d characters", domain.ErrValidation, a.cfg.MaxInterestLength)
	}

	interest, err := a.users.AddInterest(ctx, userID, tag)
	if err != nil {
		return domain.Interest{}, fmt.Errorf("add interest for user %d: %w", userID, err)
	}
	return interest, nil
}

// Registrations lists the items a user registered for, most recent first.
func (a *Accounts) Registrations(ctx context.Context, userID int64) ([]domain.ContentItem, error) {
	profile, err := a.users.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	items, err := a.content.GetByIDs(ctx, profile.RegisteredEventIDs())
	if err != nil {
		return nil, fmt.Errorf("load registered items: %w", err)
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	return items, nil
}

// SuggestInterests proposes new interest tags for a user. Gateway problems
// yield the configured fallback list.
func (a *Accounts) SuggestInterests(ctx context.Context, userID int64) ([]string, error) {
	profile, err := a.users.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	existing := make(map[string]bool, len(profile.Interests))
	for _, tag := range profile.Interests {
		existing[strings.ToLower(tag)] = true
	}

	candidates := a.askSuggestions(ctx, profile)
	if candidates == nil {
		candidates = a.cfg.FallbackSuggestions
	}

	out := make([]string, 0, a.cfg.MaxSuggestions)
	for _, tag := range candidates {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || existing[key] || utf8.RuneCountInString(tag) > a.cfg.MaxInterestLength {
			continue
		}
		existing[key] = true
		out = append(out, tag)
		if len(out) == a.cfg.MaxSuggestions {
			break
		}
	}
	return out, nil
}

func (a *Accounts) askSuggestions(ctx context.Context, profile domain.UserProfile) []string {
	if a.completer == nil {
		return nil
	}

	prompt := fmt.Sprintf(
		"Suggest up to %d short interest tags (at most %d characters each) for this university student. "+
			"Do not repeat the interests they already have.\nStudent: %s\n"+
			"Reply only with a JSON array of strings.",
		a.cfg.MaxSuggestions,
		a.cfg.MaxInterestLength,
		mustJSON(map[string]any{
			"university": profile.University,
			"program":    profile.StudyProgram,
			"year":       profile.StudyYear,
			"interests":  profile.Interests,
		}),
	)

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("suggestions failed", "user_id", profile.ID, "error", err)
		return nil
	}
	tags, err := decodeStrings(raw)
	if err != nil || len(tags) == 0 {
		a.logger.Warn("suggestions unparsable", "user_id", profile.ID, "error", err)
		return nil
	}
	return tags
}
