package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
)

// MemoryStore keeps content and user rows in process memory. It mirrors the
// Postgres constraints: cascading deletes, unique registrations and interests.
type MemoryStore struct {
	mu            sync.Mutex
	items         map[int64]domain.ContentItem
	users         map[int64]domain.UserProfile
	interests     []domain.Interest
	registrations []domain.Registration
	nextItem      int64
	nextUser      int64
	nextRow       int64
}

var (
	_ ports.ContentRepository = (*MemoryStore)(nil)
	_ ports.UserRepository    = (*MemoryStore)(nil)
)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: map[int64]domain.ContentItem{},
		users: map[int64]domain.UserProfile{},
	}
}

// AddUser seeds a user row; a zero ID is assigned.
func (m *MemoryStore) AddUser(profile domain.UserProfile) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if profile.ID == 0 {
		m.nextUser++
		profile.ID = m.nextUser
	} else if profile.ID > m.nextUser {
		m.nextUser = profile.ID
	}
	profile.Interests = nil
	profile.Registrations = nil
	m.users[profile.ID] = profile
	return profile.ID
}

func (m *MemoryStore) Insert(_ context.Context, item domain.ContentItem) (int64, error) {
	if err := item.Type.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextItem++
	item.ID = m.nextItem
	item.Tags = uniqueTags(item.Tags)
	m.items[item.ID] = cloneItem(item)
	return item.ID, nil
}

func (m *MemoryStore) AddTags(_ context.Context, itemID int64, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("tag item %d: %w", itemID, domain.ErrNotFound)
	}
	item.Tags = uniqueTags(append(item.Tags, tags...))
	m.items[itemID] = item
	return nil
}

func (m *MemoryStore) UpdateSummary(_ context.Context, itemID int64, summary string) error {
	return m.update(itemID, func(item *domain.ContentItem) { item.Summary = summary })
}

func (m *MemoryStore) UpdateImage(_ context.Context, itemID int64, imageURL string) error {
	return m.update(itemID, func(item *domain.ContentItem) { item.ImageURL = imageURL })
}

func (m *MemoryStore) update(itemID int64, apply func(*domain.ContentItem)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("update item %d: %w", itemID, domain.ErrNotFound)
	}
	apply(&item)
	m.items[itemID] = item
	return nil
}

func (m *MemoryStore) List(_ context.Context, q ports.ListQuery) ([]domain.ContentItem, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("list items: negative offset or limit: %w", domain.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := m.sortedLocked(q.Type)
	if q.Offset >= len(sorted) {
		return nil, nil
	}
	sorted = sorted[q.Offset:]
	if q.Limit > 0 && q.Limit < len(sorted) {
		sorted = sorted[:q.Limit]
	}
	return sorted, nil
}

func (m *MemoryStore) GetByIDs(_ context.Context, ids []int64) ([]domain.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int64]bool, len(ids))
	var out []domain.ContentItem
	for _, id := range ids {
		item, ok := m.items[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, cloneItem(item))
	}
	return out, nil
}

func (m *MemoryStore) All(_ context.Context) ([]domain.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(""), nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *MemoryStore) CountByType(_ context.Context, t domain.ContentType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, item := range m.items {
		if item.Type == t {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteMalformed(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, item := range m.items {
		title := strings.TrimSpace(item.Title)
		if title == "" || strings.EqualFold(title, "N/A") {
			m.deleteItemLocked(id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) WipeAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = map[int64]domain.ContentItem{}
	m.registrations = nil
	m.nextItem = 0
	return nil
}

func (m *MemoryStore) Profile(_ context.Context, userID int64) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.users[userID]
	if !ok {
		return domain.UserProfile{}, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	for _, in := range m.interests {
		if in.UserID == userID {
			profile.Interests = append(profile.Interests, in.Tag)
		}
	}
	for i := len(m.registrations) - 1; i >= 0; i-- {
		if m.registrations[i].UserID == userID {
			profile.Registrations = append(profile.Registrations, m.registrations[i])
		}
	}
	return profile, nil
}

func (m *MemoryStore) AddRegistration(_ context.Context, userID, eventID int64, at time.Time) (domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return domain.Registration{}, fmt.Errorf("insert registration: user %d: %w", userID, domain.ErrNotFound)
	}
	if _, ok := m.items[eventID]; !ok {
		return domain.Registration{}, fmt.Errorf("insert registration: item %d: %w", eventID, domain.ErrNotFound)
	}
	for _, reg := range m.registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return domain.Registration{}, fmt.Errorf("insert registration: %w", domain.ErrConflict)
		}
	}

	m.nextRow++
	reg := domain.Registration{ID: m.nextRow, UserID: userID, EventID: eventID, RegisteredAt: at}
	m.registrations = append(m.registrations, reg)
	return reg, nil
}

func (m *MemoryStore) AddInterest(_ context.Context, userID int64, tag string) (domain.Interest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return domain.Interest{}, fmt.Errorf("insert interest: user %d: %w", userID, domain.ErrNotFound)
	}
	for _, in := range m.interests {
		if in.UserID == userID && in.Tag == tag {
			return domain.Interest{}, fmt.Errorf("insert interest: %w", domain.ErrConflict)
		}
	}

	m.nextRow++
	in := domain.Interest{ID: m.nextRow, UserID: userID, Tag: tag}
	m.interests = append(m.interests, in)
	return in, nil
}

func (m *MemoryStore) deleteItemLocked(id int64) {
	delete(m.items, id)
	kept := m.registrations[:0]
	for _, reg := range m.registrations {
		if reg.EventID != id {
			kept = append(kept, reg)
		}
	}
	m.registrations = kept
}

func (m *MemoryStore) sortedLocked(t domain.ContentType) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, len(m.items))
	for _, item := range m.items {
		if t != "" && item.Type != t {
			continue
		}
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func cloneItem(item domain.ContentItem) domain.ContentItem {
	if item.Tags != nil {
		item.Tags = append([]string(nil), item.Tags...)
	} else {
		item.Tags = []string{}
	}
	if item.EventAt != nil {
		at := *item.EventAt
		item.EventAt = &at
	}
	return item
}
