package domain

import "time"

// UserProfile is the read-only view of a viewer consumed by ranking.
type UserProfile struct {
	ID            int64
	University    string
	StudyProgram  string
	StudyYear     int
	Interests     []string
	Registrations []Registration
}

// RegisteredEventIDs lists the content identifiers the user registered for.
func (p UserProfile) RegisteredEventIDs() []int64 {
	ids := make([]int64, 0, len(p.Registrations))
	for _, reg := range p.Registrations {
		ids = append(ids, reg.EventID)
	}
	return ids
}

// Registration associates a user with a content item.
type Registration struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	EventID      int64     `json:"eventId"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Interest is a free-form tag attached to a user.
type Interest struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Tag    string `json:"tag"`
}
