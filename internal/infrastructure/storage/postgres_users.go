package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
)

// PostgresUsers reads profiles and writes registration and interest rows.
type PostgresUsers struct {
	db *sql.DB
}

var _ ports.UserRepository = (*PostgresUsers)(nil)

// NewPostgresUsers wires a sql.DB implementation.
func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

// Profile loads a user with interests and registrations.
func (r *PostgresUsers) Profile(ctx context.Context, userID int64) (domain.UserProfile, error) {
	query, args, err := psql.Select("id", "university", "study_program", "study_year").
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("build profile query: %w", err)
	}

	var profile domain.UserProfile
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&profile.ID, &profile.University, &profile.StudyProgram, &profile.StudyYear)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("load user %d: %w", userID, err)
	}

	if profile.Interests, err = r.interests(ctx, userID); err != nil {
		return domain.UserProfile{}, err
	}
	if profile.Registrations, err = r.registrations(ctx, userID); err != nil {
		return domain.UserProfile{}, err
	}

	return profile, nil
}

func (r *PostgresUsers) interests(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := psql.Select("tag").
		From("user_interests").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build interests query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interests: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan interest: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interests iteration: %w", err)
	}

	return tags, nil
}

func (r *PostgresUsers) registrations(ctx context.Context, userID int64) ([]domain.Registration, error) {
	query, args, err := psql.Select("id", "user_id", "event_id", "registered_at").
		From("registrations").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("registered_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build registrations query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registrations iteration: %w", err)
	}

	return regs, nil
}

// AddRegistration creates one user/event association.
func (r *PostgresUsers) AddRegistration(ctx context.Context, userID, eventID int64, at time.Time) (domain.Registration, error) {
	query, args, err := psql.Insert("registrations").
		Columns("user_id", "event_id", "registered_at").
		Values(userID, eventID, at).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Registration{}, fmt.Errorf("build registration insert: %w", err)
	}

	reg := domain.Registration{UserID: userID, EventID: eventID, RegisteredAt: at}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&reg.ID); err != nil {
		return domain.Registration{}, translate("insert registration", err)
	}

	return reg, nil
}

// AddInterest attaches one tag to a user.
func (r *PostgresUsers) AddInterest(ctx context.Context, userID int64, tag string) (domain.Interest, error) {
	query, args, err := psql.Insert("user_interests").
		Columns("user_id", "tag").
		Values(userID, tag).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Interest{}, fmt.Errorf("build interest insert: %w", err)
	}

	interest := domain.Interest{UserID: userID, Tag: tag}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&interest.ID); err != nil {
		return domain.Interest{}, translate("insert interest", err)
	}

	return interest, nil
}
