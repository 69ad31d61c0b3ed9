package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/logging"
	"CampusFeed/internal/ports"
)

func TestPostgresRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		tcPostgres.WithDatabase("campusfeed"),
		tcPostgres.WithUsername("campusfeed"),
		tcPostgres.WithPassword("campusfeed"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp")),
	)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := pgC.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://campusfeed:campusfeed@%s:%s/campusfeed?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	waitForPing(t, db)

	if err := Migrate(dsn, logging.Discard()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := Migrate(dsn, logging.Discard()); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	content := NewPostgresRepository(db)
	users := NewPostgresUsers(db)

	eventAt := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	id, err := content.Insert(ctx, domain.ContentItem{
		Title:       "Concierto de primavera",
		Summary:     "Concierto de primavera",
		Source:      "UC",
		PublishedAt: time.Now().UTC(),
		EventAt:     &eventAt,
		Type:        domain.TypeActivity,
		Tags:        []string{"Arts & Culture"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := content.AddTags(ctx, id, []string{"Arts & Culture", "Social"}); err != nil {
		t.Fatalf("add tags: %v", err)
	}

	page, err := content.List(ctx, ports.ListQuery{Limit: 10, Type: domain.TypeActivity})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || len(page[0].Tags) != 2 || page[0].EventAt == nil {
		t.Fatalf("unexpected page: %+v", page)
	}

	var userID int64
	if err := db.QueryRowContext(ctx, `INSERT INTO users (name, university) VALUES ('Ana', 'UC') RETURNING id`).Scan(&userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := users.AddRegistration(ctx, userID, id, time.Now()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := users.AddRegistration(ctx, userID, id, time.Now()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := users.AddRegistration(ctx, userID, id+100, time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := content.WipeAll(ctx); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	profile, err := users.Profile(ctx, userID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(profile.Registrations) != 0 {
		t.Fatalf("registrations should be wiped with their items")
	}
}

func waitForPing(t *testing.T, db *sql.DB) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for {
		err := db.Ping()
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres not ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
