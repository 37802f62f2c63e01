//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/celebrity-detector/internal/config"
	"github.com/kozaktomas/celebrity-detector/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if _, err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestMigrate_Idempotent(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	applied, err := pool.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no pending migrations, got %v", applied)
	}

	versions, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("MigrationsApplied failed: %v", err)
	}
	if len(versions) == 0 || versions[0] != "001_history.sql" {
		t.Errorf("unexpected applied migrations %v", versions)
	}
}

func TestHistoryRepository_Identifications(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewHistoryRepository(pool)

	base := time.Now().UTC().Add(-time.Hour)
	records := []database.IdentificationRecord{
		{Name: "Tom Hanks", NameKey: "tom hanks", Info: "-**Full Name**: Tom Hanks", FaceWidth: 40, FaceHeight: 40, ImageSHA1: "a", Provider: "m", CreatedAt: base},
		{Name: "Zendaya", NameKey: "zendaya", Info: "-**Full Name**: Zendaya", ImageSHA1: "b", Provider: "m", CreatedAt: base.Add(time.Minute)},
		{Name: "Tom Hanks", NameKey: "tom hanks", Info: "cached", ImageSHA1: "a", Provider: "m", Cached: true, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range records {
		if err := repo.SaveIdentification(ctx, &records[i]); err != nil {
			t.Fatalf("SaveIdentification failed: %v", err)
		}
	}

	count, err := repo.CountIdentifications(ctx)
	if err != nil {
		t.Fatalf("CountIdentifications failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 identifications, got %d", count)
	}

	all, err := repo.ListIdentifications(ctx, database.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListIdentifications failed: %v", err)
	}
	if len(all) != 3 || !all[0].Cached {
		t.Fatalf("expected newest first, got %+v", all)
	}

	hanks, err := repo.ListIdentifications(ctx, database.HistoryFilter{NameKey: "tom hanks", Limit: 1})
	if err != nil {
		t.Fatalf("ListIdentifications failed: %v", err)
	}
	if len(hanks) != 1 || hanks[0].ID != records[2].ID {
		t.Errorf("unexpected filtered result %+v", hanks)
	}
}

func TestHistoryRepository_Questions(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewHistoryRepository(pool)

	rec := &database.QuestionRecord{
		Name: "Tom Hanks", NameKey: "tom hanks", Question: "Age?", Answer: "68", Answered: true, Provider: "m",
	}
	if err := repo.SaveQuestion(ctx, rec); err != nil {
		t.Fatalf("SaveQuestion failed: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := repo.ListQuestions(ctx, database.HistoryFilter{NameKey: "tom hanks"})
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(got) != 1 || got[0].Answer != "68" || !got[0].Answered || got[0].ID != rec.ID {
		t.Errorf("unexpected questions %+v", got)
	}

	none, err := repo.ListQuestions(ctx, database.HistoryFilter{NameKey: "zendaya"})
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no questions, got %+v", none)
	}
}
