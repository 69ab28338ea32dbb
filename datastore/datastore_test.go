package datastore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coreybb/todo-api/models"
)

// openTestDB opens a throwaway sqlite database through the real Open path
// and applies the startup schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open("file:" + path)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "digest",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func createTestTodo(t *testing.T, repo *TodoRepository, userID, title string, completed bool, createdAt time.Time) *models.Todo {
	t.Helper()

	todo := &models.Todo{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Completed: completed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.CreateTodo(context.Background(), todo); err != nil {
		t.Fatalf("create todo %s: %v", title, err)
	}
	return todo
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("second EnsureSchema run: %v", err)
	}
}

func TestDriverForURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
	}{
		{"postgres://user:pw@localhost/todos", "postgres"},
		{"postgresql://user:pw@localhost/todos", "postgres"},
		{"user=postgres dbname=todos host=localhost", "postgres"},
		{"file:todos.db", "sqlite"},
		{"todos.db", "sqlite"},
	}
	for _, tt := range tests {
		driver, _ := driverForURL(tt.url)
		if driver != tt.wantDriver {
			t.Fatalf("driverForURL(%q) = %q, want %q", tt.url, driver, tt.wantDriver)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC).Add(123 * time.Millisecond)
	restored := fromMillis(toMillis(original))
	if !restored.Equal(original) {
		t.Fatalf("expected %v, got %v", original, restored)
	}
}
