package datastore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestCreateGetUserRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	created := createTestUser(t, repo, "a@x.com")

	got, err := repo.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get user by ID: %v", err)
	}
	if got.Email != "a@x.com" || got.FullName != "Test User" || !got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash != "digest" {
		t.Fatalf("expected stored password hash, got %q", got.PasswordHash)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", created.CreatedAt, got.CreatedAt)
	}

	byEmail, err := repo.GetUserByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	if _, err := repo.GetUserByID(context.Background(), "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if _, err := repo.GetUserByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateUserDuplicateEmailFails(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	first := createTestUser(t, repo, "a@x.com")

	dup := *first
	dup.ID = "another-id"
	if err := repo.CreateUser(context.Background(), &dup); err == nil {
		t.Fatal("expected unique index to reject duplicate email")
	}
}

func TestUpdateProfile(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	user := createTestUser(t, repo, "a@x.com")
	updatedAt := user.UpdatedAt.Add(time.Hour)

	if err := repo.UpdateProfile(context.Background(), user.ID, "New Name", "new@x.com", updatedAt); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := repo.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.FullName != "New Name" || got.Email != "new@x.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if !got.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("expected updated_at %v, got %v", updatedAt, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(user.CreatedAt) {
		t.Fatal("created_at must not change on profile update")
	}
}

func TestUpdateProfileMissingUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	err := repo.UpdateProfile(context.Background(), "missing", "Name", "x@x.com", time.Now().UTC())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	user := createTestUser(t, repo, "a@x.com")

	if err := repo.UpdatePassword(context.Background(), user.ID, "new-digest", time.Now().UTC()); err != nil {
		t.Fatalf("update password: %v", err)
	}

	got, err := repo.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PasswordHash != "new-digest" {
		t.Fatalf("expected new digest, got %q", got.PasswordHash)
	}
}
