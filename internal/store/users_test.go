package store

import (
	"context"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "testuser", "Test User", "test@example.com", "hash123", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}
	if user.ClaimsCount != 0 {
		t.Errorf("expected claims_count 0, got %d", user.ClaimsCount)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Test User" {
		t.Errorf("expected display name 'Test User', got %q", got.DisplayName)
	}

	missing, err := GetUser(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "", "", "hash", model.RoleAdmin)

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != "alice" {
		t.Errorf("expected 'alice', got %q", user.Username)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUsernameReusableAfterDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	old, _ := CreateUser(ctx, database, "carol", "", "", "hash", model.RoleUser)
	DeleteUser(ctx, database, old.ID)

	fresh, err := CreateUser(ctx, database, "carol", "", "", "hash2", model.RoleModerator)
	if err != nil {
		t.Fatalf("CreateUser after delete: %v", err)
	}

	got, _ := GetUserByUsername(ctx, database, "carol")
	if got.ID != fresh.ID {
		t.Errorf("expected active user %d, got %d", fresh.ID, got.ID)
	}
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "a", "", "", "hash", model.RoleUser)
	CreateUser(ctx, database, "b", "", "", "hash", model.RoleModerator)

	users, err := ListUsers(ctx, database, "")
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	moderators, err := ListUsers(ctx, database, model.RoleModerator)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(moderators) != 1 || moderators[0].Username != "b" {
		t.Errorf("expected only moderator b, got %+v", moderators)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "deleteme", "", "", "hash", model.RoleUser)
	DeleteUser(ctx, database, user.ID)

	users, _ := ListUsers(ctx, database, "")
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted user to still be fetchable by ID")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "", "", "oldhash", model.RoleUser)
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}

func TestIncrementClaimsCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "claimer", "", "", "hash", model.RoleUser)
	for range 3 {
		if err := IncrementClaimsCount(ctx, database, user.ID); err != nil {
			t.Fatalf("IncrementClaimsCount: %v", err)
		}
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.ClaimsCount != 3 {
		t.Errorf("expected claims_count 3, got %d", got.ClaimsCount)
	}
}

func TestUpdateUserProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, database, "ana")

	ok, err := UpdateUserProfile(ctx, database, user.ID, "Ana Novak", "ana@example.com")
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	if !ok {
		t.Fatal("expected profile update to apply")
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.DisplayName != "Ana Novak" || got.Email != "ana@example.com" {
		t.Errorf("unexpected profile: %q %q", got.DisplayName, got.Email)
	}
	if got.Role != model.RoleUser {
		t.Errorf("expected role to stay user, got %s", got.Role)
	}

	DeleteUser(ctx, database, user.ID)
	ok, err = UpdateUserProfile(ctx, database, user.ID, "Ghost", "ghost@example.com")
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}
	if ok {
		t.Error("expected update of deleted user to report false")
	}
}

func TestGetAccountStatistics(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	reporter := createTestUser(t, database, "reporter")
	claimant := createTestUser(t, database, "claimant")

	first := createTestItem(t, database, "Umbrella", reporter.ID)
	second := createTestItem(t, database, "Scarf", reporter.ID)
	createTestItem(t, database, "Hat", claimant.ID)

	approved, err := CreateClaim(ctx, database, first.ID, claimant.ID, model.ClaimFields{Description: "mine"})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if _, err := TransitionClaim(ctx, database, approved, model.ClaimStatusPending, ClaimUpdate{Status: model.ClaimStatusApproved}); err != nil {
		t.Fatalf("TransitionClaim: %v", err)
	}
	if _, err := CreateClaim(ctx, database, second.ID, claimant.ID, model.ClaimFields{Description: "mine too"}); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}

	got, err := GetAccountStatistics(ctx, database, claimant.ID)
	if err != nil {
		t.Fatalf("GetAccountStatistics: %v", err)
	}
	want := model.AccountStatistics{ItemsReported: 1, ItemsClaimed: 2, SuccessfulClaims: 1, PendingClaims: 1}
	if *got != want {
		t.Errorf("claimant statistics = %+v, want %+v", *got, want)
	}

	got, _ = GetAccountStatistics(ctx, database, reporter.ID)
	if got.ItemsReported != 2 || got.ItemsClaimed != 0 {
		t.Errorf("unexpected reporter statistics: %+v", *got)
	}
}
