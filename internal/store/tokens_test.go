package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/db"
)

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	loggedOut, active := uuid.NewString(), uuid.NewString()

	if err := RevokeToken(ctx, database, loggedOut, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Logging out twice with the same token is not an error.
	if err := RevokeToken(ctx, database, loggedOut, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("repeated RevokeToken: %v", err)
	}

	tests := []struct {
		jti  string
		want bool
	}{
		{loggedOut, true},
		{active, false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := IsTokenRevoked(ctx, database, tt.jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked(%q): %v", tt.jti, err)
		}
		if got != tt.want {
			t.Errorf("IsTokenRevoked(%q) = %v, want %v", tt.jti, got, tt.want)
		}
	}
}

func TestRevokeTokenPrunesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	stale, fresh := uuid.NewString(), uuid.NewString()

	if err := RevokeToken(ctx, database, stale, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := RevokeToken(ctx, database, fresh, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens`).Scan(&n); err != nil {
		t.Fatalf("counting revoked tokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected only the unexpired entry to remain, got %d rows", n)
	}
	if revoked, _ := IsTokenRevoked(ctx, database, fresh); !revoked {
		t.Error("expected unexpired token to stay revoked")
	}
}

func TestRevokeTokenInTransaction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	jti := uuid.NewString()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := RevokeToken(ctx, tx, jti, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if revoked, _ := IsTokenRevoked(ctx, database, jti); revoked {
		t.Error("expected rolled back revocation to be discarded")
	}
}
