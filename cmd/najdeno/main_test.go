package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestBootstrapAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := bootstrapAdmin(ctx, database, "root", &out); err != nil {
		t.Fatalf("bootstrapAdmin: %v", err)
	}

	user, err := store.GetUserByUsername(ctx, database, "root")
	if err != nil || user == nil {
		t.Fatalf("expected admin user, got %v, %v", user, err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %s", user.Role)
	}

	var password string
	for _, line := range strings.Split(out.String(), "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Password: "); ok {
			password = v
		}
	}
	if password == "" {
		t.Fatalf("no password printed: %q", out.String())
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		t.Errorf("stored hash does not match printed password: %v", err)
	}
}

func TestBootstrapAdminRunsOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := bootstrapAdmin(ctx, database, "root", &bytes.Buffer{}); err != nil {
		t.Fatalf("bootstrapAdmin: %v", err)
	}

	var out bytes.Buffer
	if err := bootstrapAdmin(ctx, database, "second", &out); err != nil {
		t.Fatalf("second bootstrapAdmin: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing printed once an admin exists, got %q", out.String())
	}
	if u, _ := store.GetUserByUsername(ctx, database, "second"); u != nil {
		t.Error("expected no second admin")
	}
}
