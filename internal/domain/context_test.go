package domain

import (
	"context"
	"testing"
)

func TestUserContext(t *testing.T) {
	t.Run("UserFromContext returns nil when no user", func(t *testing.T) {
		if user := UserFromContext(context.Background()); user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
		if IsAuthenticated(context.Background()) {
			t.Error("expected anonymous context")
		}
		if RoleFromContext(context.Background()) != RoleAnonymous {
			t.Error("expected anonymous role")
		}
	})

	t.Run("UserFromContext returns user when set", func(t *testing.T) {
		expected := &User{ID: "12", Email: "ana@example.com", Role: RoleClient}
		ctx := NewContextWithUser(context.Background(), expected)

		user := UserFromContext(ctx)
		if user == nil {
			t.Fatal("expected user, got nil")
		}
		if user.Email != expected.Email {
			t.Errorf("expected Email %q, got %q", expected.Email, user.Email)
		}
		if !IsAuthenticated(ctx) {
			t.Error("expected authenticated context")
		}
		if IsElevated(ctx) {
			t.Error("client must not be elevated")
		}
	})

	t.Run("elevated role", func(t *testing.T) {
		ctx := NewContextWithUser(context.Background(), &User{Role: "admin"})
		if !IsElevated(ctx) {
			t.Error("admin should be elevated")
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := NewContextWithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		role      Role
		anonymous bool
		elevated  bool
	}{
		{RoleAnonymous, true, false},
		{"  ", true, false},
		{RoleClient, false, false},
		{"CLIENT", false, false},
		{"admin", false, true},
		{"seller", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.IsAnonymous(); got != tt.anonymous {
				t.Errorf("IsAnonymous() = %v, want %v", got, tt.anonymous)
			}
			if got := tt.role.IsElevated(); got != tt.elevated {
				t.Errorf("IsElevated() = %v, want %v", got, tt.elevated)
			}
		})
	}
}

func TestUserProfile_Names(t *testing.T) {
	p := UserProfile{FirstName: "ana", PaternalSurname: "Quispe", MaternalSurname: ""}
	if got := p.FullName(); got != "ana Quispe" {
		t.Errorf("FullName() = %q", got)
	}
	if got := p.Initials(); got != "AQ" {
		t.Errorf("Initials() = %q", got)
	}
	if got := (UserProfile{}).Initials(); got != "?" {
		t.Errorf("Initials() of empty profile = %q", got)
	}
}

func TestCatalog_Product(t *testing.T) {
	c := &Catalog{Products: []Product{{ID: "1", Name: "Mug"}, {ID: "2", Name: "Scarf"}}}
	if p, ok := c.Product("2"); !ok || p.Name != "Scarf" {
		t.Errorf("Product(2) = %+v, %v", p, ok)
	}
	if _, ok := c.Product("9"); ok {
		t.Error("Product(9) should be missing")
	}
	var nilCatalog *Catalog
	if _, ok := nilCatalog.Product("1"); ok {
		t.Error("nil catalog should have no products")
	}
}
