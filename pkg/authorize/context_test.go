package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

type fakeClaims struct {
	userID uuid.UUID
	role   string
}

func (c fakeClaims) GetUserID() uuid.UUID     { return c.userID }
func (c fakeClaims) GetRole() string          { return c.role }
func (c fakeClaims) GetSessionID() *uuid.UUID { return nil }
func (c fakeClaims) GetTokenType() string     { return "access" }
func (c fakeClaims) IsExpired() bool          { return false }

func TestSubjectFromContext(t *testing.T) {
	validUUID := uuid.New()

	tests := []struct {
		name        string
		ctx         context.Context
		wantSubject GroupSubject
		wantErr     bool
	}{
		{"valid claims", reqctx.WithClaims(context.Background(), fakeClaims{userID: validUUID}), GroupSubject(validUUID.String()), false},
		{"no claims in context", context.Background(), "", true},
		{"nil uuid in claims", reqctx.WithClaims(context.Background(), fakeClaims{}), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := SubjectFromContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SubjectFromContext() error = %v, wantErr %v", err, tt.wantErr)
			}
			if subject != tt.wantSubject {
				t.Errorf("SubjectFromContext() = %q, want %q", subject, tt.wantSubject)
			}
		})
	}
}

func TestMustSubjectFromContext(t *testing.T) {
	t.Run("panics without claims", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		MustSubjectFromContext(context.Background())
	})
}

func TestRoleAndDomainFromContext(t *testing.T) {
	id := uuid.New()
	ctx := reqctx.WithClaims(context.Background(), fakeClaims{userID: id, role: "practitioner"})

	role, ok := RoleFromContext(ctx)
	if !ok || role != RolePractitioner {
		t.Errorf("RoleFromContext() = %q, %v", role, ok)
	}

	d, err := DomainFromContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d != UserDomain(id.String()) || !IsValidDomain(d) {
		t.Errorf("DomainFromContext() = %q", d)
	}

	if _, ok := RoleFromContext(context.Background()); ok {
		t.Error("expected no role without claims")
	}
}
