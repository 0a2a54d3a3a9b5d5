package template

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
)

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func countDefaults(t *testing.T, svc Service) int {
	t.Helper()
	all, err := svc.List(context.Background())
	require.NoError(t, err)
	n := 0
	for _, tmpl := range all {
		if tmpl.IsDefault {
			n++
		}
	}
	return n
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New())

	tmpl, err := svc.Create(ctx, CreateRequest{
		Name:      "  Standard  ",
		Sections:  []repo.SectionDefinition{{Title: "Summary", Order: 1}},
		CreatedBy: "admin",
	})
	require.NoError(t, err)
	require.Equal(t, "Standard", tmpl.Name)
	require.False(t, tmpl.IsDefault)

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"blank name", CreateRequest{Name: "   "}, ErrNameRequired},
		{"duplicate name", CreateRequest{Name: "Standard"}, ErrNameTaken},
		{"untitled section", CreateRequest{Name: "Other", Sections: []repo.SectionDefinition{{Order: 1}}}, ErrSectionTitleRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestDefaultTemplate_SingleDefault(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New())

	_, err := svc.Default(ctx)
	require.ErrorIs(t, err, ErrNoDefault)

	a, err := svc.Create(ctx, CreateRequest{Name: "A", IsDefault: true})
	require.NoError(t, err)
	require.True(t, a.IsDefault)

	b, err := svc.Create(ctx, CreateRequest{Name: "B", IsDefault: true})
	require.NoError(t, err)
	require.Equal(t, 1, countDefaults(t, svc))

	def, err := svc.Default(ctx)
	require.NoError(t, err)
	require.Equal(t, b.ID, def.ID)

	// Clearing a template that is not the default leaves the pointer alone.
	_, err = svc.Update(ctx, a.ID, UpdateRequest{IsDefault: boolPtr(false)})
	require.NoError(t, err)
	def, err = svc.Default(ctx)
	require.NoError(t, err)
	require.Equal(t, b.ID, def.ID)

	_, err = svc.Update(ctx, a.ID, UpdateRequest{IsDefault: boolPtr(true)})
	require.NoError(t, err)
	gotA, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, gotA.IsDefault)
	gotB, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.False(t, gotB.IsDefault)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.Equal(t, 0, countDefaults(t, svc))
	_, err = svc.Default(ctx)
	require.ErrorIs(t, err, ErrNoDefault)
}

func TestDefaultTemplate_RandomSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 20; round++ {
		svc := New(memstore.New())
		var ids []string

		for step := 0; step < 40; step++ {
			switch op := rng.IntN(3); {
			case op == 0 || len(ids) == 0:
				tmpl, err := svc.Create(ctx, CreateRequest{
					Name:      fmt.Sprintf("tmpl-%d-%d", round, step),
					IsDefault: rng.IntN(2) == 0,
				})
				require.NoError(t, err)
				ids = append(ids, tmpl.ID)
			case op == 1:
				id := ids[rng.IntN(len(ids))]
				_, err := svc.Update(ctx, id, UpdateRequest{IsDefault: boolPtr(rng.IntN(2) == 0)})
				require.NoError(t, err)
			default:
				i := rng.IntN(len(ids))
				require.NoError(t, svc.Delete(ctx, ids[i]))
				ids = append(ids[:i], ids[i+1:]...)
			}
			require.LessOrEqual(t, countDefaults(t, svc), 1)
		}
	}
}

func TestDefaultTemplate_ConcurrentSetters(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New())

	var ids []string
	for i := 0; i < 8; i++ {
		tmpl, err := svc.Create(ctx, CreateRequest{Name: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
		ids = append(ids, tmpl.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = svc.Update(ctx, id, UpdateRequest{IsDefault: boolPtr(true)})
		}(id)
	}
	wg.Wait()

	require.Equal(t, 1, countDefaults(t, svc))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New())

	a, err := svc.Create(ctx, CreateRequest{Name: "A", Description: "first"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Name: "B"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, UpdateRequest{Name: strPtr("B")})
	require.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Name: strPtr("C")})
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Update(ctx, a.ID, UpdateRequest{
		Name:     strPtr("A2"),
		Sections: []repo.SectionDefinition{{Title: "One", Order: 1}, {Title: "Two", Order: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, "A2", got.Name)
	require.Equal(t, "first", got.Description)
	require.Len(t, got.Sections, 2)

	require.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

// failingDefault rejects every SetDefault call.
type failingDefault struct {
	repo.TemplateRepository
}

var errPointerWrite = errors.New("pointer write failed")

func (failingDefault) SetDefault(context.Context, string) error { return errPointerWrite }

func TestCreate_DefaultFailureLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	inner := store.Templates
	store.Templates = failingDefault{TemplateRepository: inner}
	svc := New(store)

	_, err := svc.Create(ctx, CreateRequest{Name: "Standard", IsDefault: true})
	require.ErrorIs(t, err, errPointerWrite)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	store.Templates = inner
	tmpl, err := svc.Create(ctx, CreateRequest{Name: "Standard", IsDefault: true})
	require.NoError(t, err)
	require.True(t, tmpl.IsDefault)
}
