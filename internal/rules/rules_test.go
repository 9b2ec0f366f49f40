package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

type call struct {
	op     string
	flag   *domain.Flag
	entity *domain.Entity
}

type fakeService struct {
	calls []call
	err   error
}

func (f *fakeService) Flag(_ context.Context, flag *domain.Flag, entity *domain.Entity) (*domain.Flagging, error) {
	f.calls = append(f.calls, call{"flag", flag, entity})
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewFlagging("flagging-1", flag, entity, domain.Actor{UserID: "u"}), nil
}

func (f *fakeService) Unflag(_ context.Context, flag *domain.Flag, entity *domain.Entity) error {
	f.calls = append(f.calls, call{"unflag", flag, entity})
	return f.err
}

func TestUnflagAction_Summary(t *testing.T) {
	a := NewUnflagAction(&fakeService{})
	assert.Equal(t, "unflag entity", a.Summary())

	// The summary does not depend on any execution state.
	_ = a.Execute(context.Background(), Context{})
	assert.Equal(t, "unflag entity", a.Summary())
}

func TestUnflagAction_ExecutePassesValuesThrough(t *testing.T) {
	svc := &fakeService{}
	a := NewUnflagAction(svc)

	flag := domain.NewFlag("bookmark", "", "node")
	entity := &domain.Entity{Type: "node", ID: 5}

	require.NoError(t, a.Execute(context.Background(), Context{Entity: entity, Flag: flag}))

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "unflag", svc.calls[0].op)
	assert.Same(t, flag, svc.calls[0].flag)
	assert.Same(t, entity, svc.calls[0].entity)
}

func TestUnflagAction_PropagatesErrors(t *testing.T) {
	want := domainerrors.NotFound("flagging not found")
	svc := &fakeService{err: want}

	err := NewUnflagAction(svc).Execute(context.Background(), Context{
		Entity: &domain.Entity{Type: "node", ID: 5},
		Flag:   domain.NewFlag("bookmark", "", "node"),
	})
	assert.True(t, errors.Is(err, want))
	assert.Len(t, svc.calls, 1)
}

func TestUnflagAction_MissingContext(t *testing.T) {
	svc := &fakeService{}
	err := NewUnflagAction(svc).Execute(context.Background(), Context{Flag: domain.NewFlag("x", "", "node")})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Empty(t, svc.calls)
}

func TestUnflagAction_Definition(t *testing.T) {
	def := NewUnflagAction(&fakeService{}).Definition()
	assert.Equal(t, "flag_action_unflag", def.ID)
	assert.Equal(t, "Unflags the specified entity.", def.Label)
	assert.Equal(t, "Entity", def.Category)
	assert.Equal(t, ContextTypeEntity, def.Contexts["entity"].Type)
	assert.Equal(t, ContextTypeFlag, def.Contexts["flag"].Type)
}

func TestFlagAction(t *testing.T) {
	svc := &fakeService{}
	a := NewFlagAction(svc)
	assert.Equal(t, "flag entity", a.Summary())

	flag := domain.NewFlag("like", "", "node")
	entity := &domain.Entity{Type: "node", ID: 1}
	require.NoError(t, a.Execute(context.Background(), Context{Entity: entity, Flag: flag}))

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "flag", svc.calls[0].op)
	assert.Same(t, flag, svc.calls[0].flag)
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry(&fakeService{})

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, FlagActionID, defs[0].ID)
	assert.Equal(t, UnflagActionID, defs[1].ID)

	err := r.Register(NewUnflagAction(&fakeService{}))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	m := NewManager(r)
	a, err := m.CreateInstance(UnflagActionID)
	require.NoError(t, err)
	assert.Equal(t, "unflag entity", a.Summary())

	_, err = m.CreateInstance("flag_action_missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
