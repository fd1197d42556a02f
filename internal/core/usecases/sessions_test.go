package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/areainsight/internal/core/usecases"
)

func TestSessionRegistry_BeginSupersedes(t *testing.T) {
	r := usecases.NewSessionRegistry()

	ctx1, gen1 := r.Begin(context.Background(), "s")
	ctx2, gen2 := r.Begin(context.Background(), "s")

	assert.NotEqual(t, gen1, gen2)
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.False(t, r.IsCurrent("s", gen1))
	assert.True(t, r.IsCurrent("s", gen2))
}

func TestSessionRegistry_EndOnlyReleasesCurrent(t *testing.T) {
	r := usecases.NewSessionRegistry()
	_, gen1 := r.Begin(context.Background(), "s")
	ctx2, gen2 := r.Begin(context.Background(), "s")

	r.End("s", gen1)
	assert.True(t, r.IsCurrent("s", gen2))
	assert.NoError(t, ctx2.Err())

	r.End("s", gen2)
	assert.Equal(t, 0, r.Active())
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestSessionRegistry_Clear(t *testing.T) {
	r := usecases.NewSessionRegistry()
	ctx, gen := r.Begin(context.Background(), "s")

	assert.True(t, r.Clear("s"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, r.IsCurrent("s", gen))
	assert.False(t, r.Clear("s"))

	// a later run never reuses a cleared generation
	_, next := r.Begin(context.Background(), "s")
	assert.Greater(t, next, gen)
}

func TestSessionRegistry_Independent(t *testing.T) {
	r := usecases.NewSessionRegistry()
	ctxA, genA := r.Begin(context.Background(), "a")
	_, _ = r.Begin(context.Background(), "b")

	assert.NoError(t, ctxA.Err())
	assert.True(t, r.IsCurrent("a", genA))
	assert.Equal(t, 2, r.Active())
}

func TestSessionRegistry_Untracked(t *testing.T) {
	r := usecases.NewSessionRegistry()
	ctx, gen := r.Begin(context.Background(), "")
	assert.True(t, r.IsCurrent("", gen))
	r.End("", gen)
	assert.NoError(t, ctx.Err())
	assert.Equal(t, 0, r.Active())
}
