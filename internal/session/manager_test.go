package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/face-filter/internal/catalog"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(context.Background(), testCatalog(), testOptions(readyLoader()))
	defer m.CloseAll()

	s := m.Create()
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID))
	assert.ErrorIs(t, m.Delete(s.ID), ErrSessionNotFound)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Tap("all-0"), ErrClosed)
}

func TestManagerCloseAll(t *testing.T) {
	m := NewManager(context.Background(), testCatalog(), testOptions(readyLoader()))
	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, m.List(), 2)

	m.CloseAll()
	assert.Zero(t, m.Len())
	assert.ErrorIs(t, a.Scroll(0), ErrClosed)
	assert.ErrorIs(t, b.Scroll(0), ErrClosed)
}

func TestManagerUnmountHooks(t *testing.T) {
	m := NewManager(context.Background(), testCatalog(), testOptions(readyLoader()))
	var unmounted []string
	m.OnUnmount(func(id string) { unmounted = append(unmounted, id) })

	a := m.Create()
	b := m.Create()
	c := m.Create()

	require.NoError(t, m.Delete(a.ID))
	assert.Equal(t, []string{a.ID}, unmounted)
	assert.ErrorIs(t, m.Delete(a.ID), ErrSessionNotFound)
	assert.Len(t, unmounted, 1)

	m.CloseAll()
	assert.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, unmounted)
}

func TestManagerSessionsShareCatalog(t *testing.T) {
	cat := testCatalog()
	m := NewManager(context.Background(), cat, testOptions(readyLoader()))
	defer m.CloseAll()

	a := m.Create()
	b := m.Create()
	cat.RegisterFilter(sampleFilter())

	assert.Len(t, a.Entries(), 140)
	assert.Len(t, b.Entries(), 140)
}

func sampleFilter() catalog.FilterDefinition {
	return catalog.FilterDefinition{Identifier: "crown", ImageRef: "/crown.png", Category: catalog.CategoryHead}
}
