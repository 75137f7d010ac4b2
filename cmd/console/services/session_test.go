package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/cmd/console/dto"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	st := NewSessionStore(newFakeAPI(0), SessionOptions{})

	s := st.Create()
	require.NotEmpty(t, s.ID)
	require.NotNil(t, s.Coordinator)
	require.NotNil(t, s.Cache)

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = st.Get("unknown")
	assert.False(t, ok)
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := NewSessionStore(newFakeAPI(0), SessionOptions{TTL: time.Hour})
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()

	now = now.Add(50 * time.Minute)
	_, ok := st.Get(active.ID)
	require.True(t, ok)

	now = now.Add(20 * time.Minute)
	_, ok = st.Get(idle.ID)
	assert.False(t, ok)

	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 0, st.Len())
}

func TestGetOrCreate(t *testing.T) {
	st := NewSessionStore(newFakeAPI(0), SessionOptions{})

	s, created := st.GetOrCreate("")
	assert.True(t, created)

	again, created := st.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestSessionComposersAndFlashes(t *testing.T) {
	s := NewSessionStore(newFakeAPI(0), SessionOptions{}).Create()

	c, created := s.Composer(NewDraftKey)
	assert.True(t, created)
	same, created := s.Composer(NewDraftKey)
	assert.False(t, created)
	assert.Same(t, c, same)

	s.ForgetComposer(NewDraftKey)
	_, ok := s.LookupComposer(NewDraftKey)
	assert.False(t, ok)

	s.AddFlash(dto.FlashSuccess, "saved")
	s.AddFlash(dto.FlashError, "oops")
	assert.Equal(t, []dto.Flash{{Kind: "success", Message: "saved"}, {Kind: "error", Message: "oops"}}, s.PopFlashes())
	assert.Empty(t, s.PopFlashes())
}

func TestDetachedSessionIsNotStored(t *testing.T) {
	st := NewSessionStore(newFakeAPI(0), SessionOptions{})

	s := st.Detached()
	require.NotNil(t, s.Coordinator)
	require.NotNil(t, s.Cache)
	assert.Equal(t, 0, st.Len())

	_, ok := st.Get(s.ID)
	assert.False(t, ok)
}
