package reminders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerStore_UpsertReplaces(t *testing.T) {
	store := NewTimerStore()
	defer store.Stop()

	key := JobKey{ItemID: uuid.New(), UserID: uuid.New()}
	fired := make(chan string, 2)

	store.Upsert(key, time.Now().Add(time.Hour), func() { fired <- "first" })
	require.Equal(t, 1, store.Len())

	store.Upsert(key, time.Now().Add(10*time.Millisecond), func() { fired <- "second" })
	require.Equal(t, 1, store.Len())

	select {
	case got := <-fired:
		assert.Equal(t, "second", got)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement job never fired")
	}

	select {
	case got := <-fired:
		t.Fatalf("stale job fired: %s", got)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 0, store.Len())
}

func TestTimerStore_DistinctKeysCoexist(t *testing.T) {
	store := NewTimerStore()
	defer store.Stop()

	userID := uuid.New()
	store.Upsert(JobKey{ItemID: uuid.New(), UserID: userID}, time.Now().Add(time.Hour), func() {})
	store.Upsert(JobKey{ItemID: uuid.New(), UserID: userID}, time.Now().Add(time.Hour), func() {})
	assert.Equal(t, 2, store.Len())
}

func TestTimerStore_Cancel(t *testing.T) {
	store := NewTimerStore()
	defer store.Stop()

	key := JobKey{ItemID: uuid.New(), UserID: uuid.New()}
	fired := make(chan struct{}, 1)
	store.Upsert(key, time.Now().Add(20*time.Millisecond), func() { fired <- struct{}{} })
	store.Cancel(key)
	assert.Equal(t, 0, store.Len())

	select {
	case <-fired:
		t.Fatal("canceled job fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerStore_PastFireTimeRunsPromptly(t *testing.T) {
	store := NewTimerStore()
	defer store.Stop()

	fired := make(chan struct{}, 1)
	store.Upsert(JobKey{ItemID: uuid.New(), UserID: uuid.New()}, time.Now().Add(-time.Minute), func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("past-due job never fired")
	}
}
