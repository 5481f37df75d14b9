package inmem

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
	"github.com/Frictionalfor/codeFORGE-sub002/tests"
)

func TestStore(t *testing.T) {
	store := NewStore(0)
	res := classroom.NewResult([]classroom.EnrolledClass{testutil.Class("c1", "Algorithms")}, nil, testutil.Now)

	_, ok := store.Get("u1")
	assert.False(t, ok)

	store.Put("u1", dashboard.NewState(res, nil))
	st, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 1, st.Stats.EnrolledClasses)
	assert.Equal(t, testutil.Now, st.Result.LoadedAt())

	_, ok = store.Get("u2")
	assert.False(t, ok, "entries are per student")

	store.Put("u1", dashboard.NewState(classroom.Result{}, testutil.FetchErr(classroom.KindAuth, 401)))
	st, _ = store.Get("u1")
	assert.Equal(t, "Your session has expired. Please log in again.", st.Notice)
	assert.Equal(t, 1, store.Len())

	store.Delete("u1")
	_, ok = store.Get("u1")
	assert.False(t, ok)
}

func TestStore_maxAge(t *testing.T) {
	store := NewStore(time.Minute)
	store.Put("u1", dashboard.State{})
	store.table["u1"] = entry{storedAt: time.Now().Add(-2 * time.Minute)}

	_, ok := store.Get("u1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStore_expireKeepsNewerPut(t *testing.T) {
	now := testutil.Now
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	store := NewStore(time.Minute)
	store.Put("u1", dashboard.State{})
	stale := store.table["u1"].storedAt

	// a fresh load lands between the expiry check and the deletion
	now = now.Add(2 * time.Minute)
	store.Put("u1", dashboard.State{Notice: "fresh"})
	store.expire("u1", stale)

	st, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "fresh", st.Notice)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get("u1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStore_concurrent(t *testing.T) {
	store := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Put("u1", dashboard.State{})
		}()
		go func() {
			defer wg.Done()
			store.Get("u1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, store.Len())
}
