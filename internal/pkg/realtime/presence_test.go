package realtime

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceRegisterIsIdempotentPerHandle(t *testing.T) {
	p := NewPresence()
	alice := Profile{UserID: 1, Name: "alice"}

	assert.True(t, p.Register(alice, "h1"))
	assert.False(t, p.Register(alice, "h1"))
	assert.Equal(t, 1, p.ConnectionCount(1))

	assert.False(t, p.Register(alice, "h2"))
	assert.Equal(t, 2, p.ConnectionCount(1))
	assert.Len(t, p.Snapshot(), 1)
}

func TestPresenceLastHandleRemovesEntry(t *testing.T) {
	p := NewPresence()
	p.Register(Profile{UserID: 7}, "a")
	p.Register(Profile{UserID: 7}, "b")

	assert.False(t, p.Unregister(7, "a"))
	assert.True(t, p.IsOnline(7))

	assert.True(t, p.Unregister(7, "b"))
	assert.False(t, p.IsOnline(7))
	assert.Empty(t, p.Snapshot())

	assert.False(t, p.Unregister(7, "b"))
	assert.False(t, p.Unregister(99, "x"))
}

// 随机注册/注销序列下，快照包含某用户当且仅当其仍有连接
func TestPresenceSnapshotMatchesLiveHandles(t *testing.T) {
	rng := rand.New(rand.NewSource(20240601))

	for round := 0; round < 50; round++ {
		p := NewPresence()
		model := make(map[uint64]map[string]struct{})

		for step := 0; step < 300; step++ {
			userID := uint64(rng.Intn(6) + 1)
			handle := fmt.Sprintf("h%d", rng.Intn(4))

			if rng.Intn(2) == 0 {
				p.Register(Profile{UserID: userID}, handle)
				if model[userID] == nil {
					model[userID] = make(map[string]struct{})
				}
				model[userID][handle] = struct{}{}
			} else {
				p.Unregister(userID, handle)
				if handles, ok := model[userID]; ok {
					delete(handles, handle)
					if len(handles) == 0 {
						delete(model, userID)
					}
				}
			}

			snapshot := p.Snapshot()
			online := make(map[uint64]bool, len(snapshot))
			for _, profile := range snapshot {
				require.False(t, online[profile.UserID], "duplicate user in snapshot")
				online[profile.UserID] = true
			}
			for id := uint64(1); id <= 6; id++ {
				_, expected := model[id]
				require.Equal(t, expected, online[id], "round %d step %d user %d", round, step, id)
				require.Equal(t, len(model[id]), p.ConnectionCount(id))
			}
		}
	}
}

func TestPresenceConcurrentAccess(t *testing.T) {
	p := NewPresence()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle := fmt.Sprintf("conn-%d", i)
			userID := uint64(i%5 + 1)
			for j := 0; j < 100; j++ {
				p.Register(Profile{UserID: userID}, handle)
				_ = p.Snapshot()
				p.Unregister(userID, handle)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, p.Snapshot())
}

func TestPresenceSnapshotSortedAndLatestProfile(t *testing.T) {
	p := NewPresence()
	p.Register(Profile{UserID: 3, Name: "c"}, "x")
	p.Register(Profile{UserID: 1, Name: "a"}, "y")
	p.Register(Profile{UserID: 1, Name: "a2"}, "z")

	snapshot := p.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, uint64(1), snapshot[0].UserID)
	assert.Equal(t, "a2", snapshot[0].Name)
	assert.Equal(t, uint64(3), snapshot[1].UserID)
}
