package realtime

import (
	"sort"
	"sync"
)

// Profile 在线用户信息，取自连接鉴权时的 token
type Profile struct {
	UserID uint64 `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
}

type presenceEntry struct {
	profile Profile
	handles map[string]struct{}
}

// Presence 在线状态表，用户至少持有一条连接时才视为在线
type Presence struct {
	mu      sync.Mutex
	entries map[uint64]*presenceEntry
}

func NewPresence() *Presence {
	return &Presence{entries: make(map[uint64]*presenceEntry)}
}

// Register 登记一条连接，同一 handle 重复登记无副作用，返回用户是否由离线变为在线
func (p *Presence) Register(profile Profile, handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[profile.UserID]
	if !ok {
		entry = &presenceEntry{handles: make(map[string]struct{})}
		p.entries[profile.UserID] = entry
	}
	entry.profile = profile
	entry.handles[handle] = struct{}{}
	return !ok
}

// Unregister 移除一条连接，最后一条连接断开时删除整个条目，返回用户是否由在线变为离线
func (p *Presence) Unregister(userID uint64, handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[userID]
	if !ok {
		return false
	}
	delete(entry.handles, handle)
	if len(entry.handles) > 0 {
		return false
	}
	delete(p.entries, userID)
	return true
}

// Snapshot 当前在线用户列表，每个用户一条，按 ID 升序
func (p *Presence) Snapshot() []Profile {
	p.mu.Lock()
	list := make([]Profile, 0, len(p.entries))
	for _, entry := range p.entries {
		list = append(list, entry.profile)
	}
	p.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return list
}

func (p *Presence) IsOnline(userID uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[userID]
	return ok
}

// ConnectionCount 用户当前连接数
func (p *Presence) ConnectionCount(userID uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.entries[userID]; ok {
		return len(entry.handles)
	}
	return 0
}
