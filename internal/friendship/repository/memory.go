package repository

import (
	"context"
	"go-friendship/internal/friendship/model"
	"go-friendship/internal/pkg/snowflake"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type pairKey struct {
	a, b string
}

// MemoryStore keeps everything in process. It is meant for local runs and
// tests; the data is gone on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	requests    map[int64]*model.FriendRequest
	pairs       map[pairKey]int64
	friendships map[pairKey]*model.Friendship
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:    make(map[int64]*model.FriendRequest),
		pairs:       make(map[pairKey]int64),
		friendships: make(map[pairKey]*model.Friendship),
	}
}

func (m *MemoryStore) FindMatching(ctx context.Context, senderID, recipientID string) (*model.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pairs[pairKey{senderID, recipientID}]
	if !ok {
		return nil, ErrNotFound
	}
	req := *m.requests[id]
	return &req, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *MemoryStore) Insert(ctx context.Context, data *model.FriendRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{data.SenderID, data.RecipientID}
	if _, ok := m.pairs[key]; ok {
		return 0, ErrDuplicate
	}
	now := time.Now()
	data.ID = snowflake.Generate()
	data.CreatedAt = now
	data.UpdatedAt = now
	cp := *data
	m.requests[cp.ID] = &cp
	m.pairs[key] = cp.ID
	return cp.ID, nil
}

func (m *MemoryStore) Update(ctx context.Context, id int64, from, to model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transition(id, from, to)
}

func (m *MemoryStore) AcceptAndBefriend(ctx context.Context, id int64, friendship *model.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transition(id, model.StatusPending, model.StatusAccepted); err != nil {
		return err
	}
	key := pairKey{friendship.UserA, friendship.UserB}
	if _, ok := m.friendships[key]; ok {
		return nil
	}
	friendship.ID = snowflake.Generate()
	friendship.CreatedAt = time.Now()
	cp := *friendship
	m.friendships[key] = &cp
	return nil
}

// Friendship returns the stored friendship between two users, in either order.
func (m *MemoryStore) Friendship(userA, userB string) (*model.Friendship, bool) {
	if userB < userA {
		userA, userB = userB, userA
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.friendships[pairKey{userA, userB}]
	if !ok {
		return nil, false
	}
	cp := *f
	return &cp, true
}

func (m *MemoryStore) Close() error {
	return nil
}

// transition must be called with m.mu held.
func (m *MemoryStore) transition(id int64, from, to model.Status) error {
	req, ok := m.requests[id]
	if !ok || req.Status != from {
		return ErrNotFound
	}
	req.Status = to
	req.UpdatedAt = time.Now()
	return nil
}
