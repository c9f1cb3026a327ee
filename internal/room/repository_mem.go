package room

import (
	"context"
	"sort"
	"sync"
)

type memStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	order []string // 插入顺序，时间戳相同时兜底
}

// NewMemoryStore 内存版，仅供测试
func NewMemoryStore() Store {
	return &memStore{
		rooms: make(map[string]*Room),
	}
}

func (m *memStore) Create(ctx context.Context, r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rooms[r.ID] = &cp
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memStore) ListActive(ctx context.Context) ([]Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Room{}
	// 倒序遍历插入序，再按 created_at 稳定排序，行为与 SQL 版对齐
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.rooms[m.order[i]]
		if r.Status == StatusActive {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateStatusCompleted(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return ErrNotFound
	}
	if r.Status != StatusActive {
		return ErrAlreadySettled
	}
	r.Status = StatusCompleted
	return nil
}
