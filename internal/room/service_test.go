package room

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gina7879/tip-arena-v2/internal/realtime"
)

// MockHub 捕获 PublishChange 的调用
type MockHub struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (m *MockHub) PublishChange(ev realtime.ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *MockHub) Events() []realtime.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]realtime.ChangeEvent, len(m.events))
	copy(out, m.events)
	return out
}

func validRequest() CreateRequest {
	return CreateRequest{
		GameName:        "Dota 2",
		PlayerCount:     3,
		Rule:            "Best of 1",
		AmountPerPerson: 0.2,
		ContactInfo:     "discord: gg#1234",
	}
}

func Test_Create_Valid(t *testing.T) {
	hub := &MockHub{}
	svc := NewService(NewMemoryStore(), hub)

	r, err := svc.Create(context.Background(), "0xADDR1", validRequest())
	assert.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, "0xADDR1", r.OwnerAddress)
	assert.False(t, r.CreatedAt.IsZero())

	// 建房应广播一条 insert 事件
	events := hub.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, realtime.ChangeEvent{Table: TableName, ID: r.ID, Kind: realtime.KindInsert}, events[0])
}

func Test_Create_Validation(t *testing.T) {
	cases := []struct {
		name  string
		owner string
		mut   func(*CreateRequest)
	}{
		{"missing game_name", "0xA", func(r *CreateRequest) { r.GameName = "  " }},
		{"missing rule", "0xA", func(r *CreateRequest) { r.Rule = "" }},
		{"missing owner", "", func(r *CreateRequest) {}},
		{"player_count too low", "0xA", func(r *CreateRequest) { r.PlayerCount = 1 }},
		{"player_count too high", "0xA", func(r *CreateRequest) { r.PlayerCount = 11 }},
		{"negative amount", "0xA", func(r *CreateRequest) { r.AmountPerPerson = -0.1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			svc := NewService(store, &MockHub{})

			req := validRequest()
			tc.mut(&req)

			_, err := svc.Create(context.Background(), tc.owner, req)
			assert.ErrorIs(t, err, ErrValidation)

			// 校验失败不能落库
			rooms, _ := store.ListActive(context.Background())
			assert.Empty(t, rooms)
		})
	}
}

func Test_Create_BoundaryPlayerCounts(t *testing.T) {
	svc := NewService(NewMemoryStore(), &MockHub{})

	for _, n := range []int{MinPlayers, MaxPlayers} {
		req := validRequest()
		req.PlayerCount = n
		r, err := svc.Create(context.Background(), "0xA", req)
		assert.NoError(t, err)
		assert.Equal(t, n, r.PlayerCount)
	}
}

func Test_ListActive_NewestFirst(t *testing.T) {
	svc := NewService(NewMemoryStore(), &MockHub{})
	ctx := context.Background()

	names := []string{"Dota 2", "CSGO", "LOL"}
	for _, n := range names {
		req := validRequest()
		req.GameName = n
		_, err := svc.Create(ctx, "0xA", req)
		assert.NoError(t, err)
	}

	rooms, err := svc.ListActive(ctx)
	assert.NoError(t, err)
	assert.Len(t, rooms, 3)
	// 最新的在最前面
	assert.Equal(t, "LOL", rooms[0].GameName)
	assert.Equal(t, "CSGO", rooms[1].GameName)
	assert.Equal(t, "Dota 2", rooms[2].GameName)
}

func Test_Complete_OneWay(t *testing.T) {
	hub := &MockHub{}
	svc := NewService(NewMemoryStore(), hub)
	ctx := context.Background()

	r, err := svc.Create(ctx, "0xA", validRequest())
	assert.NoError(t, err)

	assert.NoError(t, svc.Complete(ctx, r.ID))

	got, err := svc.Get(ctx, r.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	// 二次结算被拒，状态不可逆
	assert.ErrorIs(t, svc.Complete(ctx, r.ID), ErrAlreadySettled)
	got, _ = svc.Get(ctx, r.ID)
	assert.Equal(t, StatusCompleted, got.Status)

	// 已完成的房间从活跃列表消失
	rooms, _ := svc.ListActive(ctx)
	assert.Empty(t, rooms)

	events := hub.Events()
	assert.Len(t, events, 2)
	assert.Equal(t, realtime.KindUpdate, events[1].Kind)
}

func Test_Complete_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore(), &MockHub{})
	assert.ErrorIs(t, svc.Complete(context.Background(), "no-such-room"), ErrNotFound)
}

func Test_Get_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore(), &MockHub{})
	_, err := svc.Get(context.Background(), "no-such-room")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_Payout(t *testing.T) {
	r := Room{AmountPerPerson: 0.5, PlayerCount: 4}
	assert.InDelta(t, 1.5, r.Payout(), 1e-9)

	// 两人局：正好一份
	r = Room{AmountPerPerson: 0.2, PlayerCount: 2}
	assert.InDelta(t, 0.2, r.Payout(), 1e-9)
}
