package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(hub *Hub, addr string) *Client {
	c := &Client{Address: addr, Send: make(chan OutgoingMessage, 4), Hub: hub}
	hub.register <- c
	return c
}

func subscribeTo(hub *Hub, c *Client, table, id, kind string) {
	hub.subscribe <- subReq{client: c, sub: subscription{Table: table, ID: id, Kind: kind}}
}

func drain(c *Client) []OutgoingMessage {
	out := []OutgoingMessage{}
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func Test_Hub_RowFilter(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := newTestClient(hub, "0xA")
	c2 := newTestClient(hub, "0xB")
	subscribeTo(hub, c1, "rooms", "r1", "")
	subscribeTo(hub, c2, "rooms", "r2", "")

	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r1", Kind: KindUpdate})
	time.Sleep(20 * time.Millisecond)

	m1 := drain(c1)
	assert.Len(t, m1, 1)
	assert.Equal(t, "change", m1[0].Event)
	assert.Equal(t, ChangeEvent{Table: "rooms", ID: "r1", Kind: KindUpdate}, m1[0].Data)

	// 订阅了别的行的客户端不能收到
	assert.Empty(t, drain(c2))
}

func Test_Hub_TableWideSubscription(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := newTestClient(hub, "0xA")
	subscribeTo(hub, c, "rooms", "", KindAll)

	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r1", Kind: KindInsert})
	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r2", Kind: KindUpdate})
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, drain(c), 2)
}

func Test_Hub_UnrelatedTableNeverDelivered(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := newTestClient(hub, "0xA")
	subscribeTo(hub, c, "rooms", "r1", KindAll)

	hub.PublishChange(ChangeEvent{Table: "players", ID: "r1", Kind: KindInsert})
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, drain(c))
}

func Test_Hub_KindFilter(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := newTestClient(hub, "0xA")
	subscribeTo(hub, c, "rooms", "", KindDelete)

	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r1", Kind: KindUpdate})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, drain(c))

	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r1", Kind: KindDelete})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, drain(c), 1)
}

func Test_Hub_OneMessagePerEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	// 同一个客户端叠加两个都能命中的订阅，也只收一条
	c := newTestClient(hub, "0xA")
	subscribeTo(hub, c, "rooms", "", KindAll)
	subscribeTo(hub, c, "rooms", "r1", "")

	hub.PublishChange(ChangeEvent{Table: "rooms", ID: "r1", Kind: KindUpdate})
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, drain(c), 1)
}

func Test_Hub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c := newTestClient(hub, "0xA")
	hub.unregister <- c
	time.Sleep(20 * time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}
