package realtime

import "log"

type HubInterface interface {
	PublishChange(ev ChangeEvent)
	Close()
}

type subscription struct {
	Table string
	ID    string
	Kind  string
}

func (s subscription) matches(ev ChangeEvent) bool {
	if s.Table != ev.Table {
		return false
	}
	if s.ID != "" && s.ID != ev.ID {
		return false
	}
	if s.Kind != "" && s.Kind != KindAll && s.Kind != ev.Kind {
		return false
	}
	return true
}

type Hub struct {
	clients    map[*Client][]subscription
	register   chan *Client
	unregister chan *Client
	subscribe  chan subReq
	publish    chan ChangeEvent
	quit       chan struct{}
}

type subReq struct {
	client *Client
	sub    subscription
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client][]subscription),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subReq),
		publish:    make(chan ChangeEvent),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {

	log.Println("Realtime hub started")

	for {
		select {
		case c := <-h.register:
			h.clients[c] = nil
			log.Printf("Hub.register -> %s (当前连接数: %d)", c.Address, len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				log.Printf("Hub.unregister -> %s (当前连接数: %d)", c.Address, len(h.clients))
				close(c.Send)
			}

		case req := <-h.subscribe:
			if _, ok := h.clients[req.client]; ok {
				h.clients[req.client] = append(h.clients[req.client], req.sub)
			}

		case ev := <-h.publish:
			for c, subs := range h.clients {
				for _, s := range subs {
					if !s.matches(ev) {
						continue
					}
					select {
					case c.Send <- OutgoingMessage{Event: "change", Data: ev}:
					default:
						// 慢消费者直接丢弃；事件只是"有变化"信号，客户端重连后会全量拉取
					}
					break
				}
			}

		case <-h.quit:
			for c := range h.clients {
				close(c.Send)
			}
			return
		}
	}
}

// PublishChange 由 room 服务在增改后调用
func (h *Hub) PublishChange(ev ChangeEvent) {
	h.publish <- ev
}

func (h *Hub) Close() {
	close(h.quit)
}
