package realtime

import "encoding/json"

// 事件种类，与后端表变更一一对应
const (
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
	KindAll    = "*"
)

// ChangeEvent 某张表上一行发生了变化；订阅方收到后自行重新拉取
type ChangeEvent struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Kind  string `json:"kind"`
}

// SubscribeRequest 客户端的订阅过滤条件；ID 为空表示整表
type SubscribeRequest struct {
	Table string `json:"table"`
	ID    string `json:"id,omitempty"`
	Kind  string `json:"kind,omitempty"` // 默认 "*"
}

type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type IncomingMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
