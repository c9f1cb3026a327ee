package room

import "time"

// rooms 表的两个生命周期状态，只允许 active -> completed 单向流转
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	MinPlayers = 2
	MaxPlayers = 10
)

// Table 变更事件里使用的表名
const TableName = "rooms"

// Room 对应 rooms 表的一行；创建后除 status 外任何字段不再修改
type Room struct {
	ID              string    `json:"id"`
	GameName        string    `json:"game_name"`
	PlayerCount     int       `json:"player_count"`
	Rule            string    `json:"rule"`
	AmountPerPerson float64   `json:"amount_per_person"`
	OwnerAddress    string    `json:"owner_address"`
	Status          string    `json:"status"`
	ContactInfo     string    `json:"contact_info,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Payout 输家应付总额：每人金额 × 其余玩家数。
// 收款方始终是 owner_address 一个地址，多人局不做拆分。
func (r *Room) Payout() float64 {
	return r.AmountPerPerson * float64(r.PlayerCount-1)
}

// CreateRequest 建房表单；owner_address 由登录态注入，不走表单
type CreateRequest struct {
	GameName        string  `json:"game_name" binding:"required"`
	PlayerCount     int     `json:"player_count" binding:"required,min=2,max=10"`
	Rule            string  `json:"rule" binding:"required"`
	AmountPerPerson float64 `json:"amount_per_person" binding:"gte=0"`
	ContactInfo     string  `json:"contact_info"`
}
