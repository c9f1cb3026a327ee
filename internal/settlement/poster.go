package settlement

import (
	"fmt"
	"time"

	"github.com/Gina7879/tip-arena-v2/internal/room"
)

// Poster 结算完成后生成的战绩卡片数据，前端拿去渲染分享图
type Poster struct {
	GameName  string    `json:"game_name"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	SettledAt time.Time `json:"settled_at"`
	Caption   string    `json:"caption"`
}

func NewPoster(r *room.Room) Poster {
	amount := r.Payout()
	return Poster{
		GameName:  r.GameName,
		Amount:    amount,
		Currency:  "ETH",
		SettledAt: time.Now().UTC(),
		Caption:   fmt.Sprintf("%s 战局结算完成，赔付 %.4f ETH", r.GameName, amount),
	}
}
