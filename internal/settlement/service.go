package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Gina7879/tip-arena-v2/internal/room"
	"github.com/Gina7879/tip-arena-v2/internal/utils"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrTransaction  = errors.New("transaction failed")
)

// RoomStore 结算流程需要的最小房间操作子集
type RoomStore interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
	UpdateStatusCompleted(ctx context.Context, id string) error
}

type Service struct {
	store RoomStore
	conn  Connection
}

func NewService(store RoomStore, conn Connection) *Service {
	return &Service{store: store, conn: conn}
}

var weiPerCoin = big.NewFloat(1e18)

// ToBaseUnits 把原生币金额折算成 wei，向下取整
func ToBaseUnits(amount float64) *big.Int {
	f := new(big.Float).Mul(big.NewFloat(amount), weiPerCoin)
	wei, _ := f.Int(nil)
	return wei
}

// Result 结算成功后的战绩
type Result struct {
	Room      *room.Room `json:"room"`
	Signature string     `json:"signature"`
	Poster    Poster     `json:"poster"`
}

// Settle 输家结算：一条直线流程，任何一步失败都不重试。
//  1. 钱包未连接直接报错
//  2. 计算赔付额并折算成 wei
//  3. 整笔转给 owner_address（多人局也不拆分）
//  4. 提交后等待 confirmed
//  5. 确认后把房间翻成 completed
func (s *Service) Settle(ctx context.Context, w Wallet, roomID string) (*Result, error) {
	from, ok := w.PublicKey()
	if !ok {
		return nil, ErrNotConnected
	}

	r, err := s.store.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.Status != room.StatusActive {
		return nil, room.ErrAlreadySettled
	}
	if !common.IsHexAddress(r.OwnerAddress) {
		return nil, fmt.Errorf("%w: bad owner address %q", ErrTransaction, r.OwnerAddress)
	}

	t := &Transfer{
		From:   from,
		To:     common.HexToAddress(r.OwnerAddress),
		Amount: ToBaseUnits(r.Payout()),
	}

	sig, err := w.SendTransaction(ctx, t, s.conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	if err := s.conn.ConfirmTransaction(ctx, sig, Confirmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	if err := s.store.UpdateStatusCompleted(ctx, r.ID); err != nil {
		// 资金已转出但状态没落库，记下交易哈希便于人工对账
		utils.Error.Printf("settle: funds sent (tx=%s, room=%s) but status update failed: %v", sig, r.ID, err)
		return nil, err
	}

	return &Result{Room: r, Signature: sig, Poster: NewPoster(r)}, nil
}
