package settlement

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Commitment 交易确认级别
type Commitment string

const Confirmed Commitment = "confirmed"

// Transfer 一笔原生币转账指令
type Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int // wei
}

// Wallet 外部钱包协作方：给出地址、对转账签名并提交
type Wallet interface {
	// PublicKey 返回地址；未连接钱包时 ok 为 false
	PublicKey() (addr common.Address, ok bool)
	// SendTransaction 构造、签名并广播交易，返回交易哈希
	SendTransaction(ctx context.Context, t *Transfer, conn Connection) (string, error)
}

// Connection 链上连接，负责广播与确认
type Connection interface {
	PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendRawTransaction(ctx context.Context, tx *types.Transaction) error
	// ConfirmTransaction 阻塞等待交易达到给定确认级别
	ConfirmTransaction(ctx context.Context, signature string, level Commitment) error
}

const transferGasLimit = 21000 // 原生币转账固定 gas

// LocalWallet 本地私钥钱包，结算 CLI 用
type LocalWallet struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

func NewLocalWallet(hexKey string, chainID int64) (*LocalWallet, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, err
	}
	return NewLocalWalletFromKey(key, chainID), nil
}

func NewLocalWalletFromKey(key *ecdsa.PrivateKey, chainID int64) *LocalWallet {
	return &LocalWallet{key: key, chainID: big.NewInt(chainID)}
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

func (w *LocalWallet) PublicKey() (common.Address, bool) {
	if w == nil || w.key == nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(w.key.PublicKey), true
}

func (w *LocalWallet) SendTransaction(ctx context.Context, t *Transfer, conn Connection) (string, error) {
	nonce, err := conn.PendingNonceAt(ctx, t.From)
	if err != nil {
		return "", err
	}
	gasPrice, err := conn.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, t.To, t.Amount, transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return "", err
	}
	if err := conn.SendRawTransaction(ctx, signed); err != nil {
		return "", err
	}
	return signed.Hash().Hex(), nil
}
