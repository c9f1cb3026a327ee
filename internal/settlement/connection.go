package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCConnection 基于 JSON-RPC 的 Connection 实现
type RPCConnection struct {
	ec            *ethclient.Client
	confirmations uint64
	pollInterval  time.Duration
}

func Dial(ctx context.Context, rawurl string, confirmations int) (*RPCConnection, error) {
	ec, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	if confirmations < 0 {
		confirmations = 0
	}
	return &RPCConnection{
		ec:            ec,
		confirmations: uint64(confirmations),
		pollInterval:  2 * time.Second,
	}, nil
}

func (c *RPCConnection) PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	return c.ec.PendingNonceAt(ctx, addr)
}

func (c *RPCConnection) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.ec.SuggestGasPrice(ctx)
}

func (c *RPCConnection) SendRawTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.ec.SendTransaction(ctx, tx)
}

// ConfirmTransaction 轮询回执，收到后再等 confirmations 个区块。
// "confirmed" 级别即：回执成功 + 配置的确认数。
func (c *RPCConnection) ConfirmTransaction(ctx context.Context, signature string, level Commitment) error {
	txHash := common.HexToHash(signature)

	receipt, err := c.awaitReceipt(ctx, txHash)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", signature)
	}
	if c.confirmations == 0 {
		return nil
	}

	target := new(big.Int).Add(receipt.BlockNumber, big.NewInt(int64(c.confirmations)))
	for {
		head, err := c.ec.BlockNumber(ctx)
		if err != nil {
			return err
		}
		if new(big.Int).SetUint64(head).Cmp(target) >= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *RPCConnection) awaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := c.ec.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}
