package main

import (
	"context"
	"flag"
	"os"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Gina7879/tip-arena-v2/config"
	"github.com/Gina7879/tip-arena-v2/internal/room"
	"github.com/Gina7879/tip-arena-v2/internal/settlement"
	"github.com/Gina7879/tip-arena-v2/internal/utils"
)

// 输家结算客户端：登录 → 查房间 → 链上打款 → 等确认 → 标记完成。
// 私钥只在本进程内使用，服务端不托管资金。
func main() {
	config.Load()
	utils.Init()

	roomID := flag.String("room", "", "room id to settle")
	keyHex := flag.String("key", os.Getenv("TIPARENA_KEY"), "loser wallet private key (hex)")
	api := flag.String("api", "http://localhost:8080", "server base URL")
	flag.Parse()

	if *roomID == "" || *keyHex == "" {
		utils.Error.Fatal("both -room and -key (or TIPARENA_KEY) are required")
	}

	key, err := crypto.HexToECDSA(trimHexPrefix(*keyHex))
	if err != nil {
		utils.Error.Fatalf("bad private key: %v", err)
	}
	wallet := settlement.NewLocalWalletFromKey(key, config.C.Chain.ChainID)

	ctx := context.Background()

	cli := room.NewClient(*api)
	if err := cli.Login(ctx, key); err != nil {
		utils.Error.Fatalf("wallet login failed: %v", err)
	}

	conn, err := settlement.Dial(ctx, config.C.Chain.RPCURL, config.C.Chain.Confirmations)
	if err != nil {
		utils.Error.Fatalf("chain dial failed: %v", err)
	}

	svc := settlement.NewService(cli, conn)
	res, err := svc.Settle(ctx, wallet, *roomID)
	if err != nil {
		utils.Error.Fatalf("settle failed: %v", err)
	}

	utils.Print.Info("赔付完成",
		"room", res.Room.ID,
		"game", res.Room.GameName,
		"tx", res.Signature,
		"poster", res.Poster.Caption,
	)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}
