package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gina7879/tip-arena-v2/config"
	"github.com/Gina7879/tip-arena-v2/internal/auth"
	"github.com/Gina7879/tip-arena-v2/internal/middleware"
	"github.com/Gina7879/tip-arena-v2/internal/realtime"
	"github.com/Gina7879/tip-arena-v2/internal/room"
	"github.com/Gina7879/tip-arena-v2/internal/storage"
	"github.com/Gina7879/tip-arena-v2/internal/utils"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化 Redis（nonce 存储）
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Postgres（rooms 表）
	//-------------------------------------------------------
	if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
		utils.Error.Fatalf("Postgres init failed: %v", err)
	}
	store := room.NewPostgresStore(storage.DB)
	if err := store.EnsureSchema(context.Background()); err != nil {
		utils.Error.Fatalf("rooms schema init failed: %v", err)
	}

	//-------------------------------------------------------
	// 3. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 4. 变更推送 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := realtime.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 5. 房间服务
	//-------------------------------------------------------
	svc := room.NewService(store, hub)
	rh := room.NewHandler(svc)

	//-------------------------------------------------------
	// 6. 钱包登录
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)
	nonces := auth.NewRedisNonceStore(storage.Rdb, 5*time.Minute)

	authGroup := r.Group("/auth")
	{
		ah := auth.NewHandler(nonces, secret)
		authGroup.GET("/nonce", ah.GetNonce)
		authGroup.POST("/nonce", ah.PostNonce)
		authGroup.POST("/login", ah.Login)
	}

	//-------------------------------------------------------
	// 7. 房间路由：读公开，写需要钱包登录
	//-------------------------------------------------------
	r.GET("/rooms", rh.List)
	r.GET("/rooms/:id", rh.Get)

	authd := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authd.GET("/ws", realtime.ServeWS(hub))
		authd.POST("/rooms", rh.Create)
		authd.POST("/rooms/:id/settled", rh.Settled)
	}

	//-------------------------------------------------------
	// 8. 启动服务器
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	r.Run(config.C.Server.Port)
}
