package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// NonceStore 一次性随机数存储，防重放
type NonceStore interface {
	Save(ctx context.Context, nonce string) error
	// Consume 原子取走；第二次取同一个 nonce 返回 false
	Consume(ctx context.Context, nonce string) (bool, error)
}

type redisNonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisNonceStore(rdb *redis.Client, ttl time.Duration) NonceStore {
	return &redisNonceStore{rdb: rdb, ttl: ttl}
}

func nonceKey(nonce string) string {
	return fmt.Sprintf("auth:nonce:%s", nonce)
}

func (s *redisNonceStore) Save(ctx context.Context, nonce string) error {
	return s.rdb.Set(ctx, nonceKey(nonce), "1", s.ttl).Err()
}

func (s *redisNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	n, err := s.rdb.Del(ctx, nonceKey(nonce)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (h *Handler) PostNonce(c *gin.Context) {
	h.issueNonce(c)
}

func (h *Handler) GetNonce(c *gin.Context) {
	h.issueNonce(c)
}

func (h *Handler) issueNonce(c *gin.Context) {
	nonce, err := generateNonce()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate nonce"})
		return
	}

	if err := h.nonces.Save(c.Request.Context(), nonce); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store nonce"})
		return
	}

	c.JSON(200, gin.H{"nonce": nonce})
}
