package room

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Gina7879/tip-arena-v2/internal/auth"
)

// Client 结算 CLI 走 HTTP API 访问房间表，实现 settlement.RoomStore
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Login 拿 nonce、用私钥做 personal_sign、换 JWT
func (c *Client) Login(ctx context.Context, key *ecdsa.PrivateKey) error {
	var nr struct {
		Nonce string `json:"nonce"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/nonce", nil, &nr); err != nil {
		return fmt.Errorf("fetch nonce: %w", err)
	}

	msg := auth.LoginMessagePrefix + nr.Nonce
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	hash := crypto.Keccak256Hash([]byte(prefix))

	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return fmt.Errorf("sign nonce: %w", err)
	}
	sig[64] += 27 // personal_sign 约定的 V 值

	body := map[string]string{
		"address":   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		"signature": "0x" + hex.EncodeToString(sig),
		"nonce":     nr.Nonce,
	}
	var lr struct {
		JWT string `json:"jwt"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &lr); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.token = lr.JWT
	return nil
}

// Create 发布房间，需要先 Login
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	var r Room
	if err := c.do(ctx, http.MethodPost, "/rooms", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*Room, error) {
	var r Room
	if err := c.do(ctx, http.MethodGet, "/rooms/"+id, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListActive(ctx context.Context) ([]Room, error) {
	var out struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out.Rooms, nil
}

func (c *Client) UpdateStatusCompleted(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+id+"/settled", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadySettled
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
