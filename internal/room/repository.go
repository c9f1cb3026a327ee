package room

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("room not found")
	ErrValidation     = errors.New("invalid room fields")
	ErrAlreadySettled = errors.New("room already settled")
)

// Store 定义对 rooms 表的抽象操作
type Store interface {
	// Create 落库一条新房间记录（id/created_at 由上层生成好）
	Create(ctx context.Context, r *Room) error
	// ListActive 返回所有 active 房间，created_at 倒序（最新在前）
	ListActive(ctx context.Context) ([]Room, error)
	// GetByID 按 id 查询，不存在返回 ErrNotFound
	GetByID(ctx context.Context, id string) (*Room, error)
	// UpdateStatusCompleted 条件更新：仅当当前状态为 active 时翻转为 completed。
	// 已结算返回 ErrAlreadySettled，不存在返回 ErrNotFound。
	UpdateStatusCompleted(ctx context.Context, id string) error
}
