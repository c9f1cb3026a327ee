package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gina7879/tip-arena-v2/internal/realtime"
)

// ChangeBroadcaster 抽象掉 realtime.Hub，测试时换成 mock
type ChangeBroadcaster interface {
	PublishChange(ev realtime.ChangeEvent)
}

type Service struct {
	store Store
	hub   ChangeBroadcaster
}

func NewService(store Store, hub ChangeBroadcaster) *Service {
	return &Service{store: store, hub: hub}
}

// Create 校验表单后落库，新房间一律 active
func (s *Service) Create(ctx context.Context, ownerAddress string, req CreateRequest) (*Room, error) {
	if err := validate(ownerAddress, req); err != nil {
		return nil, err
	}

	r := &Room{
		ID:              uuid.NewString(),
		GameName:        strings.TrimSpace(req.GameName),
		PlayerCount:     req.PlayerCount,
		Rule:            req.Rule,
		AmountPerPerson: req.AmountPerPerson,
		OwnerAddress:    ownerAddress,
		Status:          StatusActive,
		ContactInfo:     req.ContactInfo,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	s.hub.PublishChange(realtime.ChangeEvent{
		Table: TableName,
		ID:    r.ID,
		Kind:  realtime.KindInsert,
	})
	return r, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Room, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Room, error) {
	return s.store.GetByID(ctx, id)
}

// Complete 结算落库入口：active -> completed，单向
func (s *Service) Complete(ctx context.Context, id string) error {
	if err := s.store.UpdateStatusCompleted(ctx, id); err != nil {
		return err
	}

	s.hub.PublishChange(realtime.ChangeEvent{
		Table: TableName,
		ID:    id,
		Kind:  realtime.KindUpdate,
	})
	return nil
}

func validate(ownerAddress string, req CreateRequest) error {
	if strings.TrimSpace(req.GameName) == "" {
		return fmt.Errorf("%w: game_name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Rule) == "" {
		return fmt.Errorf("%w: rule is required", ErrValidation)
	}
	if ownerAddress == "" {
		return fmt.Errorf("%w: owner_address is required", ErrValidation)
	}
	if req.PlayerCount < MinPlayers || req.PlayerCount > MaxPlayers {
		return fmt.Errorf("%w: player_count must be between %d and %d", ErrValidation, MinPlayers, MaxPlayers)
	}
	if req.AmountPerPerson < 0 {
		return fmt.Errorf("%w: amount_per_person must not be negative", ErrValidation)
	}
	return nil
}
