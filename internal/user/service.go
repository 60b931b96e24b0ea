package user

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (User, error) {
	if chatID <= 0 {
		return User{}, ErrInvalidChatID
	}
	return s.repo.GetByChatID(ctx, chatID)
}

// GetOrCreate resolves the user behind chatID, registering an account with
// an empty profile on first contact. Calling it repeatedly is safe.
func (s *Service) GetOrCreate(ctx context.Context, chatID int64) (User, error) {
	if chatID <= 0 {
		return User{}, ErrInvalidChatID
	}
	u, _, err := s.repo.GetOrCreate(ctx, chatID, s.now())
	return u, err
}

// Register creates a user explicitly and fails if the chat id is taken.
func (s *Service) Register(ctx context.Context, u User) (User, error) {
	if u.ChatID <= 0 {
		return User{}, ErrInvalidChatID
	}
	now := s.now()
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.Address = strings.TrimSpace(u.Address)
	u.Phone = strings.TrimSpace(u.Phone)
	u.CreatedAt = now
	u.UpdatedAt = now
	return s.repo.Create(ctx, u)
}

func (s *Service) UpdateProfile(ctx context.Context, chatID int64, upd ProfileUpdate) (User, error) {
	existing, err := s.GetByChatID(ctx, chatID)
	if err != nil {
		return User{}, err
	}

	if upd.FirstName != nil {
		existing.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.Address != nil {
		existing.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.Phone != nil {
		existing.Phone = strings.TrimSpace(*upd.Phone)
	}
	existing.UpdatedAt = s.now()
	return s.repo.Update(ctx, existing)
}
