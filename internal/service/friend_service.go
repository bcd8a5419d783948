package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
)

type FriendService interface {
	// Add 建立对称好友关系（两条有向行），双方各自的时间线收到一条
	// friend item（personal：只停留在本人台账）
	Add(ctx context.Context, userID, otherID string) (*model.Friend, error)
	Remove(ctx context.Context, userID, otherID string) error
	Get(ctx context.Context, viewerID, friendID string) (*model.Friend, error)
	IsFriend(ctx context.Context, a, b string) (bool, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]*model.Friend, error)
}

type friendService struct {
	friends repository.FriendRepository
	users   repository.UserRepository
	fanout  *FanoutEngine
}

func NewFriendService(
	friends repository.FriendRepository,
	users repository.UserRepository,
	fanout *FanoutEngine,
) FriendService {
	return &friendService{friends: friends, users: users, fanout: fanout}
}

func (s *friendService) Add(ctx context.Context, userID, otherID string) (*model.Friend, error) {
	if userID == otherID {
		return nil, fmt.Errorf("%w: cannot befriend self", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, translate(err, "user "+userID)
	}
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		return nil, translate(err, "user "+otherID)
	}
	forward, reverse, err := s.friends.Create(ctx, userID, otherID)
	if err != nil {
		return nil, translate(err, "friendship")
	}
	// 各自的 self 阶段写入；任一失败则撤销整个关系
	if err := s.fanout.FanOut(ctx, userID, model.ItemFriend, forward.ID, model.VisibilityPersonal, ""); err != nil {
		_ = s.friends.Delete(ctx, userID, otherID)
		return nil, err
	}
	if err := s.fanout.FanOut(ctx, otherID, model.ItemFriend, reverse.ID, model.VisibilityPersonal, ""); err != nil {
		_ = s.friends.Delete(ctx, userID, otherID)
		_ = s.fanout.RemoveItemEverywhere(ctx, forward.ID)
		return nil, err
	}
	return forward, nil
}

func (s *friendService) Remove(ctx context.Context, userID, otherID string) error {
	forward, err := s.friends.Get(ctx, userID, otherID)
	if err != nil {
		return translate(err, "friendship")
	}
	reverse, err := s.friends.Get(ctx, otherID, userID)
	if err != nil {
		return translate(err, "friendship")
	}
	if err := s.friends.Delete(ctx, userID, otherID); err != nil {
		return err
	}
	if err := s.fanout.RemoveItemEverywhere(ctx, forward.ID); err != nil {
		return err
	}
	return s.fanout.RemoveItemEverywhere(ctx, reverse.ID)
}

// Get 好友关系只对当事双方可见
func (s *friendService) Get(ctx context.Context, viewerID, friendID string) (*model.Friend, error) {
	f, err := s.friends.GetByID(ctx, friendID)
	if err != nil {
		return nil, translate(err, "friend "+friendID)
	}
	if viewerID != f.UserID && viewerID != f.OtherID {
		return nil, fmt.Errorf("%w: friend %s", ErrForbidden, friendID)
	}
	return f, nil
}

func (s *friendService) IsFriend(ctx context.Context, a, b string) (bool, error) {
	ok, _, err := s.friends.Exists(ctx, a, b)
	return ok, err
}

func (s *friendService) List(ctx context.Context, userID string, page, pageSize int) ([]*model.Friend, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.friends.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
}
