package service

import (
	"context"
	"fmt"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
)

// FollowService 关注关系（含冗余粉丝行维护与关注事件扇出）
type FollowService interface {
	Add(ctx context.Context, userID, followerID string, vis model.Visibility) (*model.Follow, error)
	Remove(ctx context.Context, userID, followerID string) error
	Get(ctx context.Context, viewerID, followID string) (*model.Follow, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFollowing(ctx context.Context, followerID string, page, pageSize int) ([]string, error)
}

type followService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	graph   *Graph
	fanout  *FanoutEngine
}

func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	graph *Graph,
	fanout *FanoutEngine,
) FollowService {
	return &followService{follows: follows, users: users, graph: graph, fanout: fanout}
}

func (s *followService) Add(ctx context.Context, userID, followerID string, vis model.Visibility) (*model.Follow, error) {
	if userID == followerID {
		return nil, ErrFollowSelf
	}
	if vis == "" {
		vis = model.VisibilityPublic
	}
	if _, err := model.ParseVisibility(string(vis)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, translate(err, "user "+userID)
	}
	if _, err := s.users.GetByID(ctx, followerID); err != nil {
		return nil, translate(err, "user "+followerID)
	}
	f, err := s.follows.Create(ctx, userID, followerID, vis)
	if err != nil {
		return nil, translate(err, "follow")
	}
	// 关注事件本身也是 item，以 follower 为 actor 扇出
	if err := s.fanout.FanOut(ctx, followerID, model.ItemFollow, f.ID, vis, ""); err != nil {
		_ = s.follows.Delete(ctx, userID, followerID)
		return nil, err
	}
	return f, nil
}

// Remove 重复取关是 NotFound，不是服务器错误
func (s *followService) Remove(ctx context.Context, userID, followerID string) error {
	f, err := s.follows.Get(ctx, userID, followerID)
	if err != nil {
		return translate(err, "follow")
	}
	if err := s.follows.Delete(ctx, userID, followerID); err != nil {
		return err
	}
	return s.fanout.RemoveItemEverywhere(ctx, f.ID)
}

func (s *followService) Get(ctx context.Context, viewerID, followID string) (*model.Follow, error) {
	f, err := s.follows.GetByID(ctx, followID)
	if err != nil {
		return nil, translate(err, "follow "+followID)
	}
	isParty := viewerID != "" && (viewerID == f.FollowerID || viewerID == f.UserID)
	isFriend := false
	if viewerID != "" && !isParty {
		isFriend, _ = s.graph.IsFriend(ctx, viewerID, f.FollowerID)
	}
	ok, err := f.Visibility.CanSee(isParty, isFriend)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: follow %s", ErrForbidden, followID)
	}
	return f, nil
}

func (s *followService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	fans, err := s.follows.ListFans(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(fans))
	for i, f := range fans {
		res[i] = f.FanID
	}
	return res, nil
}

func (s *followService) ListFollowing(ctx context.Context, followerID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	items, err := s.follows.ListFollowing(ctx, followerID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.UserID
	}
	return res, nil
}
