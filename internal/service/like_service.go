package service

import (
	"context"
	"fmt"
	"time"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
)

type LikeService interface {
	Add(ctx context.Context, userID, item string, vis model.Visibility) (*model.Like, error)
	Get(ctx context.Context, viewerID, id string) (*model.Like, error)
	GetByUserItem(ctx context.Context, viewerID, userID, item string) (*model.Like, error)
	Remove(ctx context.Context, userID, item string) error
}

type likeService struct {
	likes  repository.LikeRepository
	users  repository.UserRepository
	graph  *Graph
	fanout *FanoutEngine
}

func NewLikeService(
	likes repository.LikeRepository,
	users repository.UserRepository,
	graph *Graph,
	fanout *FanoutEngine,
) LikeService {
	return &likeService{likes: likes, users: users, graph: graph, fanout: fanout}
}

func (s *likeService) Add(ctx context.Context, userID, item string, vis model.Visibility) (*model.Like, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, translate(err, "user "+userID)
	}
	if item == "" {
		return nil, fmt.Errorf("%w: item required", ErrValidation)
	}
	if vis == "" {
		vis = model.VisibilityPublic
	}
	if _, err := model.ParseVisibility(string(vis)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	l := &model.Like{UserID: userID, Item: item, Visibility: vis, CreatedAt: time.Now()}
	if err := s.likes.Create(ctx, l); err != nil {
		return nil, translate(err, "like")
	}
	if err := s.fanout.FanOut(ctx, userID, model.ItemLike, l.ID, vis, ""); err != nil {
		_ = s.likes.Remove(ctx, l.ID)
		return nil, err
	}
	return l, nil
}

func (s *likeService) Get(ctx context.Context, viewerID, id string) (*model.Like, error) {
	l, err := s.likes.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "like "+id)
	}
	return s.checkVisible(ctx, viewerID, l)
}

func (s *likeService) GetByUserItem(ctx context.Context, viewerID, userID, item string) (*model.Like, error) {
	l, err := s.likes.GetByUserItem(ctx, userID, item)
	if err != nil {
		return nil, translate(err, "like")
	}
	return s.checkVisible(ctx, viewerID, l)
}

func (s *likeService) checkVisible(ctx context.Context, viewerID string, l *model.Like) (*model.Like, error) {
	isFriend := false
	if viewerID != "" && viewerID != l.UserID {
		isFriend, _ = s.graph.IsFriend(ctx, viewerID, l.UserID)
	}
	ok, err := l.Visibility.CanSee(viewerID == l.UserID, isFriend)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: like %s", ErrForbidden, l.ID)
	}
	return l, nil
}

func (s *likeService) Remove(ctx context.Context, userID, item string) error {
	l, err := s.likes.GetByUserItem(ctx, userID, item)
	if err != nil {
		return translate(err, "like")
	}
	if err := s.likes.Remove(ctx, l.ID); err != nil {
		return err
	}
	return s.fanout.RemoveItemEverywhere(ctx, l.ID)
}
