package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/sanitize"
)

type PostService interface {
	Add(ctx context.Context, userID, content string, vis model.Visibility, altID *string, posted time.Time) (*model.Post, error)
	// Get 单条直取：不可见返回 Forbidden（与 feed 的静默丢弃不同）
	Get(ctx context.Context, viewerID, id string) (*model.Post, error)
	GetByAltID(ctx context.Context, viewerID, altID string) (*model.Post, error)
	Update(ctx context.Context, id, content string, vis model.Visibility) (*model.Post, error)
	Remove(ctx context.Context, id string) error
}

type postService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	graph  *Graph
	fanout *FanoutEngine
	cache  *cache.EntityCache
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	graph *Graph,
	fanout *FanoutEngine,
	entityCache *cache.EntityCache,
) PostService {
	return &postService{posts: posts, users: users, graph: graph, fanout: fanout, cache: entityCache}
}

func (s *postService) Add(ctx context.Context, userID, content string, vis model.Visibility, altID *string, posted time.Time) (*model.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, translate(err, "user "+userID)
	}
	if _, err := model.ParseVisibility(string(vis)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	clean := sanitize.Content(content)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty content", ErrValidation)
	}
	p := &model.Post{
		UserID:     userID,
		Content:    clean,
		AltID:      altID,
		Visibility: vis,
		CreatedAt:  posted,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, translate(err, "post")
	}
	if err := s.fanout.FanOut(ctx, userID, model.ItemPost, p.ID, vis, clean); err != nil {
		// self 阶段失败：整个 mutation 作废，回收已落库的帖子
		if rmErr := s.posts.Remove(ctx, p.ID); rmErr != nil {
			logger.Error("post rollback after failed fan-out",
				zap.String("post", p.ID), zap.Error(rmErr))
		}
		return nil, err
	}
	return p, nil
}

func (s *postService) Get(ctx context.Context, viewerID, id string) (*model.Post, error) {
	p, ok := s.cache.GetPost(ctx, id)
	if !ok {
		var err error
		p, err = s.posts.GetByID(ctx, id)
		if err != nil {
			return nil, translate(err, "post "+id)
		}
		s.cache.SetPost(ctx, p)
	}
	return s.checkVisible(ctx, viewerID, p)
}

func (s *postService) GetByAltID(ctx context.Context, viewerID, altID string) (*model.Post, error) {
	p, err := s.posts.GetByAltID(ctx, altID)
	if err != nil {
		return nil, translate(err, "post altid "+altID)
	}
	return s.checkVisible(ctx, viewerID, p)
}

func (s *postService) checkVisible(ctx context.Context, viewerID string, p *model.Post) (*model.Post, error) {
	isFriend := false
	if viewerID != "" && viewerID != p.UserID {
		isFriend, _ = s.graph.IsFriend(ctx, viewerID, p.UserID)
	}
	ok, err := p.Visibility.CanSee(viewerID == p.UserID, isFriend)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: post %s", ErrForbidden, p.ID)
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, id, content string, vis model.Visibility) (*model.Post, error) {
	if _, err := model.ParseVisibility(string(vis)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	clean := sanitize.Content(content)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty content", ErrValidation)
	}
	// 先失效再更新：时间线快照不动，读取按当前标签重新过滤
	s.cache.InvalidatePost(ctx, id)
	if err := s.posts.Update(ctx, id, clean, vis); err != nil {
		return nil, translate(err, "post "+id)
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "post "+id)
	}
	return p, nil
}

func (s *postService) Remove(ctx context.Context, id string) error {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return translate(err, "post "+id)
	}
	s.cache.InvalidatePost(ctx, id)
	if err := s.posts.Remove(ctx, id); err != nil {
		return err
	}
	return s.fanout.RemoveItemEverywhere(ctx, id)
}
