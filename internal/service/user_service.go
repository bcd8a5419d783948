package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
)

type UserService interface {
	Add(ctx context.Context, username string, altID *string, userdata map[string]interface{}) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByAltID(ctx context.Context, altID string) (*model.User, error)
	Update(ctx context.Context, id string, username string, altID *string, userdata map[string]interface{}) (*model.User, error)
	// Remove 墓碑化用户并级联清理其 item 的时间线引用
	Remove(ctx context.Context, id string) error
}

type userService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	likes  repository.LikeRepository
	fanout *FanoutEngine
	cache  *cache.EntityCache
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	fanout *FanoutEngine,
	entityCache *cache.EntityCache,
) UserService {
	return &userService{users: users, posts: posts, likes: likes, fanout: fanout, cache: entityCache}
}

func (s *userService) Add(ctx context.Context, username string, altID *string, userdata map[string]interface{}) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	}
	u := &model.User{Username: username, AltID: altID, Userdata: datatypes.JSONMap(userdata)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, translate(err, "user "+username)
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if u, ok := s.cache.GetUser(ctx, id); ok {
		return u, nil
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user "+id)
	}
	s.cache.SetUser(ctx, u)
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, translate(err, "user "+username)
	}
	return u, nil
}

func (s *userService) GetByAltID(ctx context.Context, altID string) (*model.User, error) {
	u, err := s.users.GetByAltID(ctx, altID)
	if err != nil {
		return nil, translate(err, "altid "+altID)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id string, username string, altID *string, userdata map[string]interface{}) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user "+id)
	}
	if username != "" {
		u.Username = username
	}
	if altID != nil {
		u.AltID = altID
	}
	if userdata != nil {
		u.Userdata = datatypes.JSONMap(userdata)
	}
	// 先失效缓存再落库，写确认时缓存已无旧值
	s.cache.InvalidateUser(ctx, id)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, translate(err, "user "+id)
	}
	return u, nil
}

func (s *userService) Remove(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return translate(err, "user "+id)
	}
	s.cache.InvalidateUser(ctx, id)

	// 本人的 item 逐个下线并清理全网时间线引用
	const page = 200
	for {
		posts, err := s.posts.ListByUser(ctx, id, 0, page)
		if err != nil {
			return err
		}
		for _, p := range posts {
			if err := s.posts.Remove(ctx, p.ID); err != nil {
				return err
			}
			s.cache.InvalidatePost(ctx, p.ID)
			if err := s.fanout.RemoveItemEverywhere(ctx, p.ID); err != nil {
				return err
			}
		}
		if len(posts) < page {
			break
		}
	}
	for {
		likes, err := s.likes.ListByUser(ctx, id, 0, page)
		if err != nil {
			return err
		}
		for _, l := range likes {
			if err := s.likes.Remove(ctx, l.ID); err != nil {
				return err
			}
			if err := s.fanout.RemoveItemEverywhere(ctx, l.ID); err != nil {
				return err
			}
		}
		if len(likes) < page {
			break
		}
	}

	if err := s.fanout.timelines.DeleteByUser(ctx, id); err != nil {
		return err
	}
	return translate(s.users.Remove(ctx, id), "user "+id)
}
