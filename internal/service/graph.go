package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/logger"
)

// Graph 关系点查。查询错误按“不存在”处理（访问判定 fail-closed），
// 只记日志不上抛；写路径错误不走这里。
type Graph struct {
	friends repository.FriendRepository
	follows repository.FollowRepository
}

func NewGraph(friends repository.FriendRepository, follows repository.FollowRepository) *Graph {
	return &Graph{friends: friends, follows: follows}
}

// IsFriend A 和 B 是否好友；a==b 恒为真。匿名（空 id）恒为假。
func (g *Graph) IsFriend(ctx context.Context, a, b string) (bool, time.Time) {
	if a == "" || b == "" {
		return false, time.Time{}
	}
	if a == b {
		return true, time.Time{}
	}
	ok, since, err := g.friends.Exists(ctx, a, b)
	if err != nil {
		logger.Warn("friend lookup failed, treating as not-friend",
			zap.String("a", a), zap.String("b", b), zap.Error(err))
		return false, time.Time{}
	}
	return ok, since
}

// IsFollower follower 是否关注 owner；返回关注边自身的可见性标签。
func (g *Graph) IsFollower(ctx context.Context, owner, follower string) (bool, time.Time, model.Visibility) {
	if owner == "" || follower == "" {
		return false, time.Time{}, ""
	}
	if owner == follower {
		return true, time.Time{}, model.VisibilityPublic
	}
	f, err := g.follows.Get(ctx, owner, follower)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("follow lookup failed, treating as not-follower",
				zap.String("owner", owner), zap.String("follower", follower), zap.Error(err))
		}
		return false, time.Time{}, ""
	}
	return true, f.CreatedAt, f.Visibility
}
