package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
)

// testEnv 把整个写/读路径搭在 sqlite 内存库 + miniredis 上
type testEnv struct {
	db *gorm.DB

	users     repository.UserRepository
	friends   repository.FriendRepository
	follows   repository.FollowRepository
	posts     repository.PostRepository
	likes     repository.LikeRepository
	timelines repository.TimelineRepository

	cache  *cache.EntityCache
	graph  *Graph
	engine *FanoutEngine

	userSvc   UserService
	postSvc   PostService
	likeSvc   LikeService
	friendSvc FriendService
	followSvc FollowService
	feed      *FeedAssembler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 是连接级的，连接池必须收敛到一条
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Friend{}, &model.Follow{}, &model.Fan{},
		&model.Post{}, &model.Like{}, &model.TimelineEntry{}, &model.UserTimelineEntry{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	e := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		friends:   repository.NewFriendRepository(db),
		follows:   repository.NewFollowRepository(db),
		posts:     repository.NewPostRepository(db),
		likes:     repository.NewLikeRepository(db),
		timelines: repository.NewTimelineRepository(db),
		cache:     cache.New(client, time.Minute),
	}
	e.graph = NewGraph(e.friends, e.follows)
	e.engine = NewFanoutEngine(e.timelines, e.follows, e.users, e.graph, 4, 10)
	e.userSvc = NewUserService(e.users, e.posts, e.likes, e.engine, e.cache)
	e.postSvc = NewPostService(e.posts, e.users, e.graph, e.engine, e.cache)
	e.likeSvc = NewLikeService(e.likes, e.users, e.graph, e.engine)
	e.friendSvc = NewFriendService(e.friends, e.users, e.engine)
	e.followSvc = NewFollowService(e.follows, e.users, e.graph, e.engine)
	e.feed = NewFeedAssembler(e.timelines, e.posts, e.likes, e.friends, e.follows,
		e.users, e.graph, e.cache)
	return e
}

func (e *testEnv) addUser(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.userSvc.Add(context.Background(), username, nil, nil)
	require.NoError(t, err)
	return u
}

func (e *testEnv) addPost(t *testing.T, userID, content string, vis model.Visibility) *model.Post {
	t.Helper()
	p, err := e.postSvc.Add(context.Background(), userID, content, vis, nil, time.Now())
	require.NoError(t, err)
	return p
}

// feedItemIDs 提取 feed 页里各 item 的主键，便于断言
func feedItemIDs(items []*FeedItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.Post != nil:
			ids = append(ids, it.Post.ID)
		case it.Like != nil:
			ids = append(ids, it.Like.ID)
		case it.Friend != nil:
			ids = append(ids, it.Friend.ID)
		case it.Follow != nil:
			ids = append(ids, it.Follow.ID)
		}
	}
	return ids
}
