package service

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/cache"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/logger"
)

// FeedItem 反规范化后的一条 feed 内容
type FeedItem struct {
	Score        int64          `json:"_score"`
	Type         model.ItemType `json:"type"`
	Post         *model.Post    `json:"post,omitempty"`
	Like         *model.Like    `json:"like,omitempty"`
	Friend       *model.Friend  `json:"friend,omitempty"`
	Follow       *model.Follow  `json:"follow,omitempty"`
	Actor        *model.User    `json:"user"`
	OtherUser    *model.User    `json:"other_user,omitempty"`
	Since        string         `json:"since"`
	IsPost       bool           `json:"isPost"`
	IsLike       bool           `json:"isLike"`
	IsFriend     bool           `json:"isFriend"`
	IsFollow     bool           `json:"isFollow"`
	IsOwnersItem bool           `json:"isUsersItem"`
}

// FeedAssembler 读路径：翻台账、解指针、按当前可见性过滤、补全展示字段。
// 写入时的可见性快照只保证当时可投递，读取一律按 item 当前标签与
// viewer 当前关系重新判定。
type FeedAssembler struct {
	timelines repository.TimelineRepository
	posts     repository.PostRepository
	likes     repository.LikeRepository
	friends   repository.FriendRepository
	follows   repository.FollowRepository
	users     repository.UserRepository
	graph     *Graph
	cache     *cache.EntityCache
}

func NewFeedAssembler(
	timelines repository.TimelineRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	friends repository.FriendRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	graph *Graph,
	entityCache *cache.EntityCache,
) *FeedAssembler {
	return &FeedAssembler{
		timelines: timelines,
		posts:     posts,
		likes:     likes,
		friends:   friends,
		follows:   follows,
		users:     users,
		graph:     graph,
		cache:     entityCache,
	}
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// GetFeed owner 的聚合 feed（自己的 + 扇入的）。cursor==0 从最新开始；
// 返回下一页 cursor（nil 表示翻完）。
func (a *FeedAssembler) GetFeed(ctx context.Context, viewerID, ownerID string, cursor int64, pageSize int) ([]*FeedItem, *int64, error) {
	return a.assemble(ctx, viewerID, ownerID, cursor, pageSize, false)
}

// GetUserFeed 仅 owner 直发的条目（profile 页），来源是独立的直发台账。
func (a *FeedAssembler) GetUserFeed(ctx context.Context, viewerID, ownerID string, cursor int64, pageSize int) ([]*FeedItem, *int64, error) {
	return a.assemble(ctx, viewerID, ownerID, cursor, pageSize, true)
}

func (a *FeedAssembler) assemble(ctx context.Context, viewerID, ownerID string, cursor int64, pageSize int, directOnly bool) ([]*FeedItem, *int64, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	owner, err := a.getUser(ctx, ownerID)
	if err != nil {
		return nil, nil, translate(err, "user "+ownerID)
	}

	entries, err := a.pageEntries(ctx, ownerID, cursor, pageSize, directOnly)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return []*FeedItem{}, nil, nil
	}

	// 每 item-owner 的好友判定在页内只查一次
	friendWith := map[string]bool{}
	isFriendOf := func(itemOwner string) bool {
		if viewerID == "" {
			return false
		}
		if v, ok := friendWith[itemOwner]; ok {
			return v
		}
		ok, _ := a.graph.IsFriend(ctx, viewerID, itemOwner)
		friendWith[itemOwner] = ok
		return ok
	}

	items := make([]*FeedItem, 0, len(entries))
	for _, e := range entries {
		item := a.resolve(ctx, e, viewerID, ownerID, isFriendOf)
		if item != nil {
			items = append(items, item)
		}
	}

	if err := a.attachUsers(ctx, items, owner); err != nil {
		return nil, nil, err
	}

	// 游标按最后一条“考察过”的条目推进，而不是最后一条返回的
	var next *int64
	if len(entries) == pageSize {
		last := entries[len(entries)-1].Score
		next = &last
	}
	return items, next, nil
}

type ledgerEntry struct {
	Score    int64
	ItemType model.ItemType
	ItemID   string
}

func (a *FeedAssembler) pageEntries(ctx context.Context, ownerID string, cursor int64, limit int, directOnly bool) ([]ledgerEntry, error) {
	out := make([]ledgerEntry, 0, limit)
	if directOnly {
		rows, err := a.timelines.PageDirect(ctx, ownerID, cursor, limit)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, ledgerEntry{Score: r.Score, ItemType: r.ItemType, ItemID: r.ItemID})
		}
		return out, nil
	}
	rows, err := a.timelines.Page(ctx, ownerID, cursor, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, ledgerEntry{Score: r.Score, ItemType: r.ItemType, ItemID: r.ItemID})
	}
	return out, nil
}

// resolve 解出一条条目并做读时可见性判定；不通过或已删除返回 nil（静默丢弃）
func (a *FeedAssembler) resolve(ctx context.Context, e ledgerEntry, viewerID, ownerID string, isFriendOf func(string) bool) *FeedItem {
	switch e.ItemType {
	case model.ItemPost:
		p, err := a.getPost(ctx, e.ItemID)
		if err != nil {
			a.dropEntry(e, err)
			return nil
		}
		ok, err := p.Visibility.CanSee(viewerID == p.UserID, isFriendOf(p.UserID))
		if err != nil || !ok {
			return nil
		}
		return &FeedItem{
			Score: e.Score, Type: e.ItemType, Post: p, IsPost: true,
			Since:        humanize.Time(p.CreatedAt),
			IsOwnersItem: p.UserID == ownerID,
		}
	case model.ItemLike:
		l, err := a.likes.GetByID(ctx, e.ItemID)
		if err != nil {
			a.dropEntry(e, err)
			return nil
		}
		ok, err := l.Visibility.CanSee(viewerID == l.UserID, isFriendOf(l.UserID))
		if err != nil || !ok {
			return nil
		}
		return &FeedItem{
			Score: e.Score, Type: e.ItemType, Like: l, IsLike: true,
			Since:        humanize.Time(l.CreatedAt),
			IsOwnersItem: l.UserID == ownerID,
		}
	case model.ItemFriend:
		f, err := a.friends.GetByID(ctx, e.ItemID)
		if err != nil {
			a.dropEntry(e, err)
			return nil
		}
		// 好友关系等同 personal：只有当事双方可见
		if viewerID != f.UserID && viewerID != f.OtherID {
			return nil
		}
		return &FeedItem{
			Score: e.Score, Type: e.ItemType, Friend: f, IsFriend: true,
			Since:        humanize.Time(f.CreatedAt),
			IsOwnersItem: f.UserID == ownerID,
		}
	case model.ItemFollow:
		f, err := a.follows.GetByID(ctx, e.ItemID)
		if err != nil {
			a.dropEntry(e, err)
			return nil
		}
		isParty := viewerID != "" && (viewerID == f.FollowerID || viewerID == f.UserID)
		ok, err := f.Visibility.CanSee(isParty, isFriendOf(f.FollowerID))
		if err != nil || !ok {
			return nil
		}
		return &FeedItem{
			Score: e.Score, Type: e.ItemType, Follow: f, IsFollow: true,
			Since:        humanize.Time(f.CreatedAt),
			IsOwnersItem: f.FollowerID == ownerID,
		}
	}
	logger.Warn("timeline entry with unknown item type, dropping",
		zap.String("type", string(e.ItemType)), zap.String("item", e.ItemID))
	return nil
}

func (a *FeedAssembler) dropEntry(e ledgerEntry, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// item 已软删，条目自然消失
		return
	}
	logger.Warn("feed item resolution failed, dropping entry",
		zap.String("item", e.ItemID), zap.Error(err))
}

// attachUsers 批量把 actor id 解成用户对象；owner 直接复用已查对象
func (a *FeedAssembler) attachUsers(ctx context.Context, items []*FeedItem, owner *model.User) error {
	need := map[string]bool{}
	collect := func(id string) {
		if id != "" && id != owner.ID {
			need[id] = true
		}
	}
	for _, it := range items {
		switch {
		case it.Post != nil:
			collect(it.Post.UserID)
		case it.Like != nil:
			collect(it.Like.UserID)
		case it.Friend != nil:
			collect(it.Friend.UserID)
			collect(it.Friend.OtherID)
		case it.Follow != nil:
			collect(it.Follow.FollowerID)
			collect(it.Follow.UserID)
		}
	}

	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	resolved, missing := a.cache.MGetUsers(ctx, ids)
	if len(missing) > 0 {
		users, err := a.users.GetByIDs(ctx, missing)
		if err != nil {
			return err
		}
		for _, u := range users {
			resolved[u.ID] = u
			a.cache.SetUser(ctx, u)
		}
	}
	resolved[owner.ID] = owner

	for _, it := range items {
		switch {
		case it.Post != nil:
			it.Actor = resolved[it.Post.UserID]
		case it.Like != nil:
			it.Actor = resolved[it.Like.UserID]
		case it.Friend != nil:
			it.Actor = resolved[it.Friend.UserID]
			it.OtherUser = resolved[it.Friend.OtherID]
		case it.Follow != nil:
			it.Actor = resolved[it.Follow.FollowerID]
			it.OtherUser = resolved[it.Follow.UserID]
		}
	}
	return nil
}

func (a *FeedAssembler) getUser(ctx context.Context, id string) (*model.User, error) {
	if u, ok := a.cache.GetUser(ctx, id); ok {
		return u, nil
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.cache.SetUser(ctx, u)
	return u, nil
}

func (a *FeedAssembler) getPost(ctx context.Context, id string) (*model.Post, error) {
	if p, ok := a.cache.GetPost(ctx, id); ok {
		return p, nil
	}
	p, err := a.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.cache.SetPost(ctx, p)
	return p, nil
}
