package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/timekey"
)

var mentionRe = regexp.MustCompile(`@(\w+)`)

// FanoutEngine 写路径核心：每次 mutation 后把 item 指针投递到所有应见
// 时间线。Self 阶段失败对整个 mutation 致命；粉丝/提及阶段逐目标尽力
// 投递，失败记日志继续。
type FanoutEngine struct {
	timelines repository.TimelineRepository
	follows   repository.FollowRepository
	users     repository.UserRepository
	graph     *Graph
	keys      *timekey.Generator

	workers   int // 并发投递上限
	batchSize int // 粉丝分页大小
}

func NewFanoutEngine(
	timelines repository.TimelineRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	graph *Graph,
	workers, batchSize int,
) *FanoutEngine {
	if workers <= 0 {
		workers = 8
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &FanoutEngine{
		timelines: timelines,
		follows:   follows,
		users:     users,
		graph:     graph,
		keys:      &timekey.Generator{},
		workers:   workers,
		batchSize: batchSize,
	}
}

// DeliveryOutcome 单个目标的投递结果（可观测性用）
type DeliveryOutcome struct {
	Target string
	Err    error
}

// FanOut 投递一条新 item。阶段顺序：本人（必须成功，聚合 + 直发两本
// 台账）→ 粉丝（public，或 private 且互为好友）→ 帖子提及。personal
// 止步于本人。所有目标共用同一个 score，条目在各时间线中落在同一时刻。
func (e *FanoutEngine) FanOut(ctx context.Context, actorID string, itemType model.ItemType, itemID string, vis model.Visibility, content string) error {
	score := e.keys.Next()
	now := time.Now()

	// self stage: own feed must never miss the item
	if err := e.timelines.AppendDirect(ctx, &model.UserTimelineEntry{
		UserID: actorID, Score: score, ItemType: itemType, ItemID: itemID,
		Visibility: vis, CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("append to own user timeline: %w", err)
	}
	if err := e.timelines.Append(ctx, &model.TimelineEntry{
		UserID: actorID, Score: score, ItemType: itemType, ItemID: itemID,
		Visibility: vis, CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("append to own timeline: %w", err)
	}

	if vis == model.VisibilityPersonal {
		return nil
	}

	delivered := map[string]bool{actorID: true}
	var targets []string

	// follower stage: reverse scan in pages
	offset := 0
	for {
		fans, err := e.follows.ListFans(ctx, actorID, offset, e.batchSize)
		if err != nil {
			logger.Warn("follower scan failed, fan-out incomplete",
				zap.String("actor", actorID), zap.Error(err))
			break
		}
		if len(fans) == 0 {
			break
		}
		for _, f := range fans {
			if delivered[f.FanID] {
				continue
			}
			if e.permits(ctx, vis, actorID, f.FanID) {
				delivered[f.FanID] = true
				targets = append(targets, f.FanID)
			}
		}
		if len(fans) < e.batchSize {
			break
		}
		offset += e.batchSize
	}

	// mention stage, posts only; visibility judged from the mentioned
	// user's side of the friendship
	if itemType == model.ItemPost && content != "" {
		for _, username := range mentions(content) {
			u, err := e.users.GetByUsername(ctx, username)
			if err != nil {
				// unresolvable token, drop silently
				continue
			}
			if delivered[u.ID] {
				continue
			}
			if e.permits(ctx, vis, actorID, u.ID) {
				delivered[u.ID] = true
				targets = append(targets, u.ID)
			}
		}
	}

	for _, o := range e.deliver(ctx, targets, score, itemType, itemID, vis, now) {
		if o.Err != nil {
			logger.Warn("fan-out delivery failed",
				zap.String("target", o.Target),
				zap.String("item", itemID),
				zap.Error(o.Err))
		}
	}
	return nil
}

// permits 粉丝/提及阶段的可见性闸门；从 target 一侧判定好友关系
func (e *FanoutEngine) permits(ctx context.Context, vis model.Visibility, actorID, targetID string) bool {
	switch vis {
	case model.VisibilityPublic:
		return true
	case model.VisibilityPrivate:
		ok, _ := e.graph.IsFriend(ctx, targetID, actorID)
		return ok
	}
	return false
}

// deliver 有界并发投递，收集每目标结果
func (e *FanoutEngine) deliver(ctx context.Context, targets []string, score int64, itemType model.ItemType, itemID string, vis model.Visibility, now time.Time) []DeliveryOutcome {
	if len(targets) == 0 {
		return nil
	}
	outcomes := make([]DeliveryOutcome, len(targets))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, target string) {
			defer wg.Done()
			defer func() { <-sem }()
			err := e.timelines.Append(ctx, &model.TimelineEntry{
				UserID: target, Score: score, ItemType: itemType, ItemID: itemID,
				Visibility: vis, CreatedAt: now,
			})
			outcomes[i] = DeliveryOutcome{Target: target, Err: err}
		}(i, target)
	}
	wg.Wait()
	return outcomes
}

// RemoveItemEverywhere 扇出的镜像：按 item_id 反向扫描，清掉所有时间线
// 里指向它的条目（item 本身不动）。
func (e *FanoutEngine) RemoveItemEverywhere(ctx context.Context, itemID string) error {
	return e.timelines.DeleteByItem(ctx, itemID)
}

func mentions(content string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range mentionRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
