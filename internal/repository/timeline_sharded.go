package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// ShardedTimelineRepository 时间线分表实现：按 user_id 哈希路由到
// timeline_%02d / user_timeline_%02d。按 item 的反向删除没有分片键，
// 需要并发扫描所有分表。
type ShardedTimelineRepository struct {
	db     *gorm.DB
	shards int
}

func NewShardedTimelineRepository(db *gorm.DB, shards int) (*ShardedTimelineRepository, error) {
	if shards <= 0 {
		return nil, fmt.Errorf("shard count must be positive, got %d", shards)
	}
	return &ShardedTimelineRepository{db: db, shards: shards}, nil
}

// RouteByUser 根据用户ID路由到分表下标
func (r *ShardedTimelineRepository) RouteByUser(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(r.shards))
}

func timelineTable(idx int) string     { return fmt.Sprintf("timeline_%02d", idx) }
func userTimelineTable(idx int) string { return fmt.Sprintf("user_timeline_%02d", idx) }

func (r *ShardedTimelineRepository) Append(ctx context.Context, e *model.TimelineEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	tbl := timelineTable(r.RouteByUser(e.UserID))
	return r.db.WithContext(ctx).Table(tbl).
		Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

func (r *ShardedTimelineRepository) AppendDirect(ctx context.Context, e *model.UserTimelineEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	tbl := userTimelineTable(r.RouteByUser(e.UserID))
	return r.db.WithContext(ctx).Table(tbl).
		Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

// Page 精确路由：单个用户的台账只落在一个分表
func (r *ShardedTimelineRepository) Page(ctx context.Context, userID string, before int64, limit int) ([]*model.TimelineEntry, error) {
	q := r.db.WithContext(ctx).Table(timelineTable(r.RouteByUser(userID))).
		Where("user_id = ?", userID)
	if before > 0 {
		q = q.Where("score < ?", before)
	}
	var res []*model.TimelineEntry
	err := q.Order("score DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *ShardedTimelineRepository) PageDirect(ctx context.Context, userID string, before int64, limit int) ([]*model.UserTimelineEntry, error) {
	q := r.db.WithContext(ctx).Table(userTimelineTable(r.RouteByUser(userID))).
		Where("user_id = ?", userID)
	if before > 0 {
		q = q.Where("score < ?", before)
	}
	var res []*model.UserTimelineEntry
	err := q.Order("score DESC").Limit(limit).Find(&res).Error
	return res, err
}

// DeleteByItem 无分片键，并发扫全部分表
func (r *ShardedTimelineRepository) DeleteByItem(ctx context.Context, itemID string) error {
	var wg sync.WaitGroup
	errChan := make(chan error, r.shards*2)

	for idx := 0; idx < r.shards; idx++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := r.db.WithContext(ctx).Table(timelineTable(i)).
				Where("item_id = ?", itemID).
				Delete(&model.TimelineEntry{}).Error; err != nil {
				errChan <- err
			}
			if err := r.db.WithContext(ctx).Table(userTimelineTable(i)).
				Where("item_id = ?", itemID).
				Delete(&model.UserTimelineEntry{}).Error; err != nil {
				errChan <- err
			}
		}(idx)
	}

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return <-errChan
	}
	return nil
}

func (r *ShardedTimelineRepository) DeleteByUser(ctx context.Context, userID string) error {
	idx := r.RouteByUser(userID)
	if err := r.db.WithContext(ctx).Table(timelineTable(idx)).
		Where("user_id = ?", userID).
		Delete(&model.TimelineEntry{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Table(userTimelineTable(idx)).
		Where("user_id = ?", userID).
		Delete(&model.UserTimelineEntry{}).Error
}

// InitSchema 初始化所有分表结构（开发/基准环境用）。
// 不能直接对分表 AutoMigrate：模型里的索引名是全库唯一的，
// 多张分表会撞名，这里用带分表后缀的索引名建表。
func (r *ShardedTimelineRepository) InitSchema() error {
	for idx := 0; idx < r.shards; idx++ {
		for _, tbl := range []string{timelineTable(idx), userTimelineTable(idx)} {
			stmts := []string{
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
					id varchar(36) PRIMARY KEY,
					user_id varchar(36) NOT NULL,
					score bigint NOT NULL,
					item_type varchar(16) NOT NULL,
					item_id varchar(36) NOT NULL,
					visibility varchar(16) NOT NULL,
					created_at timestamp
				)`, tbl),
				fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user_score ON %s (user_id, score)`, tbl, tbl),
				fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_user_item ON %s (user_id, item_id)`, tbl, tbl),
				fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_item ON %s (item_id)`, tbl, tbl),
			}
			for _, stmt := range stmts {
				if err := r.db.Exec(stmt).Error; err != nil {
					return fmt.Errorf("init %s: %w", tbl, err)
				}
			}
		}
	}
	return nil
}
