package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// TimelineRepository 两本台账：聚合时间线（自己的 + 扇入的）与仅直发的
// user_timeline。写入幂等（同一 user+item 重复投递不报错）。
type TimelineRepository interface {
	Append(ctx context.Context, e *model.TimelineEntry) error
	AppendDirect(ctx context.Context, e *model.UserTimelineEntry) error
	// Page 按 score 降序取一页；before==0 表示从最新开始
	Page(ctx context.Context, userID string, before int64, limit int) ([]*model.TimelineEntry, error)
	PageDirect(ctx context.Context, userID string, before int64, limit int) ([]*model.UserTimelineEntry, error)
	// DeleteByItem 反向索引扫描：删除全部引用该 item 的条目（两本台账）
	DeleteByItem(ctx context.Context, itemID string) error
	// DeleteByUser 清空某用户的两本台账（用户墓碑化时）
	DeleteByUser(ctx context.Context, userID string) error
}

type timelineRepository struct {
	db *gorm.DB
}

func NewTimelineRepository(db *gorm.DB) TimelineRepository { return &timelineRepository{db: db} }

func (r *timelineRepository) Append(ctx context.Context, e *model.TimelineEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

func (r *timelineRepository) AppendDirect(ctx context.Context, e *model.UserTimelineEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e).Error
}

func (r *timelineRepository) Page(ctx context.Context, userID string, before int64, limit int) ([]*model.TimelineEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if before > 0 {
		q = q.Where("score < ?", before)
	}
	var res []*model.TimelineEntry
	err := q.Order("score DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *timelineRepository) PageDirect(ctx context.Context, userID string, before int64, limit int) ([]*model.UserTimelineEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if before > 0 {
		q = q.Where("score < ?", before)
	}
	var res []*model.UserTimelineEntry
	err := q.Order("score DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *timelineRepository) DeleteByItem(ctx context.Context, itemID string) error {
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).
		Delete(&model.TimelineEntry{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("item_id = ?", itemID).
		Delete(&model.UserTimelineEntry{}).Error
}

func (r *timelineRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&model.TimelineEntry{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&model.UserTimelineEntry{}).Error
}
