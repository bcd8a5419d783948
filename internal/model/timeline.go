package model

import (
	"fmt"
	"time"
)

// ItemType 时间线条目指向的 item 类型（随条目持久化，保持稳定）
type ItemType string

const (
	ItemPost   ItemType = "post"
	ItemLike   ItemType = "like"
	ItemFriend ItemType = "friend"
	ItemFollow ItemType = "follow"
)

// ParseItemType validates a stored type tag.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemPost, ItemLike, ItemFriend, ItemFollow:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// TimelineEntry 聚合时间线条目（自己的 + 扇入的），按 (user_id, score) 排序。
// Score 单调递增、全局可比；Visibility 是写入时刻的快照，读取时必须重
// 新校验当前可见性。
type TimelineEntry struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `gorm:"type:varchar(36);index:idx_timeline_user_score;uniqueIndex:ux_timeline_user_item;not null"`
	Score      int64      `gorm:"index:idx_timeline_user_score;not null"`
	ItemType   ItemType   `gorm:"type:varchar(16);not null"`
	ItemID     string     `gorm:"type:varchar(36);index:idx_timeline_item;uniqueIndex:ux_timeline_user_item;not null"`
	Visibility Visibility `gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time
}

func (TimelineEntry) TableName() string { return "timeline" }

// UserTimelineEntry 仅本人直发条目（Self 阶段写入），供 profile 流使用。
type UserTimelineEntry struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `gorm:"type:varchar(36);index:idx_user_timeline_user_score;uniqueIndex:ux_user_timeline_user_item;not null"`
	Score      int64      `gorm:"index:idx_user_timeline_user_score;not null"`
	ItemType   ItemType   `gorm:"type:varchar(16);not null"`
	ItemID     string     `gorm:"type:varchar(36);index:idx_user_timeline_item;uniqueIndex:ux_user_timeline_user_item;not null"`
	Visibility Visibility `gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time
}

func (UserTimelineEntry) TableName() string { return "user_timeline" }
