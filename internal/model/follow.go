package model

import (
	"time"
)

// Follow 关注关系（FollowerID 关注 UserID，单向一行）
// Visibility 约束这条关注关系本身对谁可见。
type Follow struct {
	ID         string `json:"follow" gorm:"primaryKey;type:varchar(36)"`
	UserID     string `json:"user" gorm:"type:varchar(36);index:idx_follow_user;index:idx_follow_pair,unique;not null"`
	FollowerID string `json:"user_follower" gorm:"type:varchar(36);not null;index:idx_follow_pair,unique"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (user_id, follower_id)
	Visibility Visibility `json:"visibility" gorm:"type:varchar(16);not null;default:'public'"`
	CreatedAt  time.Time  `json:"since"`
}

func (Follow) TableName() string { return "follows" }
