package model

import (
	"time"

	"gorm.io/gorm"
)

// Like 点赞（Item 为被赞对象的自由标识，如 URL）
type Like struct {
	ID         string         `json:"like" gorm:"primaryKey;type:varchar(36)"`
	UserID     string         `json:"user" gorm:"type:varchar(36);index:idx_like_user;index:idx_like_pair,unique;not null"`
	Item       string         `json:"item" gorm:"type:varchar(255);not null;index:idx_like_pair,unique"`
	Visibility Visibility     `json:"visibility" gorm:"type:varchar(16);not null;default:'public'"`
	CreatedAt  time.Time      `json:"since"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Like) TableName() string { return "likes" }
