package model

import (
	"time"

	"gorm.io/gorm"
)

// Post 内容主体（入库前已消毒；@mention 在扇出时扫描）
type Post struct {
	ID         string         `json:"post" gorm:"primaryKey;type:varchar(36)"`
	UserID     string         `json:"user" gorm:"type:varchar(36);index:idx_post_user;not null"`
	Content    string         `json:"content" gorm:"type:text"`
	AltID      *string        `json:"altid,omitempty" gorm:"type:varchar(128);uniqueIndex"`
	Visibility Visibility     `json:"visibility" gorm:"type:varchar(16);not null;default:'public'"`
	CreatedAt  time.Time      `json:"posted"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Post) TableName() string { return "posts" }
