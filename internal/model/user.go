package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 用户（软删除，时间线引用不悬空）
type User struct {
	ID        string            `json:"user" gorm:"primaryKey;type:varchar(36)"`
	Username  string            `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	AltID     *string           `json:"altid,omitempty" gorm:"type:varchar(128);uniqueIndex"`
	Userdata  datatypes.JSONMap `json:"userdata,omitempty"`
	CreatedAt time.Time         `json:"-"`
	UpdatedAt time.Time         `json:"-"`
	DeletedAt gorm.DeletedAt    `json:"-" gorm:"index"`
}

func (User) TableName() string { return "users" }
