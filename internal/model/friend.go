package model

import "time"

// Friend 好友关系（对称，落库为两条有向行：A→B 与 B→A，各有自己的 id）
// 对称不变式由写入方维护：A→B 存在则 B→A 必须存在。
type Friend struct {
	ID        string    `json:"friend" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user" gorm:"type:varchar(36);index:idx_friend_user;index:idx_friend_pair,unique;not null"`
	OtherID   string    `json:"user_friend" gorm:"type:varchar(36);not null;index:idx_friend_pair,unique"`
	CreatedAt time.Time `json:"since"`
}

func (Friend) TableName() string { return "friends" }
