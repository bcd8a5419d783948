package model

import "time"

// Fan 粉丝关系（UserID 的粉丝是 FanID）冗余自 Follow，供扇出反向扫描
// 与 Follow 同事务写入；FollowID 关联正向行。
type Fan struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_fan_user;index:idx_fan_pair,unique;not null"`
	FanID     string `gorm:"type:varchar(36);not null;index:idx_fan_pair,unique"`
	FollowID  string `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
}

func (Fan) TableName() string { return "fans" }
