package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type FollowRepository interface {
	// Create 同事务写入 Follow 正向行与 Fan 反向冗余行
	Create(ctx context.Context, userID, followerID string, vis model.Visibility) (*model.Follow, error)
	Delete(ctx context.Context, userID, followerID string) error
	// Get 取 follower → user 的关注行（含可见性与时间）
	Get(ctx context.Context, userID, followerID string) (*model.Follow, error)
	GetByID(ctx context.Context, id string) (*model.Follow, error)
	// ListFans 反向扫描：UserID 的粉丝分页（扇出用）
	ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error)
	ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, userID, followerID string, vis model.Visibility) (*model.Follow, error) {
	now := time.Now()
	f := &model.Follow{
		ID:         uuid.New().String(),
		UserID:     userID,
		FollowerID: followerID,
		Visibility: vis,
		CreatedAt:  now,
	}
	fan := &model.Fan{
		ID:        uuid.New().String(),
		UserID:    userID,
		FanID:     followerID,
		FollowID:  f.ID,
		CreatedAt: now,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return tx.Create(fan).Error
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *followRepository) Delete(ctx context.Context, userID, followerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND follower_id = ?", userID, followerID).
			Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND fan_id = ?", userID, followerID).
			Delete(&model.Fan{}).Error
	})
}

func (r *followRepository) Get(ctx context.Context, userID, followerID string) (*model.Follow, error) {
	var f model.Follow
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", userID, followerID).
		First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *followRepository) GetByID(ctx context.Context, id string) (*model.Follow, error) {
	var f model.Follow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *followRepository) ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error) {
	var res []*model.Fan
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", followerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}
