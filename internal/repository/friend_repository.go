package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type FriendRepository interface {
	// Create 写入 A→B 与 B→A 两条有向行，返回两行
	Create(ctx context.Context, userID, otherID string) (*model.Friend, *model.Friend, error)
	Delete(ctx context.Context, userID, otherID string) error
	// Get 按方向取 A→B 行
	Get(ctx context.Context, userID, otherID string) (*model.Friend, error)
	GetByID(ctx context.Context, id string) (*model.Friend, error)
	Exists(ctx context.Context, userID, otherID string) (bool, time.Time, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Friend, error)
}

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository { return &friendRepository{db: db} }

// Create 两行在同一事务内写入，中途失败整体回滚，不留单向好友
func (r *friendRepository) Create(ctx context.Context, userID, otherID string) (*model.Friend, *model.Friend, error) {
	now := time.Now()
	forward := &model.Friend{ID: uuid.New().String(), UserID: userID, OtherID: otherID, CreatedAt: now}
	reverse := &model.Friend{ID: uuid.New().String(), UserID: otherID, OtherID: userID, CreatedAt: now}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(forward).Error; err != nil {
			return err
		}
		return tx.Create(reverse).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return forward, reverse, nil
}

func (r *friendRepository) Delete(ctx context.Context, userID, otherID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND other_id = ?", userID, otherID).
			Delete(&model.Friend{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND other_id = ?", otherID, userID).
			Delete(&model.Friend{}).Error
	})
}

func (r *friendRepository) Get(ctx context.Context, userID, otherID string) (*model.Friend, error) {
	var f model.Friend
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND other_id = ?", userID, otherID).
		First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendRepository) GetByID(ctx context.Context, id string) (*model.Friend, error) {
	var f model.Friend
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendRepository) Exists(ctx context.Context, userID, otherID string) (bool, time.Time, error) {
	f, err := r.Get(ctx, userID, otherID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, time.Time{}, nil
		}
		return false, time.Time{}, err
	}
	return true, f.CreatedAt, nil
}

func (r *friendRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Friend, error) {
	var res []*model.Friend
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}
