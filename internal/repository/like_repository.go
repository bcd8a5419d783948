package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	GetByID(ctx context.Context, id string) (*model.Like, error)
	GetByUserItem(ctx context.Context, userID, item string) (*model.Like, error)
	Remove(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	if like.ID == "" {
		like.ID = uuid.New().String()
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) GetByID(ctx context.Context, id string) (*model.Like, error) {
	var l model.Like
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *likeRepository) GetByUserItem(ctx context.Context, userID, item string) (*model.Like, error) {
	var l model.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item = ?", userID, item).
		First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *likeRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Like{}, "id = ?", id).Error
}

func (r *likeRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Like, error) {
	var res []*model.Like
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}
