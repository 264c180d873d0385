package repository

import (
	"context"
	"errors"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) List(ctx context.Context, q repo.CategoryListQuery) ([]model.Category, error) {
	qb := r.db.WithContext(ctx).Model(&model.Category{})

	if q.Search != "" {
		if q.Locale == model.LocaleID {
			qb = qb.Where("name_id ILIKE ?", "%"+q.Search+"%")
		} else {
			qb = qb.Where("name_en ILIKE ?", "%"+q.Search+"%")
		}
	}

	var items []model.Category
	if err := qb.Order("created_at desc").Find(&items).Error; err != nil {
		return []model.Category{}, err
	}
	return items, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *CategoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", c.ID).
		Select("name_en", "name_id", "slug", "image").
		Updates(&c)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品側の参照はNULLに戻してから消す（ON DELETE SET NULL相当）
func (r *CategoryGormRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
