package repository

import (
	"context"
	"errors"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開一覧（is_activeのみ、新着順）
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	qb := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	// 検索はlocale側の名前カラムに対して行う
	if q.Search != "" {
		if q.Locale == model.LocaleID {
			qb = qb.Where("name_id ILIKE ?", "%"+q.Search+"%")
		} else {
			qb = qb.Where("name_en ILIKE ?", "%"+q.Search+"%")
		}
	}

	if q.CategoryID != nil {
		qb = qb.Where("category_id = ?", *q.CategoryID)
	}
	if q.FeaturedOnly {
		qb = qb.Where("is_featured = ?", true)
	}

	var items []model.Product
	err := qb.Order("created_at desc").Limit(limit).Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", p.ID).
		Select("name_en", "name_id", "description_en", "description_id",
			"price", "compare_price", "stock", "category_id", "image_url",
			"is_active", "is_featured").
		Updates(&p)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ソフト削除（注文明細から参照されている商品用）
func (r *ProductGormRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("is_active", false)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除（参照ゼロの商品だけ呼んでよい）
func (r *ProductGormRepository) HardDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
