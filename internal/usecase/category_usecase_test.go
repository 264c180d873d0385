package usecase_test

import (
	"context"
	"testing"

	"techmart/internal/domain/model"
	repo "techmart/internal/repository"
	"techmart/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCategoryUsecase_Create_SlugFromEnglishName(t *testing.T) {
	cases := []struct {
		nameEn string
		want   string
	}{
		{"Audio & Headphones", "audio-headphones"},
		{"Smart   Home", "smart-home"},
		{"Laptops", "laptops"},
		{"  Gaming Gear!  ", "gaming-gear"},
	}

	for _, tc := range cases {
		categories := new(CategoryRepoMock)
		tx := new(TxManagerMock)

		categories.On("Create", mock.Anything, mock.MatchedBy(func(c model.Category) bool {
			return c.Slug == tc.want
		})).Return(model.Category{ID: 1, NameEn: tc.nameEn, Slug: tc.want}, nil)

		uc := usecase.NewCategoryUsecase(categories, tx)

		out, err := uc.Create(context.Background(), "admin-1", usecase.CategoryInput{
			NameEn: tc.nameEn,
			NameID: "Nama",
		})
		assert.NoError(t, err, "nameEn=%q", tc.nameEn)
		assert.Equal(t, tc.want, out.Slug, "nameEn=%q", tc.nameEn)
		categories.AssertExpectations(t)
	}
}

func TestCategoryUsecase_Create_RequiresBothNames(t *testing.T) {
	categories := new(CategoryRepoMock)
	tx := new(TxManagerMock)
	uc := usecase.NewCategoryUsecase(categories, tx)

	_, err := uc.Create(context.Background(), "admin-1", usecase.CategoryInput{NameEn: "Laptops"})
	assertErrContains(t, err, "Name (English and Indonesian) is required")

	categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryUsecase_List_LocalizedName(t *testing.T) {
	categories := new(CategoryRepoMock)
	tx := new(TxManagerMock)

	categories.On("List", mock.Anything, mock.MatchedBy(func(q repo.CategoryListQuery) bool {
		return q.Locale == "id"
	})).Return([]model.Category{
		{ID: 1, NameEn: "Laptops", NameID: "Laptop", Slug: "laptops"},
	}, nil)

	uc := usecase.NewCategoryUsecase(categories, tx)

	outs, err := uc.List(context.Background(), "id", "")
	assert.NoError(t, err)
	if assert.Equal(t, 1, len(outs)) {
		assert.Equal(t, "Laptop", outs[0].Name)
	}
}

func TestCategoryUsecase_Delete_NotFound(t *testing.T) {
	tx := new(TxManagerMock)
	categoriesRepo := new(CategoryRepoMock)
	txCategories := new(CategoryRepoMock)

	tx.Repos = &TxReposMock{categories: txCategories}
	tx.On("WithinTx", mock.Anything).Return(nil)

	txCategories.On("Delete", mock.Anything, int64(12)).Return(repo.ErrNotFound)

	uc := usecase.NewCategoryUsecase(categoriesRepo, tx)

	err := uc.Delete(context.Background(), "admin-1", 12)
	assertErrContains(t, err, "not found")
}
