package repository

import (
	"context"
	"testing"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryTest(t *testing.T) (*gorm.DB, CategoryRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	return testDB, NewCategoryRepository(testDB, nil)
}

func TestCategoryRepository_Tree(t *testing.T) {
	testDB, repo := setupCategoryTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	phones := &model.Category{Name: "Phones", IsActive: true}
	tablets := &model.Category{Name: "Tablets", IsActive: true}
	require.NoError(t, repo.CreateCategory(ctx, phones))
	require.NoError(t, repo.CreateCategory(ctx, tablets))
	require.NoError(t, repo.CreateSubcategory(ctx, &model.Subcategory{Name: "iOS", CategoryID: phones.ID, IsActive: true}))
	require.NoError(t, repo.CreateSubcategory(ctx, &model.Subcategory{Name: "Android", CategoryID: phones.ID, IsActive: true}))

	tree, err := repo.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "Phones", tree[0].Name)
	require.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "Android", tree[0].Subcategories[0].Name)
	assert.Equal(t, "iOS", tree[0].Subcategories[1].Name)
	assert.Empty(t, tree[1].Subcategories)
}

func TestCategoryRepository_FindSubcategoryByID(t *testing.T) {
	testDB, repo := setupCategoryTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	phones := &model.Category{Name: "Phones", IsActive: true}
	require.NoError(t, repo.CreateCategory(ctx, phones))
	sub := &model.Subcategory{Name: "Android", CategoryID: phones.ID, IsActive: true}
	require.NoError(t, repo.CreateSubcategory(ctx, sub))

	found, err := repo.FindSubcategoryByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phones - Android", found.Label())

	_, err = repo.FindSubcategoryByID(ctx, sub.ID+10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryRepository_FindSubcategoriesByIDs_SkipsDeletedCategory(t *testing.T) {
	testDB, repo := setupCategoryTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	phones := &model.Category{Name: "Phones", IsActive: true}
	legacy := &model.Category{Name: "Legacy", IsActive: true}
	require.NoError(t, repo.CreateCategory(ctx, phones))
	require.NoError(t, repo.CreateCategory(ctx, legacy))
	android := &model.Subcategory{Name: "Android", CategoryID: phones.ID, IsActive: true}
	feature := &model.Subcategory{Name: "Feature phones", CategoryID: legacy.ID, IsActive: true}
	require.NoError(t, repo.CreateSubcategory(ctx, android))
	require.NoError(t, repo.CreateSubcategory(ctx, feature))

	require.NoError(t, testDB.Delete(legacy).Error)

	found, err := repo.FindSubcategoriesByIDs(ctx, []uint{android.ID, feature.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, android.ID, found[0].ID)
}

func TestCategoryRepository_DeleteCategory_Cascade(t *testing.T) {
	testDB, repo := setupCategoryTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	phones := &model.Category{Name: "Phones", IsActive: true}
	require.NoError(t, repo.CreateCategory(ctx, phones))
	android := &model.Subcategory{Name: "Android", CategoryID: phones.ID, IsActive: true}
	require.NoError(t, repo.CreateSubcategory(ctx, android))

	product := &model.Product{Name: "Pixel 8", Code: "GOO-P8", Price: 699, IsActive: true}
	require.NoError(t, testDB.Create(product).Error)
	require.NoError(t, testDB.Create(&model.ProductSubcategory{ProductID: product.ID, SubcategoryID: android.ID}).Error)

	links, err := repo.CountProductLinks(ctx, []uint{android.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), links)

	require.NoError(t, repo.DeleteCategory(ctx, phones.ID, true))

	subs, err := repo.CountSubcategories(ctx, phones.ID)
	require.NoError(t, err)
	assert.Zero(t, subs)

	links, err = repo.CountProductLinks(ctx, []uint{android.ID})
	require.NoError(t, err)
	assert.Zero(t, links)

	tree, err := repo.Tree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestCategoryRepository_UpdateSubcategory_Reparent(t *testing.T) {
	testDB, repo := setupCategoryTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	phones := &model.Category{Name: "Phones", IsActive: true}
	wearables := &model.Category{Name: "Wearables", IsActive: true}
	require.NoError(t, repo.CreateCategory(ctx, phones))
	require.NoError(t, repo.CreateCategory(ctx, wearables))
	watches := &model.Subcategory{Name: "Watches", CategoryID: phones.ID, IsActive: true}
	require.NoError(t, repo.CreateSubcategory(ctx, watches))

	watches.CategoryID = wearables.ID
	watches.IsActive = false
	require.NoError(t, repo.UpdateSubcategory(ctx, watches))

	children, err := repo.FindSubcategoriesByCategory(ctx, wearables.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.False(t, children[0].IsActive)

	children, err = repo.FindSubcategoriesByCategory(ctx, phones.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}
