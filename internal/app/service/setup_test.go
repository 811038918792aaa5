package service

import (
	"context"
	"testing"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	"github.com/movilstore/catalog-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogServices struct {
	db          *gorm.DB
	attributes  AttributeService
	categories  CategoryService
	products    ProductService
	catalog     CatalogService
	productRepo repository.ProductRepository
}

func setupServices(t *testing.T, policy DeletePolicy) *catalogServices {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	attributeRepo := repository.NewAttributeRepository(testDB, nil)
	categoryRepo := repository.NewCategoryRepository(testDB, nil)
	productRepo := repository.NewProductRepository(testDB)

	return &catalogServices{
		db:          testDB,
		attributes:  NewAttributeService(attributeRepo, policy),
		categories:  NewCategoryService(categoryRepo, policy),
		products:    NewProductService(productRepo, categoryRepo, attributeRepo),
		catalog:     NewCatalogService(productRepo, categoryRepo),
		productRepo: productRepo,
	}
}

// seedSubcategory creates "<category> - <subcategory>" and returns the child.
func (s *catalogServices) seedSubcategory(t *testing.T, category, subcategory string) *model.Subcategory {
	ctx := context.Background()

	var parent *model.Category
	tree, err := s.categories.Tree(ctx)
	require.NoError(t, err)
	for i := range tree {
		if tree[i].Name == category {
			parent = &tree[i]
		}
	}
	if parent == nil {
		parent, err = s.categories.CreateCategory(ctx, CategoryInput{Name: category})
		require.NoError(t, err)
	}

	sub, err := s.categories.CreateSubcategory(ctx, SubcategoryInput{Name: subcategory, CategoryID: parent.ID})
	require.NoError(t, err)
	return sub
}
