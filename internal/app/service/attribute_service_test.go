package service

import (
	"context"
	"testing"

	"github.com/movilstore/catalog-backend/internal/app/model"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeService_CreateGroup(t *testing.T) {
	s := setupServices(t, DeletePolicyBlock)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid name", "Display", nil},
		{"trimmed name", "  Battery  ", nil},
		{"blank name", "   ", apperrors.ErrValidation},
		{"empty name", "", apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := s.attributes.CreateGroup(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, group)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, group.ID)
			assert.Empty(t, group.Attributes)
		})
	}
}

func TestAttributeService_RenameGroup(t *testing.T) {
	s := setupServices(t, DeletePolicyBlock)
	ctx := context.Background()

	group, err := s.attributes.CreateGroup(ctx, "Screen")
	require.NoError(t, err)

	renamed, err := s.attributes.RenameGroup(ctx, group.ID, "Display")
	require.NoError(t, err)
	assert.Equal(t, "Display", renamed.Name)

	_, err = s.attributes.RenameGroup(ctx, group.ID+100, "Nope")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, apperrors.EntityAttributeGroup, notFound.Entity)

	_, err = s.attributes.RenameGroup(ctx, group.ID, " ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAttributeService_CreateAttribute(t *testing.T) {
	s := setupServices(t, DeletePolicyBlock)
	ctx := context.Background()

	group, err := s.attributes.CreateGroup(ctx, "Display")
	require.NoError(t, err)

	attr, err := s.attributes.CreateAttribute(ctx, AttributeInput{Name: "Size", GroupID: group.ID, Order: 0})
	require.NoError(t, err)
	assert.NotZero(t, attr.ID)

	_, err = s.attributes.CreateAttribute(ctx, AttributeInput{Name: "", GroupID: group.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.attributes.CreateAttribute(ctx, AttributeInput{Name: "Size", GroupID: 404})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.attributes.CreateAttribute(ctx, AttributeInput{Name: "Size"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	groups, err := s.attributes.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Attributes, 1)
	assert.Equal(t, "Size", groups[0].Attributes[0].Name)
}

func TestAttributeService_UpdateAttribute(t *testing.T) {
	s := setupServices(t, DeletePolicyBlock)
	ctx := context.Background()

	general, err := s.attributes.CreateGroup(ctx, "General")
	require.NoError(t, err)
	network, err := s.attributes.CreateGroup(ctx, "Network")
	require.NoError(t, err)
	attr, err := s.attributes.CreateAttribute(ctx, AttributeInput{Name: "5g", GroupID: general.ID})
	require.NoError(t, err)

	name, order := "5G", 2
	updated, err := s.attributes.UpdateAttribute(ctx, attr.ID, AttributeUpdate{Name: &name, Order: &order, GroupID: &network.ID})
	require.NoError(t, err)
	assert.Equal(t, "5G", updated.Name)
	assert.Equal(t, 2, updated.Order)
	assert.Equal(t, network.ID, updated.AttributeGroupID)

	missing := uint(999)
	_, err = s.attributes.UpdateAttribute(ctx, attr.ID, AttributeUpdate{GroupID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.attributes.UpdateAttribute(ctx, 999, AttributeUpdate{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	inNetwork, err := s.attributes.ListAttributesByGroup(ctx, network.ID)
	require.NoError(t, err)
	assert.Len(t, inNetwork, 1)
}

// seedValue stores one product value for attr without going through the
// product service.
func seedValue(t *testing.T, s *catalogServices, attr *model.Attribute, code string) *model.Product {
	sub := s.seedSubcategory(t, "Phones", "Android "+code)
	product := &model.Product{
		Name: "Phone " + code, Code: code, Price: 100, IsActive: true,
		Subcategories:   []model.ProductSubcategory{{SubcategoryID: sub.ID}},
		AttributeValues: []model.ProductAttributeValue{{AttributeID: attr.ID, Value: "x"}},
	}
	require.NoError(t, s.productRepo.Create(context.Background(), product))
	return product
}

func TestAttributeService_Delete_BlockPolicy(t *testing.T) {
	s := setupServices(t, DeletePolicyBlock)
	ctx := context.Background()

	group, err := s.attributes.CreateGroup(ctx, "Battery")
	require.NoError(t, err)
	attr, err := s.attributes.CreateAttribute(ctx, AttributeInput{Name: "Capacity", GroupID: group.ID})
	require.NoError(t, err)
	product := seedValue(t, s, attr, "P-1")

	err = s.attributes.DeleteGroup(ctx, group.ID)
	var integrity *apperrors.ReferentialIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, int64(1), integrity.References)

	err = s.attributes.DeleteAttribute(ctx, attr.ID)
	require.ErrorIs(t, err, apperrors.ErrReferentialIntegrity)

	// once the only holder is gone the attribute, then the group, can go
	require.NoError(t, s.products.Delete(ctx, product.ID))
	require.NoError(t, s.attributes.DeleteAttribute(ctx, attr.ID))
	require.NoError(t, s.attributes.DeleteGroup(ctx, group.ID))

	_, err = s.attributes.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = s.attributes.DeleteGroup(ctx, group.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAttributeService_Delete_CascadePolicy(t *testing.T) {
	s := setupServices(t, DeletePolicyCascade)
	ctx := context.Background()

	group, err := s.attributes.CreateGroup(ctx, "Battery")
	require.NoError(t, err)
	attr, err := s.attributes.CreateAttribute(ctx, AttributeInput{Name: "Capacity", GroupID: group.ID})
	require.NoError(t, err)
	product := seedValue(t, s, attr, "P-1")

	require.NoError(t, s.attributes.DeleteGroup(ctx, group.ID))

	loaded, err := s.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.AttributeValues)

	groups, err := s.attributes.ListGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
