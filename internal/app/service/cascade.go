package service

import "github.com/movilstore/catalog-backend/internal/app/model"

// ValidSubcategories returns the children of categoryID in tree. An unknown
// category has no children.
func ValidSubcategories(categoryID uint, tree []model.Category) []model.Subcategory {
	for _, category := range tree {
		if category.ID == categoryID {
			return category.Subcategories
		}
	}
	return nil
}

// SelectCategory applies a category change to a subcategory selection: only
// selected ids that are children of categoryID survive, in selection order.
func SelectCategory(selection []uint, categoryID uint, tree []model.Category) []uint {
	children := make(map[uint]struct{})
	for _, sub := range ValidSubcategories(categoryID, tree) {
		children[sub.ID] = struct{}{}
	}

	kept := []uint{}
	for _, id := range selection {
		if _, ok := children[id]; ok {
			kept = append(kept, id)
			delete(children, id)
		}
	}
	return kept
}

func findCategory(categoryID uint, tree []model.Category) (*model.Category, bool) {
	for i := range tree {
		if tree[i].ID == categoryID {
			return &tree[i], true
		}
	}
	return nil, false
}

func subcategoryIDs(subcategories []model.Subcategory) []uint {
	ids := make([]uint, 0, len(subcategories))
	for _, sub := range subcategories {
		ids = append(ids, sub.ID)
	}
	return ids
}
