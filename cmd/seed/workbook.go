package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

const (
	categoriesSheet = "Categories"
	attributesSheet = "Attributes"
)

// categoryRow is one line of the Categories sheet. A row without a
// subcategory only declares the category.
type categoryRow struct {
	Category               string
	CategoryDescription    string
	Subcategory            string
	SubcategoryDescription string
}

// attributeRow is one line of the Attributes sheet. A row without an
// attribute only declares the group.
type attributeRow struct {
	Group     string
	Attribute string
	Order     int
}

type workbook struct {
	Categories []categoryRow
	Attributes []attributeRow
}

type importSummary struct {
	Categories      int
	Subcategories   int
	AttributeGroups int
	Attributes      int
	Skipped         int
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// readWorkbook reads both sheets. The first row of each sheet is a header;
// a missing sheet is treated as empty.
func readWorkbook(f *excelize.File) (*workbook, error) {
	wb := &workbook{}

	if idx, _ := f.GetSheetIndex(categoriesSheet); idx >= 0 {
		rows, err := f.GetRows(categoriesSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", categoriesSheet, err)
		}
		for i, row := range rows {
			if i == 0 || cell(row, 0) == "" {
				continue
			}
			wb.Categories = append(wb.Categories, categoryRow{
				Category:               cell(row, 0),
				CategoryDescription:    cell(row, 1),
				Subcategory:            cell(row, 2),
				SubcategoryDescription: cell(row, 3),
			})
		}
	}

	if idx, _ := f.GetSheetIndex(attributesSheet); idx >= 0 {
		rows, err := f.GetRows(attributesSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", attributesSheet, err)
		}
		for i, row := range rows {
			if i == 0 || cell(row, 0) == "" {
				continue
			}
			order := 0
			if raw := cell(row, 2); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("%s row %d: invalid order %q", attributesSheet, i+1, raw)
				}
				order = n
			}
			wb.Attributes = append(wb.Attributes, attributeRow{
				Group:     cell(row, 0),
				Attribute: cell(row, 1),
				Order:     order,
			})
		}
	}

	return wb, nil
}

func nameKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "\x00"))
}

// importWorkbook creates what is missing through the services. Existing
// names are matched case-insensitively and skipped.
func importWorkbook(
	ctx context.Context,
	wb *workbook,
	categories service.CategoryService,
	attributes service.AttributeService,
) (importSummary, error) {
	var summary importSummary

	tree, err := categories.Tree(ctx)
	if err != nil {
		return summary, err
	}
	categoryIDs := make(map[string]uint, len(tree))
	subcategories := make(map[string]bool)
	for _, c := range tree {
		categoryIDs[nameKey(c.Name)] = c.ID
		for _, s := range c.Subcategories {
			subcategories[nameKey(c.Name, s.Name)] = true
		}
	}

	for _, row := range wb.Categories {
		categoryID, ok := categoryIDs[nameKey(row.Category)]
		if !ok {
			created, err := categories.CreateCategory(ctx, service.CategoryInput{
				Name:        row.Category,
				Description: row.CategoryDescription,
			})
			if err != nil {
				return summary, fmt.Errorf("category %q: %w", row.Category, err)
			}
			categoryID = created.ID
			categoryIDs[nameKey(row.Category)] = categoryID
			summary.Categories++
		}

		if row.Subcategory == "" {
			continue
		}
		if subcategories[nameKey(row.Category, row.Subcategory)] {
			summary.Skipped++
			continue
		}
		if _, err := categories.CreateSubcategory(ctx, service.SubcategoryInput{
			Name:        row.Subcategory,
			Description: row.SubcategoryDescription,
			CategoryID:  categoryID,
		}); err != nil {
			return summary, fmt.Errorf("subcategory %q: %w", row.Subcategory, err)
		}
		subcategories[nameKey(row.Category, row.Subcategory)] = true
		summary.Subcategories++
	}

	groups, err := attributes.ListGroups(ctx)
	if err != nil {
		return summary, err
	}
	groupIDs := make(map[string]uint, len(groups))
	attrs := make(map[string]bool)
	for _, g := range groups {
		groupIDs[nameKey(g.Name)] = g.ID
		for _, a := range g.Attributes {
			attrs[nameKey(g.Name, a.Name)] = true
		}
	}

	for _, row := range wb.Attributes {
		groupID, ok := groupIDs[nameKey(row.Group)]
		if !ok {
			created, err := attributes.CreateGroup(ctx, row.Group)
			if err != nil {
				return summary, fmt.Errorf("attribute group %q: %w", row.Group, err)
			}
			groupID = created.ID
			groupIDs[nameKey(row.Group)] = groupID
			summary.AttributeGroups++
		}

		if row.Attribute == "" {
			continue
		}
		if attrs[nameKey(row.Group, row.Attribute)] {
			summary.Skipped++
			continue
		}
		if _, err := attributes.CreateAttribute(ctx, service.AttributeInput{
			Name:    row.Attribute,
			GroupID: groupID,
			Order:   row.Order,
		}); err != nil {
			return summary, fmt.Errorf("attribute %q: %w", row.Attribute, err)
		}
		attrs[nameKey(row.Group, row.Attribute)] = true
		summary.Attributes++
	}

	return summary, nil
}
