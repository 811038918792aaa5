package service

import (
	"sort"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
)

// AttributeSession is the working state of one product's attribute editor.
// It is built from a registry snapshot plus the product's persisted values
// and is owned by a single caller; it is not safe for concurrent use.
//
// Group visibility is never stored. Detected groups are derived from the
// persisted values once, at construction; the visible set starts from them
// and only changes through AttachGroup, DetachGroup and SetVisibleGroups.
type AttributeSession struct {
	groups   []model.AttributeGroup
	groupOf  map[uint]uint
	detected map[uint]struct{}
	visible  map[uint]struct{}
	values   map[uint]string
}

// GroupView is one group of the projected editor.
type GroupView struct {
	ID         uint                 `json:"id"`
	Name       string               `json:"name"`
	Visible    bool                 `json:"visible"`
	Attributes []AttributeValueView `json:"attributes"`
}

// AttributeValueView is one attribute row with its session value.
type AttributeValueView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
	Value string `json:"value"`
}

// NewAttributeSession starts an editing session over the registry groups.
// Groups holding a persisted value start visible.
func NewAttributeSession(groups []model.AttributeGroup, persisted []model.ProductAttributeValue) *AttributeSession {
	s := &AttributeSession{
		groups:   make([]model.AttributeGroup, len(groups)),
		groupOf:  make(map[uint]uint),
		detected: make(map[uint]struct{}),
		visible:  make(map[uint]struct{}),
		values:   make(map[uint]string),
	}

	for i, group := range groups {
		s.groups[i] = group
		s.groups[i].Attributes = append([]model.Attribute(nil), group.Attributes...)
		for _, attr := range group.Attributes {
			s.groupOf[attr.ID] = group.ID
		}
	}

	for _, v := range persisted {
		groupID, ok := s.groupOf[v.AttributeID]
		if !ok || strings.TrimSpace(v.Value) == "" {
			continue
		}
		s.values[v.AttributeID] = v.Value
		s.detected[groupID] = struct{}{}
		s.visible[groupID] = struct{}{}
	}
	return s
}

func sortedKeys(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DetectedGroups returns the groups reachable from the persisted values.
func (s *AttributeSession) DetectedGroups() []uint {
	return sortedKeys(s.detected)
}

// VisibleGroups returns the operator-modified visible set.
func (s *AttributeSession) VisibleGroups() []uint {
	return sortedKeys(s.visible)
}

// IsVisible reports whether the group is in the visible set.
func (s *AttributeSession) IsVisible(groupID uint) bool {
	_, ok := s.visible[groupID]
	return ok
}

func (s *AttributeSession) hasGroup(groupID uint) bool {
	for _, group := range s.groups {
		if group.ID == groupID {
			return true
		}
	}
	return false
}

// AttachGroup makes a registry group visible for this product.
func (s *AttributeSession) AttachGroup(groupID uint) error {
	if !s.hasGroup(groupID) {
		return apperrors.NewNotFound(apperrors.EntityAttributeGroup, groupID)
	}
	s.visible[groupID] = struct{}{}
	return nil
}

// DetachGroup hides a group for this product. Working values are kept so a
// later AttachGroup in the same session shows them again; Submission drops
// them while the group stays detached.
func (s *AttributeSession) DetachGroup(groupID uint) {
	delete(s.visible, groupID)
}

// SetVisibleGroups replaces the visible set. Every id must be a known group.
func (s *AttributeSession) SetVisibleGroups(groupIDs []uint) error {
	for _, id := range groupIDs {
		if !s.hasGroup(id) {
			return apperrors.NewNotFound(apperrors.EntityAttributeGroup, id)
		}
	}
	s.visible = make(map[uint]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		s.visible[id] = struct{}{}
	}
	return nil
}

// SetValue records a working value. A blank value clears the entry.
func (s *AttributeSession) SetValue(attributeID uint, value string) error {
	if _, ok := s.groupOf[attributeID]; !ok {
		return apperrors.NewNotFound(apperrors.EntityAttribute, attributeID)
	}
	if strings.TrimSpace(value) == "" {
		delete(s.values, attributeID)
		return nil
	}
	s.values[attributeID] = value
	return nil
}

// Value returns the working value for an attribute.
func (s *AttributeSession) Value(attributeID uint) (string, bool) {
	v, ok := s.values[attributeID]
	return v, ok
}

// ClearValues drops every working value, keeping the visible set.
func (s *AttributeSession) ClearValues() {
	s.values = make(map[uint]string)
}

// GroupOf returns the group an attribute belongs to in this session.
func (s *AttributeSession) GroupOf(attributeID uint) (uint, bool) {
	groupID, ok := s.groupOf[attributeID]
	return groupID, ok
}

// RegisterAttribute makes an attribute created after the session started
// enterable immediately.
func (s *AttributeSession) RegisterAttribute(attr model.Attribute) error {
	for i := range s.groups {
		if s.groups[i].ID != attr.AttributeGroupID {
			continue
		}
		if _, known := s.groupOf[attr.ID]; !known {
			s.groups[i].Attributes = append(s.groups[i].Attributes, attr)
			sort.SliceStable(s.groups[i].Attributes, func(a, b int) bool {
				x, y := s.groups[i].Attributes[a], s.groups[i].Attributes[b]
				if x.Order != y.Order {
					return x.Order < y.Order
				}
				return x.ID < y.ID
			})
		}
		s.groupOf[attr.ID] = attr.AttributeGroupID
		return nil
	}
	return apperrors.NewNotFound(apperrors.EntityAttributeGroup, attr.AttributeGroupID)
}

// Submission returns the values to persist: non-blank values whose group is
// currently visible, ordered by attribute id.
func (s *AttributeSession) Submission() []model.ProductAttributeValue {
	out := []model.ProductAttributeValue{}
	for attributeID, value := range s.values {
		if !s.IsVisible(s.groupOf[attributeID]) {
			continue
		}
		out = append(out, model.ProductAttributeValue{AttributeID: attributeID, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttributeID < out[j].AttributeID })
	return out
}

// View projects the registry for the editor: every group with its visible
// flag and each attribute's current working value.
func (s *AttributeSession) View() []GroupView {
	views := make([]GroupView, 0, len(s.groups))
	for _, group := range s.groups {
		view := GroupView{
			ID:         group.ID,
			Name:       group.Name,
			Visible:    s.IsVisible(group.ID),
			Attributes: make([]AttributeValueView, 0, len(group.Attributes)),
		}
		for _, attr := range group.Attributes {
			view.Attributes = append(view.Attributes, AttributeValueView{
				ID:    attr.ID,
				Name:  attr.Name,
				Order: attr.Order,
				Value: s.values[attr.ID],
			})
		}
		views = append(views, view)
	}
	return views
}
