// SPDX-License-Identifier: AGPL-3.0-or-later

package uischema

import (
	"errors"
	"fmt"
	"strings"
)

// IDKey is the config key holding an item's stable identifier.
const IDKey = "_id"

var (
	// ErrUnknownList is returned for keys the schema does not edit as a list.
	ErrUnknownList = errors.New("not a list field")
	// ErrItemNotFound is returned when no item carries the requested _id.
	ErrItemNotFound = errors.New("item not found")
)

// BackfillIDs gives every object in the schema's list fields an _id if it
// lacks one. It returns how many were added.
func (s *Schema) BackfillIDs(cfg map[string]any, newID func() string) int {
	added := 0
	for _, f := range s.ListFields() {
		switch f.Widget {
		case WidgetListOfObjects:
			if list, ok := cfg[f.Key].([]any); ok {
				added += backfill(list, newID)
			}
		case WidgetDictOfListOfObjects:
			if groups, ok := cfg[f.Key].(map[string]any); ok {
				for _, v := range groups {
					if list, ok := v.([]any); ok {
						added += backfill(list, newID)
					}
				}
			}
		}
	}
	return added
}

func backfill(list []any, newID func() string) int {
	added := 0
	for _, it := range list {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := obj[IDKey]; !ok {
			obj[IDKey] = newID()
			added++
		}
	}
	return added
}

// NewItem returns a blank object for a list field: list widgets start as
// empty lists, everything else as an empty string.
func NewItem(f Field, id string) map[string]any {
	item := map[string]any{IDKey: id}
	for _, sub := range f.Object {
		switch sub.Widget {
		case WidgetTextArea, WidgetMultiselect:
			item[sub.Key] = []any{}
		default:
			item[sub.Key] = ""
		}
	}
	return item
}

// AddItem appends a blank item to the list addressed by key, which is
// either a list_of_objects key or "parent.child" for a
// dict_of_list_of_objects group. Missing containers are created.
func (s *Schema) AddItem(cfg map[string]any, key, id string) (map[string]any, error) {
	parent, child, nested := strings.Cut(key, ".")
	f, ok := s.ListField(parent)
	if !ok || nested != (f.Widget == WidgetDictOfListOfObjects) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, key)
	}

	item := NewItem(f, id)
	if !nested {
		list, _ := cfg[parent].([]any)
		cfg[parent] = append(list, item)
		return item, nil
	}

	groups, ok := cfg[parent].(map[string]any)
	if !ok {
		groups = map[string]any{}
		cfg[parent] = groups
	}
	list, _ := groups[child].([]any)
	groups[child] = append(list, item)
	return item, nil
}

// DeleteItem removes the item with the given _id from the list addressed by key.
func DeleteItem(cfg map[string]any, key, id string) error {
	parent, child, nested := strings.Cut(key, ".")

	container := cfg
	listKey := parent
	if nested {
		groups, ok := cfg[parent].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrItemNotFound, key)
		}
		container = groups
		listKey = child
	}

	list, ok := container[listKey].([]any)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, key)
	}
	kept := make([]any, 0, len(list))
	for _, it := range list {
		if obj, ok := it.(map[string]any); ok && obj[IDKey] == id {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%w: %s/%s", ErrItemNotFound, key, id)
	}
	container[listKey] = kept
	return nil
}
