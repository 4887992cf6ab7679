// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"github.com/brunoga/deep"

	persistentstore "github.com/jobloop/querycache/persistent_store"
)

// DefaultSettings are applied to users who never saved settings, and fill any keys missing from
// stored documents.
func DefaultSettings() Settings {
	return Settings{
		Theme: "system",
		Notifications: NotificationSettings{
			Email:       true,
			Push:        false,
			DigestHour:  9,
			DigestEvery: "day",
		},
		Search: SearchSettings{
			Locations: []string{},
			Remote:    true,
			MinScore:  50,
		},
	}
}

// DefaultSettingsDocument is DefaultSettings in store document form.
func DefaultSettingsDocument() persistentstore.Document {
	doc, err := toDocument(DefaultSettings())
	if err != nil {
		panic(err)
	}
	return doc
}

// NormalizeSettings returns a copy of doc shaped like defaults. Missing keys take their default,
// unknown keys are dropped and values whose JSON type does not match the default are replaced by
// it. Nested objects are normalized the same way.
func NormalizeSettings(doc, defaults persistentstore.Document) persistentstore.Document {
	return normalizeObject(doc, defaults)
}

func normalizeObject(doc, defaults map[string]any) map[string]any {
	result := make(map[string]any, len(defaults))
	for field, def := range defaults {
		value, ok := doc[field]
		if !ok || !sameKind(value, def) {
			result[field] = deep.MustCopy(def)
			continue
		}
		if nested, isObject := def.(map[string]any); isObject {
			result[field] = normalizeObject(value.(map[string]any), nested)
			continue
		}
		result[field] = deep.MustCopy(value)
	}
	return result
}

// sameKind compares JSON types. A null default accepts anything.
func sameKind(value, def any) bool {
	switch def.(type) {
	case nil:
		return true
	case bool:
		_, ok := value.(bool)
		return ok
	case float64:
		_, ok := value.(float64)
		return ok
	case string:
		_, ok := value.(string)
		return ok
	case []any:
		_, ok := value.([]any)
		return ok
	case map[string]any:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}
