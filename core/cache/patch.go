// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/jobloop/querycache/utils/errors"
)

// PatchFunc transforms a cached value into its optimistic replacement. It receives a private
// deep copy of the current value and may modify it in place. Returning an error leaves the cache
// entry untouched.
type PatchFunc func(current any) (any, error)

// Typed adapts a function over a concrete value type. A cached value of any other type fails
// with a TypeAssertionError.
func Typed[T any](fn func(T) (T, error)) PatchFunc {
	return func(current any) (any, error) {
		typed, ok := current.(T)
		if !ok {
			return nil, errors.TypeAssertionError(fmt.Sprintf("%T.(%s)", current, reflect.TypeOf((*T)(nil)).Elem()))
		}
		return fn(typed)
	}
}

// SetField sets the value at path inside a map document, creating intermediate maps as needed.
func SetField(path []string, value any) PatchFunc {
	return func(current any) (any, error) {
		if len(path) == 0 {
			return nil, errors.InvalidInputError("field path is empty")
		}
		doc, ok := current.(map[string]any)
		if !ok {
			return nil, errors.TypeAssertionError(fmt.Sprintf("%T.(map[string]any)", current))
		}

		node := doc
		for i, field := range path[:len(path)-1] {
			child, exists := node[field]
			if !exists || child == nil {
				next := make(map[string]any)
				node[field] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				return nil, errors.InvalidInputError("field %v is a %T, not an object", path[:i+1], child)
			}
			node = next
		}
		node[path[len(path)-1]] = value
		return doc, nil
	}
}

// RemoveFromList drops every element of a slice value for which match returns true. The slice
// keeps its element type.
func RemoveFromList(match func(item any) bool) PatchFunc {
	return func(current any) (any, error) {
		list, err := sliceValue(current)
		if err != nil {
			return nil, err
		}
		kept := reflect.MakeSlice(list.Type(), 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			if !match(list.Index(i).Interface()) {
				kept = reflect.Append(kept, list.Index(i))
			}
		}
		return kept.Interface(), nil
	}
}

// UpdateInList replaces every element of a slice value for which match returns true with the
// result of update. Non-matching elements are left as they are.
func UpdateInList(match func(item any) bool, update func(item any) (any, error)) PatchFunc {
	return func(current any) (any, error) {
		list, err := sliceValue(current)
		if err != nil {
			return nil, err
		}
		elemType := list.Type().Elem()
		for i := 0; i < list.Len(); i++ {
			item := list.Index(i)
			if !match(item.Interface()) {
				continue
			}
			updated, err := update(item.Interface())
			if err != nil {
				return nil, err
			}
			replacement, err := assignable(updated, elemType)
			if err != nil {
				return nil, err
			}
			item.Set(replacement)
		}
		return list.Interface(), nil
	}
}

// MergePatch applies an RFC 7386 JSON merge patch. The result is decoded back into the type of
// the current value.
func MergePatch(patch []byte) PatchFunc {
	return func(current any) (any, error) {
		doc, err := json.Marshal(current)
		if err != nil {
			return nil, errors.InvalidInputError("cached value cannot be encoded; %v", err)
		}
		merged, err := jsonpatch.MergePatch(doc, patch)
		if err != nil {
			return nil, errors.InvalidInputError("merge patch failed; %v", err)
		}
		return decodeLike(current, merged)
	}
}

// JSONPatch applies an RFC 6902 JSON patch. The result is decoded back into the type of the
// current value. A malformed patch document fails every application with an InvalidInputError.
func JSONPatch(ops []byte) PatchFunc {
	decoded, decodeErr := jsonpatch.DecodePatch(ops)
	return func(current any) (any, error) {
		if decodeErr != nil {
			return nil, errors.InvalidInputError("invalid JSON patch; %v", decodeErr)
		}
		doc, err := json.Marshal(current)
		if err != nil {
			return nil, errors.InvalidInputError("cached value cannot be encoded; %v", err)
		}
		patched, err := decoded.Apply(doc)
		if err != nil {
			return nil, errors.InvalidInputError("JSON patch failed; %v", err)
		}
		return decodeLike(current, patched)
	}
}

// Compose applies patches in order, feeding each the output of the previous one.
func Compose(patches ...PatchFunc) PatchFunc {
	return func(current any) (any, error) {
		value := current
		for _, patch := range patches {
			var err error
			if value, err = patch(value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

func sliceValue(current any) (reflect.Value, error) {
	v := reflect.ValueOf(current)
	if !v.IsValid() || v.Kind() != reflect.Slice {
		return reflect.Value{}, errors.TypeAssertionError(fmt.Sprintf("%T is a list", current))
	}
	return v, nil
}

func assignable(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch to.Kind() {
		case reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, errors.TypeAssertionError(fmt.Sprintf("nil.(%s)", to))
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(to) {
		return reflect.Value{}, errors.TypeAssertionError(fmt.Sprintf("%T.(%s)", value, to))
	}
	return v, nil
}

// decodeLike unmarshals data into a new value of the same dynamic type as like.
func decodeLike(like any, data []byte) (any, error) {
	if like == nil {
		var plain any
		if err := json.Unmarshal(data, &plain); err != nil {
			return nil, errors.InvalidInputError("patched document cannot be decoded; %v", err)
		}
		return plain, nil
	}
	target := reflect.New(reflect.TypeOf(like))
	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return nil, errors.InvalidInputError("patched document cannot be decoded as %T; %v", like, err)
	}
	return target.Elem().Interface(), nil
}
