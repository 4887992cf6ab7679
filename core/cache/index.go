// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import "sort"

// operationIndex maps an operation name to the keys cached for it, so every page or filter of an
// operation can be found without scanning the whole cache. Callers hold the cache lock.
type operationIndex struct {
	keys map[string]map[string]QueryKey // operation -> key ID -> key
}

func newOperationIndex() *operationIndex {
	return &operationIndex{keys: make(map[string]map[string]QueryKey)}
}

func (i *operationIndex) add(key QueryKey) {
	byID, ok := i.keys[key.Operation()]
	if !ok {
		byID = make(map[string]QueryKey)
		i.keys[key.Operation()] = byID
	}
	byID[key.ID()] = key
}

func (i *operationIndex) remove(key QueryKey) {
	byID, ok := i.keys[key.Operation()]
	if !ok {
		return
	}
	delete(byID, key.ID())
	if len(byID) == 0 {
		delete(i.keys, key.Operation())
	}
}

// get returns the keys for an operation sorted by ID.
func (i *operationIndex) get(operation string) []QueryKey {
	byID := i.keys[operation]
	result := make([]QueryKey, 0, len(byID))
	for _, key := range byID {
		result = append(result, key)
	}
	sortKeys(result)
	return result
}

func sortKeys(keys []QueryKey) {
	sort.Slice(keys, func(a, b int) bool { return keys[a].ID() < keys[b].ID() })
}
