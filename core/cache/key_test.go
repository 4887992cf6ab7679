// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobloop/querycache/utils/errors"
)

func TestNewQueryKey_Equality(t *testing.T) {
	tests := map[string]struct {
		left, right QueryKey
		equal       bool
	}{
		"object key order is ignored": {
			left:  MustQueryKey("getJobs", map[string]any{"userId": "u1", "status": "open"}),
			right: MustQueryKey("getJobs", map[string]any{"status": "open", "userId": "u1"}),
			equal: true,
		},
		"struct and map with same fields": {
			left: MustQueryKey("getJobs", struct {
				UserID string `json:"userId"`
				Status string `json:"status"`
			}{"u1", "open"}),
			right: MustQueryKey("getJobs", map[string]any{"status": "open", "userId": "u1"}),
			equal: true,
		},
		"array order matters": {
			left:  MustQueryKey("getJobs", map[string]any{"ids": []int{1, 2}}),
			right: MustQueryKey("getJobs", map[string]any{"ids": []int{2, 1}}),
			equal: false,
		},
		"numbers compare by value": {
			left:  MustQueryKey("getJob", map[string]any{"id": 7}),
			right: MustQueryKey("getJob", map[string]any{"id": 7.0}),
			equal: true,
		},
		"large integers keep their exact value": {
			left:  MustQueryKey("getJob", map[string]any{"id": int64(9007199254740993)}),
			right: MustQueryKey("getJob", map[string]any{"id": int64(9007199254740992)}),
			equal: false,
		},
		"large integers equal themselves": {
			left:  MustQueryKey("getJob", map[string]any{"id": uint64(18446744073709551615)}),
			right: MustQueryKey("getJob", map[string]any{"id": json.Number("18446744073709551615")}),
			equal: true,
		},
		"integral number spellings": {
			left:  MustQueryKey("getJob", map[string]any{"page": json.Number("2.0")}),
			right: MustQueryKey("getJob", map[string]any{"page": json.Number("2e0")}),
			equal: true,
		},
		"fractions compare by value": {
			left:  MustQueryKey("getJobs", map[string]any{"minScore": 0.5}),
			right: MustQueryKey("getJobs", map[string]any{"minScore": json.Number("5e-1")}),
			equal: true,
		},
		"genuine replacement character": {
			left:  MustQueryKey("getJobs", map[string]any{"search": "\ufffd"}),
			right: MustQueryKey("getJobs", map[string]any{"search": "\xef\xbf\xbd"}),
			equal: true,
		},
		"different operations": {
			left:  MustQueryKey("getJobs", map[string]any{"userId": "u1"}),
			right: MustQueryKey("getLoops", map[string]any{"userId": "u1"}),
			equal: false,
		},
		"nested objects are normalized": {
			left: MustQueryKey("getJobs", map[string]any{
				"filter": map[string]any{"b": 1, "a": []string{"x"}},
			}),
			right: MustQueryKey("getJobs", map[string]any{
				"filter": map[string]any{"a": []string{"x"}, "b": 1},
			}),
			equal: true,
		},
		"nil args": {
			left:  MustQueryKey("getSettings", nil),
			right: MustQueryKey("getSettings", nil),
			equal: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.equal, test.left.Equal(test.right))
			assert.Equal(t, test.equal, test.left == test.right)
			assert.Equal(t, test.equal, test.left.ID() == test.right.ID())
			if test.equal {
				assert.Equal(t, test.left.Hash(), test.right.Hash())
			}
		})
	}
}

func TestNewQueryKey_Invalid(t *testing.T) {
	tests := map[string]struct {
		operation string
		args      any
	}{
		"empty operation":   {operation: "", args: nil},
		"NUL in operation":  {operation: "get\x00Jobs", args: nil},
		"unencodable value": {operation: "getJobs", args: map[string]any{"f": func() {}}},
		"NaN":               {operation: "getJobs", args: math.NaN()},
		"channel":           {operation: "getJobs", args: make(chan int)},
		"invalid UTF-8":     {operation: "getJobs", args: map[string]any{"search": "\xff"}},
		"invalid UTF-8 key": {operation: "getJobs", args: map[string]any{"\xfe": "x"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			key, err := NewQueryKey(test.operation, test.args)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInputError(err))
			assert.True(t, key.IsZero())
		})
	}
}

func TestNewQueryKey_LargeIntegersKeepSeparateEntries(t *testing.T) {
	c := NewQueryCache()
	a := MustQueryKey("getJob", map[string]any{"id": int64(9007199254740993)})
	b := MustQueryKey("getJob", map[string]any{"id": int64(9007199254740992)})
	assert.Equal(t, `{"id":9007199254740993}`, a.CanonicalArgs())

	c.Set(a, "job-a")
	c.Set(b, "job-b")

	assert.Equal(t, 2, c.Len())
	entry, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(t, "job-a", entry.Value)
}

func TestMustQueryKey_Panics(t *testing.T) {
	assert.Panics(t, func() { MustQueryKey("", nil) })
}

func TestQueryKey_Accessors(t *testing.T) {
	key := MustQueryKey("getJobs", map[string]any{"userId": "u1", "page": 2})

	assert.Equal(t, "getJobs", key.Operation())
	assert.Equal(t, `{"page":2,"userId":"u1"}`, key.CanonicalArgs())
	assert.Equal(t, "getJobs\x00"+`{"page":2,"userId":"u1"}`, key.ID())
	assert.Equal(t, `getJobs({"page":2,"userId":"u1"})`, key.String())
	assert.Equal(t, map[string]any{"page": 2.0, "userId": "u1"}, key.Args())
	assert.False(t, key.IsZero())
	assert.True(t, QueryKey{}.IsZero())
	assert.Nil(t, QueryKey{}.Args())

	args := key.Args().(map[string]any)
	args["userId"] = "u2"
	assert.Equal(t, "u1", key.Args().(map[string]any)["userId"], "Args must return a fresh copy")
}
