// Copyright 2025 NetApp, Inc. All Rights Reserved.

package persistentstore

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/jobloop/querycache/config"
	. "github.com/jobloop/querycache/logging"
	"github.com/jobloop/querycache/utils/errors"
)

const redisKeyPrefix = config.OrchestratorName

// RedisClient stores each document as a JSON string under "<prefix>:<collection>:<id>" and keeps
// a set of IDs per collection under "<prefix>:<collection>".
type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg config.RedisConfig) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: redisKeyPrefix,
	}
}

func (c *RedisClient) GetType() StoreType {
	return RedisStore
}

func (c *RedisClient) Stop() error {
	return c.client.Close()
}

// Ping checks that the server is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.WrapWithConnectionError(err, "redis at %s is unreachable", c.client.Options().Addr)
	}
	return nil
}

func (c *RedisClient) collectionKey(collection string) string {
	return c.prefix + ":" + collection
}

func (c *RedisClient) redisKey(collection, id string) string {
	return c.prefix + ":" + collection + ":" + id
}

func (c *RedisClient) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := c.client.Get(ctx, c.redisKey(collection, id)).Bytes()
	if err == redis.Nil {
		return nil, NewPersistentStoreError(KeyNotFoundErr, documentKey(collection, id))
	} else if err != nil {
		return nil, errors.WrapWithConnectionError(err, "could not read %s", documentKey(collection, id))
	}
	return decodeDocument(collection, id, raw)
}

func (c *RedisClient) Put(ctx context.Context, collection, id string, doc Document) error {
	if doc == nil {
		return NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.redisKey(collection, id), raw, 0)
		pipe.SAdd(ctx, c.collectionKey(collection), id)
		return nil
	})
	if err != nil {
		return errors.WrapWithConnectionError(err, "could not write %s", documentKey(collection, id))
	}
	return nil
}

func (c *RedisClient) Delete(ctx context.Context, collection, id string) error {
	var deleted *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, c.redisKey(collection, id))
		pipe.SRem(ctx, c.collectionKey(collection), id)
		return nil
	})
	if err != nil {
		return errors.WrapWithConnectionError(err, "could not delete %s", documentKey(collection, id))
	}
	if deleted.Val() == 0 {
		return NewPersistentStoreError(KeyNotFoundErr, documentKey(collection, id))
	}
	return nil
}

func (c *RedisClient) List(ctx context.Context, collection string) ([]Document, error) {
	ids, err := c.client.SMembers(ctx, c.collectionKey(collection)).Result()
	if err != nil {
		return nil, errors.WrapWithConnectionError(err, "could not list %s", collection)
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.redisKey(collection, id))
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.WrapWithConnectionError(err, "could not list %s", collection)
	}

	docs := make([]Document, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// The set and the document disagree; a concurrent delete won the race.
			Logc(WithLogLayer(ctx, LogLayerPersistentStore)).WithField("key",
				documentKey(collection, ids[i])).Debug("Listed document vanished.")
			continue
		}
		doc, err := decodeDocument(collection, ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeDocument(collection, id string, raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, NewPersistentStoreError(InvalidDocErr, documentKey(collection, id))
	}
	return doc, nil
}
