package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"compliance-qa-api/internal/infrastructure/persistence/redis"
	"compliance-qa-api/pkg/logger"
)

// queryEmbeddingTTL 查询向量缓存时长，模型不变时向量稳定，可以放心缓存
const queryEmbeddingTTL = 24 * time.Hour

// CachedClient 带查询向量缓存的 Embedding 客户端
// 相同查询的向量化结果按内容哈希缓存，批量向量化不走缓存
type CachedClient struct {
	inner *Client
	cache *redis.Cache
}

// NewCachedClient 创建带缓存的 Embedding 客户端
func NewCachedClient(inner *Client, cache *redis.Cache) *CachedClient {
	return &CachedClient{
		inner: inner,
		cache: cache,
	}
}

// EmbedQuery 向量化单条查询，优先命中缓存
func (c *CachedClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if c.cache == nil {
		return c.inner.EmbedQuery(ctx, query)
	}

	key := redis.BuildQueryEmbeddingKey(hashQuery(query))
	if data, err := c.cache.Get(ctx, key); err == nil {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil && len(vector) > 0 {
			return vector, nil
		}
	}

	vector, err := c.inner.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, vector, queryEmbeddingTTL); err != nil {
		// 缓存写入失败不影响检索
		logger.Warn(ctx, "failed to cache query embedding", "error", err.Error())
	}
	return vector, nil
}

// Embed 批量向量化，直接透传
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.Embed(ctx, texts)
}

func hashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}
