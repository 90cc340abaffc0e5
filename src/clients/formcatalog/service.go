package formcatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"qcdispatch/src/config"
	redis_utils "qcdispatch/src/utils/redis"

	"github.com/elastic/go-elasticsearch/v8"
)

type ClientI interface {
	FindNodeIDsByKeyword(ctx context.Context, keyword string) ([]string, error)
}

// Client resolves keywords against the form catalog index. The catalog is a
// hierarchical, document-oriented store; the client only returns the node
// identifiers of the matching documents, which the search service joins
// against task records locally.
type Client struct {
	es       *elasticsearch.Client
	index    string
	cache    *redis_utils.RedisHandler
	cacheTTL time.Duration
}

// NewClient creates a new instance of the form catalog client. cache may be
// nil, in which case every lookup hits the catalog.
func NewClient(cfg *config.Config, cache *redis_utils.RedisHandler) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.ExternalClients.FormCatalog.Addresses,
		Username:  cfg.ExternalClients.FormCatalog.Username,
		Password:  cfg.ExternalClients.FormCatalog.Password,
	})
	if err != nil {
		return nil, err
	}

	cacheTTL := time.Duration(cfg.ExternalClients.FormCatalog.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Client{
		es:       es,
		index:    cfg.ExternalClients.FormCatalog.Index,
		cache:    cache,
		cacheTTL: cacheTTL,
	}, nil
}

// FindNodeIDsByKeyword returns the IDs of every catalog node whose name,
// code or description matches the keyword.
func (c *Client) FindNodeIDsByKeyword(ctx context.Context, keyword string) ([]string, error) {
	cacheKey := "formcatalog:keyword:" + keyword

	if c.cache != nil {
		var cached []string
		if err := c.cache.Get(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keyword,
				"fields": []string{"name", "code", "description"},
			},
		},
		"_source": false,
		"size":    200,
	})
	if err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, fmt.Errorf("form catalog search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("form catalog search returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode form catalog response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	if c.cache != nil {
		// Best effort; a cold cache only costs the next lookup.
		_ = c.cache.Set(cacheKey, ids, c.cacheTTL)
	}

	return ids, nil
}
