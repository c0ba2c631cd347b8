package lucia

import (
	"context"
	"net/url"
	"time"
)

// PromptCacheEntry is one cached prompt prefix on the backend.
type PromptCacheEntry struct {
	Key        string    `json:"key"`
	AgentName  string    `json:"agentName,omitempty"`
	Model      string    `json:"model,omitempty"`
	TokenCount int       `json:"tokenCount"`
	HitCount   int       `json:"hitCount"`
	CreatedAt  time.Time `json:"createdAt"`
	LastHitAt  time.Time `json:"lastHitAt,omitempty"`
}

// ListPromptCacheEntries fetches one page of prompt cache entries.
func (c *Client) ListPromptCacheEntries(ctx context.Context, page, pageSize int) (*Paged[PromptCacheEntry], error) {
	return getPaged[PromptCacheEntry](ctx, c, "/cache/prompt", pageQuery(page, pageSize))
}

// DeletePromptCacheEntry evicts a single cache entry.
func (c *Client) DeletePromptCacheEntry(ctx context.Context, key string) error {
	return c.delete(ctx, "/cache/prompt/entries/"+url.PathEscape(key))
}

// ClearPromptCache evicts everything.
func (c *Client) ClearPromptCache(ctx context.Context) error {
	return c.delete(ctx, "/cache/prompt")
}
