// Package grc20api is a client for the GRC-20 space API: it turns an edit
// CID into transaction calldata and looks up published entities.
package grc20api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
)

const (
	DefaultNetwork   = "TESTNET"
	defaultCacheSize = 1024
	defaultCacheTTL  = 5 * time.Minute
)

// Calldata is the transaction target and payload for one edit.
type Calldata struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Entity is the subset of an entity document the publisher reads back.
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Types       []string `json:"types,omitempty"`
}

type Client struct {
	BaseURL string
	Network string
	HTTP    *retryablehttp.Client

	cache *expirable.LRU[string, *Entity]
}

// Option configures a Client.
type Option func(*Client)

// WithNetwork overrides DefaultNetwork.
func WithNetwork(network string) Option {
	return func(c *Client) {
		if network != "" {
			c.Network = network
		}
	}
}

// WithCache sizes the entity cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = expirable.NewLRU[string, *Entity](size, nil, ttl)
	}
}

func New(baseURL string, httpc *retryablehttp.Client, opts ...Option) *Client {
	if httpc == nil {
		httpc = retryablehttp.NewClient()
	}
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Network: DefaultNetwork,
		HTTP:    httpc,
		cache:   expirable.NewLRU[string, *Entity](defaultCacheSize, nil, defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calldata asks the API to encode the edit at cid for spaceID.
func (c *Client) Calldata(ctx context.Context, spaceID, cid string) (*Calldata, error) {
	if spaceID == "" || cid == "" {
		return nil, fmt.Errorf("%w: calldata needs a space id and a cid", errors.ErrInvalidInput)
	}
	payload, err := json.Marshal(map[string]string{"cid": cid, "network": c.Network})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/space/%s/edit/calldata", c.BaseURL, url.PathEscape(spaceID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calldata: %v", errors.ErrRemote, err)
	}
	defer resp.Body.Close()
	if err := httpx.CheckResponse(resp, "calldata"); err != nil {
		return nil, err
	}

	var out Calldata
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: calldata: decode response: %v", errors.ErrRemote, err)
	}
	if out.To == "" || out.Data == "" {
		return nil, fmt.Errorf("%w: calldata response is missing to or data", errors.ErrRemote)
	}
	return &out, nil
}

// Entity fetches an entity, serving repeated lookups from the cache.
// A missing entity is errors.ErrNotFound.
func (c *Client) Entity(ctx context.Context, spaceID, entityID string) (*Entity, error) {
	key := spaceID + "/" + entityID
	if e, ok := c.cache.Get(key); ok {
		return e, nil
	}

	endpoint := fmt.Sprintf("%s/space/%s/entity/%s", c.BaseURL, url.PathEscape(spaceID), url.PathEscape(entityID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: entity: %v", errors.ErrRemote, err)
	}
	defer resp.Body.Close()
	if err := httpx.CheckResponse(resp, "entity "+entityID); err != nil {
		return nil, err
	}

	var e Entity
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: entity: decode response: %v", errors.ErrRemote, err)
	}
	if e.ID == "" {
		e.ID = entityID
	}
	c.cache.Add(key, &e)
	return &e, nil
}

// BrowserURL links to an entity in the graph browser.
func BrowserURL(base, spaceID, entityID string) string {
	return fmt.Sprintf("%s/space/%s/%s", strings.TrimRight(base, "/"), spaceID, entityID)
}
