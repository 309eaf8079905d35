// Package ipfs uploads encoded edits to an IPFS add endpoint.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ipfs/go-cid"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

const (
	addPath = "/api/v0/add?stream-channels=true&progress=false"
	// Scheme prefixes every CID returned by Upload.
	Scheme = "ipfs://"
)

// Client talks to an IPFS HTTP API.
type Client struct {
	BaseURL string
	HTTP    *retryablehttp.Client
}

func New(baseURL string, httpc *retryablehttp.Client) *Client {
	if httpc == nil {
		httpc = retryablehttp.NewClient()
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpc}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Upload adds data as a single file and returns its "ipfs://<cid>" URI.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+addPath, body.Bytes())
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ipfs add: %v", errors.ErrRemote, err)
	}
	defer resp.Body.Close()
	if err := httpx.CheckResponse(resp, "ipfs add"); err != nil {
		return "", err
	}

	var out addResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: ipfs add: decode response: %v", errors.ErrRemote, err)
	}
	if _, err := cid.Decode(out.Hash); err != nil {
		return "", fmt.Errorf("%w: ipfs add returned %q: %v", errors.ErrRemote, out.Hash, err)
	}
	return Scheme + out.Hash, nil
}

// PublishEdit validates and encodes edit, then uploads it.
func (c *Client) PublishEdit(ctx context.Context, edit *graph.Edit) (string, error) {
	if err := edit.Validate(); err != nil {
		return "", err
	}
	data, err := edit.Encode()
	if err != nil {
		return "", fmt.Errorf("encode edit: %w", err)
	}
	return c.Upload(ctx, "edit.json", data)
}

// ParseURI strips the scheme from an "ipfs://" URI and validates the CID.
func ParseURI(uri string) (cid.Cid, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return cid.Undef, fmt.Errorf("%w: %q is not an ipfs uri", errors.ErrInvalidInput, uri)
	}
	c, err := cid.Decode(strings.TrimPrefix(uri, Scheme))
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return c, nil
}
