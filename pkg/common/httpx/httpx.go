// Package httpx builds the retrying HTTP client shared by the IPFS and API
// clients.
package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 4 << 10

// New returns a client that retries connection errors and 5xx responses up
// to retries times. The last response is handed back on exhaustion so the
// caller can report its body.
func New(logger zerolog.Logger, retries int, timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = timeout
	c.Logger = leveled{logger}
	c.ErrorHandler = keepLastResponse
	return c
}

// keepLastResponse hands back the final response instead of an error so the
// status and body reach CheckResponse.
func keepLastResponse(resp *http.Response, err error, attempts int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, fmt.Errorf("%w: giving up after %d attempt(s): %w", errors.ErrRemote, attempts, err)
}

// leveled adapts zerolog to retryablehttp.LeveledLogger.
type leveled struct {
	l zerolog.Logger
}

func (l leveled) Error(msg string, kv ...interface{}) { l.l.Error().Fields(kv).Msg(msg) }
func (l leveled) Info(msg string, kv ...interface{})  { l.l.Debug().Fields(kv).Msg(msg) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.l.Trace().Fields(kv).Msg(msg) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.l.Warn().Fields(kv).Msg(msg) }

// CheckResponse returns nil for 2xx responses. Otherwise it drains the body
// and returns an ErrRemote carrying the status text and body.
func CheckResponse(resp *http.Response, what string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := fmt.Errorf("%w: %s: %s: %s", errors.ErrRemote, what, resp.Status, strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", errors.ErrNotFound, err)
	}
	return err
}
