package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
	"go.uber.org/zap"
)

// HistoryFetcher returns the decoded history payload of the gateway server.
// The payload shape is not trusted: callers check it themselves.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) (interface{}, error)
}

type HistoryClient struct {
	logger *zap.Logger
	client *http.Client
	url    string
}

func NewHistoryClient(l *zap.Logger, serverURL string, timeout time.Duration) *HistoryClient {
	return &HistoryClient{
		logger: l,
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimSuffix(serverURL, "/") + constant.DefaultHistoryPath,
	}
}

func (c *HistoryClient) FetchHistory(ctx context.Context) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch history: unexpected status %d", res.StatusCode)
	}

	var payload interface{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	c.logger.Debug("history fetched", zap.String("url", c.url))
	return payload, nil
}
