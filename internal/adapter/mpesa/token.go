package mpesa

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tokens are cached for their lifetime minus this margin.
const tokenExpiryMargin = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) tokenKey() string {
	return "mpesa:token:" + c.cfg.ShortCode
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	cached, err := c.rdb.Get(ctx, c.tokenKey()).Result()
	switch {
	case err == nil && cached != "":
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.log.Warn("Token cache unavailable, fetching a fresh token", zap.Error(err))
	}

	token, ttl, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	if ttl > tokenExpiryMargin {
		if err := c.rdb.Set(ctx, c.tokenKey(), token, ttl-tokenExpiryMargin).Err(); err != nil {
			c.log.Warn("Failed to cache access token", zap.Error(err))
		}
	}

	return token, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	defer c.metrics.ObserveProvider("oauth", time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	var resp tokenResponse
	if err := c.do(req, &resp); err != nil {
		return "", 0, fmt.Errorf("fetch access token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", 0, errors.New("fetch access token: empty token in response")
	}

	seconds, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil {
		seconds = 0
	}

	return resp.AccessToken, time.Duration(seconds) * time.Second, nil
}

func (c *Client) invalidateToken(ctx context.Context) {
	if err := c.rdb.Del(ctx, c.tokenKey()).Err(); err != nil {
		c.log.Warn("Failed to drop rejected access token", zap.Error(err))
	}
}
