// Package cloud wraps the remote device service's OpenAPI. Every
// operation is one signed HTTP round trip that resolves exactly once;
// backend failures surface their original error code and message.
package cloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/smartlife/devicebridge/internal/types"
	"go.uber.org/zap"
)

type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.RWMutex
	token    string
	expireAt time.Time
}

func NewClient(clientID, secret, region string, timeout time.Duration, logger *zap.Logger) *Client {
	baseURL := "https://openapi.tuyaus.com"
	switch strings.ToLower(region) {
	case "eu":
		baseURL = "https://openapi.tuyaeu.com"
	case "cn":
		baseURL = "https://openapi.tuyacn.com"
	case "in":
		baseURL = "https://openapi.tuyain.com"
	}

	return NewClientWithURL(clientID, secret, baseURL, timeout, logger)
}

func NewClientWithURL(clientID, secret, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		clientID:   clientID,
		secret:     secret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// envelope is the response wrapper every cloud endpoint shares.
type envelope struct {
	Success bool            `json:"success"`
	Code    json.RawMessage `json:"code"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
}

// homeDetail is the payload of the home-detail endpoint.
type homeDetail struct {
	HomeID  int64                       `json:"homeId"`
	Name    string                      `json:"name"`
	Devices []types.RemoteDevicePayload `json:"devices"`
}

// FetchHomeDevices requests the home detail and maps every contained
// device payload into a canonical record. The returned list may be
// empty; it is never nil on success.
func (c *Client) FetchHomeDevices(ctx context.Context, homeID int64) ([]types.Device, error) {
	path := fmt.Sprintf("/v1.0/homes/%d/detail", homeID)
	result, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var detail homeDetail
	if err := json.Unmarshal(result, &detail); err != nil {
		return nil, fmt.Errorf("parsing home detail: %w", err)
	}

	devices := make([]types.Device, 0, len(detail.Devices))
	for _, payload := range detail.Devices {
		devices = append(devices, types.NewRemoteDevice(payload))
	}
	return devices, nil
}

// SendCommand publishes data points for one device. Commands travel as
// a flat JSON object mapping function code to value.
func (c *Client) SendCommand(ctx context.Context, deviceID string, commands map[string]any) error {
	body, err := json.Marshal(commands)
	if err != nil {
		return fmt.Errorf("encoding commands: %w", err)
	}

	path := fmt.Sprintf("/v1.0/devices/%s/dps", deviceID)
	_, err = c.doRequest(ctx, http.MethodPost, path, body)
	return err
}

// RemoveDevice unbinds one device from its home on the cloud side.
func (c *Client) RemoveDevice(ctx context.Context, deviceID string) error {
	path := fmt.Sprintf("/v1.0/devices/%s", deviceID)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("client_id", c.clientID)
	req.Header.Set("access_token", c.token)
	req.Header.Set("sign", c.calcSign(timestamp, c.token, method, path, body))
	req.Header.Set("t", timestamp)
	req.Header.Set("sign_method", "HMAC-SHA256")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if !env.Success {
		return nil, &types.RemoteError{Code: rawCode(env.Code), Message: env.Msg}
	}

	return env.Result, nil
}

// rawCode renders the backend's error code field, which some endpoints
// emit as a string and others as a number.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.RLock()
	if c.token != "" && time.Now().Add(5*time.Minute).Before(c.expireAt) {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Add(5*time.Minute).Before(c.expireAt) {
		return nil
	}

	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	path := "/v1.0/token?grant_type=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("client_id", c.clientID)
	req.Header.Set("sign", c.calcSign(timestamp, "", http.MethodGet, path, nil))
	req.Header.Set("t", timestamp)
	req.Header.Set("sign_method", "HMAC-SHA256")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending token request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	var tokenResp struct {
		Success bool            `json:"success"`
		Code    json.RawMessage `json:"code"`
		Msg     string          `json:"msg"`
		Result  struct {
			AccessToken string `json:"access_token"`
			ExpireTime  int64  `json:"expire_time"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	if !tokenResp.Success {
		return &types.RemoteError{Code: rawCode(tokenResp.Code), Message: tokenResp.Msg}
	}

	c.token = tokenResp.Result.AccessToken
	c.expireAt = time.Now().Add(time.Duration(tokenResp.Result.ExpireTime) * time.Second)

	if c.logger != nil {
		c.logger.Debug("Cloud access token refreshed",
			zap.Time("expires_at", c.expireAt))
	}

	return nil
}

func (c *Client) calcSign(timestamp, token, method, path string, body []byte) string {
	str := c.clientID + token + timestamp + c.stringToSign(method, path, body)
	h := hmac.New(sha256.New, []byte(c.secret))
	h.Write([]byte(str))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func (c *Client) stringToSign(method, path string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	return method + "\n" + hex.EncodeToString(bodyHash[:]) + "\n\n" + path
}
