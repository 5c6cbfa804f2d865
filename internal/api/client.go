package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/markusressel/motor2go/internal/controller"
)

// Client talks to the REST API of a running daemon
type Client struct {
	baseUrl string
	http    *http.Client
}

// ApiError is returned for every non 2xx response of the API
type ApiError struct {
	StatusCode int
	Result     Result
}

func (e *ApiError) Error() string {
	if e.Result.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d): %s", e.Result.Name, e.StatusCode, e.Result.Message)
}

func NewClient(host string, port int) *Client {
	return NewClientWithUrl(fmt.Sprintf("http://%s:%d", host, port))
}

func NewClientWithUrl(baseUrl string) *Client {
	return &Client{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Status(ctx context.Context) (controller.Status, error) {
	var status controller.Status
	err := c.do(ctx, http.MethodGet, "/motor/", nil, &status)
	return status, err
}

func (c *Client) Setpoint(ctx context.Context) (float64, error) {
	var result SetpointResult
	err := c.do(ctx, http.MethodGet, "/motor/setpoint/", nil, &result)
	return result.Value, err
}

func (c *Client) SetSetpoint(ctx context.Context, rpm float64) (float64, error) {
	var result SetpointResult
	err := c.do(ctx, http.MethodPost, "/motor/setpoint/", SetpointBody{Value: &rpm}, &result)
	return result.Value, err
}

// Toggle switches between the configured step setpoints and returns the new setpoint
func (c *Client) Toggle(ctx context.Context) (float64, error) {
	var result SetpointResult
	err := c.do(ctx, http.MethodPost, "/motor/toggle/", nil, &result)
	return result.Value, err
}

func (c *Client) Gains(ctx context.Context) (controller.Gains, error) {
	var gains controller.Gains
	err := c.do(ctx, http.MethodGet, "/motor/gains/", nil, &gains)
	return gains, err
}

// UpdateGains changes the gains that are set in the update and returns the resulting gains
func (c *Client) UpdateGains(ctx context.Context, update controller.GainsUpdate) (controller.Gains, error) {
	var result controller.Gains
	err := c.do(ctx, http.MethodPut, "/motor/gains/", update, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, target interface{}) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, &payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &ApiError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Result)
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
