// v1
// pkg/client/client.go
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Device mirrors the API's per-kind device view. Exactly one of the
// variant pointers is populated, matching Kind.
type Device struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	IsOn     *bool    `json:"isOn,omitempty"`
	Speed    *int     `json:"speed,omitempty"`
	Setpoint *float64 `json:"setpoint,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`
}

// DeviceDetail is the device view extended with its current draw and
// action history, as served by the detail endpoint.
type DeviceDetail struct {
	Device
	Watts float64    `json:"watts"`
	Log   []LogEntry `json:"log"`
}

// LogEntry is one recorded device action.
type LogEntry struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// PowerSample is one (tick, total watts) observation.
type PowerSample struct {
	T          float64 `json:"t"`
	TotalPower float64 `json:"totalPower"`
}

// Status reports the controller's runtime condition.
type Status struct {
	Sampler       string  `json:"sampler"`
	Tick          float64 `json:"tick"`
	HistoryLength int     `json:"historyLength"`
	Devices       int     `json:"devices"`
	Subscribers   int     `json:"subscribers"`
}

// APIError mirrors the server's JSON error envelope; Status carries the
// HTTP status code the envelope arrived with.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client is a typed HTTP client for the controller API.
type Client struct {
	http *resty.Client
}

// New builds a client rooted at the given base URL, e.g.
// "http://localhost:8090".
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// WithTimeout overrides the default request timeout and returns the
// client for chaining.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.http.SetTimeout(d)
	return c
}

type devicesEnvelope struct {
	Devices []Device `json:"devices"`
	Count   int      `json:"count"`
}

type logsEnvelope struct {
	Entries []LogEntry `json:"entries"`
	Count   int        `json:"count"`
}

type powerEnvelope struct {
	TotalPower float64 `json:"totalPower"`
}

type historyEnvelope struct {
	Samples []PowerSample `json:"samples"`
	Count   int           `json:"count"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	var apiErr APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return err
	}
	return checkResponse(resp, &apiErr)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var apiErr APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(out).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return err
	}
	return checkResponse(resp, &apiErr)
}

func checkResponse(resp *resty.Response, apiErr *APIError) error {
	if !resp.IsError() {
		return nil
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Code == "" {
		// Non-envelope failure, e.g. a proxy in front of the API.
		apiErr.Code = "HTTP_ERROR"
		apiErr.Message = resp.Status()
	}
	return apiErr
}

// Devices lists every registered device.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var out devicesEnvelope
	if err := c.get(ctx, "/api/devices", &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// Device fetches the detail view of one device.
func (c *Client) Device(ctx context.Context, id string) (DeviceDetail, error) {
	var out DeviceDetail
	if err := c.get(ctx, "/api/devices/"+id, &out); err != nil {
		return DeviceDetail{}, err
	}
	return out, nil
}

// SetLight switches a light on or off.
func (c *Client) SetLight(ctx context.Context, id string, on bool) (Device, error) {
	var out Device
	if err := c.post(ctx, "/api/devices/"+id+"/switch", map[string]bool{"on": on}, &out); err != nil {
		return Device{}, err
	}
	return out, nil
}

// SetFanSpeed sets a fan's speed step. Out-of-range values are clamped
// server-side; the returned device carries the applied speed.
func (c *Client) SetFanSpeed(ctx context.Context, id string, speed int) (Device, error) {
	var out Device
	if err := c.post(ctx, "/api/devices/"+id+"/speed", map[string]int{"speed": speed}, &out); err != nil {
		return Device{}, err
	}
	return out, nil
}

// SetSetpoint sets a thermostat's target temperature. Out-of-range
// values are clamped server-side.
func (c *Client) SetSetpoint(ctx context.Context, id string, setpoint float64) (Device, error) {
	var out Device
	if err := c.post(ctx, "/api/devices/"+id+"/setpoint", map[string]float64{"setpoint": setpoint}, &out); err != nil {
		return Device{}, err
	}
	return out, nil
}

// SetLock engages or releases a lock.
func (c *Client) SetLock(ctx context.Context, id string, locked bool) (Device, error) {
	var out Device
	if err := c.post(ctx, "/api/devices/"+id+"/lock", map[string]bool{"locked": locked}, &out); err != nil {
		return Device{}, err
	}
	return out, nil
}

// Logs fetches the full action history.
func (c *Client) Logs(ctx context.Context) ([]LogEntry, error) {
	var out logsEnvelope
	if err := c.get(ctx, "/api/logs", &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// DeviceLogs fetches the action history of one device.
func (c *Client) DeviceLogs(ctx context.Context, id string) ([]LogEntry, error) {
	var out logsEnvelope
	if err := c.get(ctx, "/api/devices/"+id+"/logs", &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Power fetches the current total draw in watts.
func (c *Client) Power(ctx context.Context) (float64, error) {
	var out powerEnvelope
	if err := c.get(ctx, "/api/power", &out); err != nil {
		return 0, err
	}
	return out.TotalPower, nil
}

// PowerHistory fetches the retained samples, oldest first.
func (c *Client) PowerHistory(ctx context.Context) ([]PowerSample, error) {
	var out historyEnvelope
	if err := c.get(ctx, "/api/power/history", &out); err != nil {
		return nil, err
	}
	return out.Samples, nil
}

// Status fetches the controller's runtime status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.get(ctx, "/api/status", &out); err != nil {
		return Status{}, err
	}
	return out, nil
}
