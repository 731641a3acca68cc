// Package client is a small Go client for the washops REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("washops: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("washops: %d: %s", e.Status, e.Message)
}

type Washer struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Area   string  `json:"area"`
	Active bool    `json:"active"`
	Rating float64 `json:"rating"`
}

type Request struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customerId"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	Area         string     `json:"area"`
	CarModel     string     `json:"carModel"`
	CarPlate     string     `json:"carPlate"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	AssignedTo   *string    `json:"assignedTo"`
	BeforeImages []string   `json:"beforeImages"`
	AfterImages  []string   `json:"afterImages"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

type UpdateRequest struct {
	Status       string   `json:"status"`
	AssignedTo   *string  `json:"assignedTo,omitempty"`
	BeforeImages []string `json:"beforeImages,omitempty"`
	AfterImages  []string `json:"afterImages,omitempty"`
}

type AreaAssignment struct {
	EmployeeID      string   `json:"employeeId"`
	Role            string   `json:"role"`
	HomeCity        string   `json:"homeCity,omitempty"`
	HomeArea        string   `json:"homeArea,omitempty"`
	AssignedCities  []string `json:"assignedCities"`
	AssignedTalukas []string `json:"assignedTalukas"`
}

type UpdateAreas struct {
	AssignedCities  []string `json:"assignedCities"`
	AssignedTalukas []string `json:"assignedTalukas"`
}

type Client struct {
	BaseURL *url.URL
	Token   string
	HTTP    *http.Client
}

// New parses baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	return &Client{
		BaseURL: u,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// MatchWashers lists the active washers serving area.
func (c *Client) MatchWashers(ctx context.Context, area string) ([]Washer, error) {
	var out []Washer
	if err := c.do(ctx, http.MethodGet, "/washers/match-customer-city/"+url.PathEscape(area), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Washer{}
	}
	return out, nil
}

func (c *Client) GetRequest(ctx context.Context, id string) (*Request, error) {
	var out Request
	if err := c.do(ctx, http.MethodGet, "/requests/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRequest sends PUT /requests/{id}; the status selects the transition.
func (c *Client) UpdateRequest(ctx context.Context, id string, body UpdateRequest) (*Request, error) {
	var out Request
	if err := c.do(ctx, http.MethodPut, "/requests/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignRequest(ctx context.Context, id, workerID string) (*Request, error) {
	var out Request
	body := map[string]string{"workerId": workerID}
	if err := c.do(ctx, http.MethodPost, "/requests/"+url.PathEscape(id)+"/assign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAreas(ctx context.Context, employeeID string) (*AreaAssignment, error) {
	var out AreaAssignment
	if err := c.do(ctx, http.MethodGet, "/areas/"+url.PathEscape(employeeID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAreas(ctx context.Context, employeeID string, body UpdateAreas) (*AreaAssignment, error) {
	var out AreaAssignment
	if err := c.do(ctx, http.MethodPut, "/areas/"+url.PathEscape(employeeID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, reqPath string, body, out any) error {
	u := *c.BaseURL
	u.Path = c.BaseURL.Path + unescaped(reqPath)
	u.RawPath = c.BaseURL.EscapedPath() + reqPath

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}
	return decode(raw, out)
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
}

// decode accepts both {"success":true,"data":...} and a bare payload.
func decode(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || out == nil {
		return nil
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil {
			if !*env.Success {
				return &APIError{Status: http.StatusOK, Code: env.Code, Message: env.Error}
			}
			if len(env.Data) == 0 || string(env.Data) == "null" {
				return nil
			}
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

func apiError(status int, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Code != "" || env.Error != "") {
		return &APIError{Status: status, Code: env.Code, Message: env.Error}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

func unescaped(p string) string {
	v, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return v
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
