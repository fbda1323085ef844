package gateway

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

	"github.com/sony/gobreaker"

	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
)

// Credentials supplies the bearer token and is told when the backend rejects it.
type Credentials interface {
	Token() string
	HandleUnauthorized()
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, creds Credentials, breaker *gobreaker.CircuitBreaker) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
		breaker:    breaker,
	}
}

// NewBreaker opens after maxFailures consecutive transport or 5xx failures.
func NewBreaker(name string, maxFailures int) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any

	// anonymous requests neither send the bearer token nor trigger the unauthorized hook.
	anonymous bool
}

type response struct {
	status  int
	payload []byte
}

type serverError struct {
	response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("backend responded %d", e.status)
}

func (c *Client) do(ctx context.Context, r request) error {
	var body []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return exceptions.New(exceptions.Validation, http.StatusBadRequest, "cannot encode request", err)
		}
		body = b
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, r.method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if !r.anonymous && c.creds != nil {
			if token := c.creds.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		out := response{status: resp.StatusCode, payload: payload}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverError{out}
		}
		return out, nil
	})

	log := logging.Logger.WithFields(map[string]interface{}{
		"method": r.method,
		"path":   r.path,
	})

	if err != nil {
		var srvErr *serverError
		switch {
		case errors.As(err, &srvErr):
			log.Warnf("backend error %d", srvErr.status)
			return c.statusError(r, srvErr.response)
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			log.Warn("backend unavailable, circuit open")
			return exceptions.New(exceptions.Transient, http.StatusServiceUnavailable, "backend unavailable", err)
		default:
			log.Warnf("request failed: %v", err)
			return exceptions.New(exceptions.Transient, http.StatusBadGateway, "network error", err)
		}
	}

	resp := result.(response)
	if resp.status >= http.StatusBadRequest {
		return c.statusError(r, resp)
	}

	if r.out == nil || len(bytes.TrimSpace(resp.payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.payload, r.out); err != nil {
		log.Warnf("cannot decode response: %v", err)
		return exceptions.New(exceptions.Transient, http.StatusBadGateway, "malformed backend response", err)
	}
	return nil
}

func (c *Client) statusError(r request, resp response) error {
	switch resp.status {
	case http.StatusUnauthorized:
		if !r.anonymous && c.creds != nil {
			c.creds.HandleUnauthorized()
		}
		return exceptions.New(exceptions.Unauthenticated, resp.status, detail(resp.payload, "unauthenticated"), nil)
	case http.StatusNotFound:
		return exceptions.New(exceptions.NotFoundEmpty, resp.status, detail(resp.payload, "not found"), nil)
	default:
		return exceptions.New(exceptions.Transient, resp.status, detail(resp.payload, http.StatusText(resp.status)), nil)
	}
}

// detail extracts the backend's {"detail": ...} message.
func detail(payload []byte, fallback string) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Detail) == 0 {
		return fallback
	}

	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil && msg != "" {
		return msg
	}
	return string(body.Detail)
}
