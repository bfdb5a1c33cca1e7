// Package render drives an external 3D renderer over a single-endpoint
// JSON protocol. Every request carries a message_type discriminator:
// handshake, initialize, simulation, shutdown. Simulation responses
// return base64-encoded RGB and segmentation PNGs for the posted
// canopy frame.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/verdantlab/lettsim/internal/layout"
	"github.com/verdantlab/lettsim/internal/logging"
)

const (
	msgHandshake  = "handshake"
	msgInitialize = "initialize"
	msgSimulation = "simulation"
	msgShutdown   = "shutdown"
)

const (
	handshakeAttempts = 10
	breakerFailures   = 3
)

// ErrRejected reports a renderer response whose status was not success.
var ErrRejected = errors.New("render: renderer rejected request")

type request struct {
	MessageType string `json:"message_type"`
	ImageWidth  int    `json:"image_width,omitempty"`
	ImageHeight int    `json:"image_height,omitempty"`
}

type simulationRequest struct {
	MessageType string `json:"message_type"`
	layout.Frame
}

// Response is the renderer's reply. RGB and Segmentation hold base64
// PNG data on simulation replies.
type Response struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	RGB          string `json:"rgb,omitempty"`
	Segmentation string `json:"segmentation,omitempty"`
	Step         int    `json:"step,omitempty"`
}

func (r *Response) ok() bool {
	return r.Status == "success" || r.Status == "ok"
}

type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger

	handshakeWait time.Duration
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "renderer",
			Interval: 60 * time.Second,
			Timeout:  10 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= breakerFailures
			},
		}),
		log:           logger,
		handshakeWait: time.Second,
	}
}

func (c *Client) post(ctx context.Context, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("POST %s -> %s", c.url, res.Status)
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Handshake confirms the renderer is up, retrying with exponential
// backoff before giving up.
func (c *Client) Handshake(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.handshakeWait
	bo.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		resp, err := c.post(ctx, request{MessageType: msgHandshake})
		if err != nil {
			c.log.Debug("handshake attempt failed", "attempt", attempt, "err", err)
			return err
		}
		if !resp.ok() {
			c.log.Debug("handshake refused", "attempt", attempt, "status", resp.Status)
			return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
		}
		return nil
	}, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), handshakeAttempts-1))
	if err != nil {
		return fmt.Errorf("render: handshake failed after %d attempts: %w", attempt, err)
	}

	c.log.Info("renderer handshake complete", "url", c.url, "attempts", attempt)
	return nil
}

// Initialize tells the renderer what image dimensions to produce.
func (c *Client) Initialize(ctx context.Context, width, height int) error {
	resp, err := c.post(ctx, request{
		MessageType: msgInitialize,
		ImageWidth:  width,
		ImageHeight: height,
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	c.log.Info("renderer initialized", "width", width, "height", height)
	return nil
}

// Simulate posts a canopy frame and returns the rendered images. Calls
// run through a circuit breaker so a dead renderer fails fast instead
// of stalling every day rollover.
func (c *Client) Simulate(ctx context.Context, frame layout.Frame) (*Response, error) {
	start := time.Now()
	res, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.post(ctx, simulationRequest{MessageType: msgSimulation, Frame: frame})
		if err != nil {
			return nil, err
		}
		if !resp.ok() {
			return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp := res.(*Response)
	c.log.Debug("frame rendered",
		"step", resp.Step,
		"plants", len(frame.Lettuces),
		"rgb_bytes", len(resp.RGB),
		"segmentation_bytes", len(resp.Segmentation),
		"elapsed", time.Since(start))
	return resp, nil
}

// Shutdown asks the renderer to stop. Best effort: the renderer may
// already be gone, so failures are reported but not retried.
func (c *Client) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.post(ctx, request{MessageType: msgShutdown})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	c.log.Info("renderer shut down")
	return nil
}
