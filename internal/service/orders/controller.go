// Package orders drives the admin order panel: loading the order list,
// deciding which transitions an order allows, and performing those transitions
// against the backend.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/domain"
)

type backend interface {
	GetWithRetry(ctx context.Context, path string, query url.Values, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Controller holds the admin-facing order list and its presentation state.
type Controller struct {
	api        backend
	logger     *slog.Logger
	messageTTL time.Duration

	mu      sync.Mutex
	orders  []domain.Order
	message string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithMessageTTL overrides how long a success message stays visible.
func WithMessageTTL(d time.Duration) Option {
	return func(c *Controller) { c.messageTTL = d }
}

// New creates a Controller over the shared API client.
func New(client backend, opts ...Option) *Controller {
	c := &Controller{
		api:        client,
		logger:     slog.Default(),
		messageTTL: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	// The backend has answered with both envelope keys over time; accept
	// either.
	Data   []domain.Order `json:"data"`
	Orders []domain.Order `json:"orders"`
}

// Load fetches the order list under the capped retry policy and replaces the
// in-memory list wholesale.
func (c *Controller) Load(ctx context.Context) error {
	var resp listResponse
	if err := c.api.GetWithRetry(ctx, "/admin/orders", nil, &resp); err != nil {
		c.setMessage(loadErrMessage(err))
		return err
	}

	list := resp.Data
	if list == nil {
		list = resp.Orders
	}

	c.mu.Lock()
	c.orders = list
	c.message = ""
	c.mu.Unlock()
	return nil
}

type actionResponse struct {
	Message string `json:"message"`
}

// PerformAction sends an action for an order — never a target status; the
// server computes the resulting status — then reloads the list so every view
// observes the transition. The server's message is surfaced verbatim, with a
// generic fallback only if it omitted one.
func (c *Controller) PerformAction(ctx context.Context, orderID int64, action string) error {
	body := map[string]any{
		"id":     orderID,
		"action": action,
	}
	var resp actionResponse
	path := fmt.Sprintf("/admin/orders/%d/update-stats", orderID)
	if err := c.api.Put(ctx, path, body, &resp); err != nil {
		c.setMessage(api.UserMessage(err))
		return err
	}

	if err := c.Load(ctx); err != nil {
		// The action itself succeeded; the reload failure message is
		// already recorded.
		return err
	}

	message := strings.TrimSpace(resp.Message)
	if message == "" {
		message = fmt.Sprintf("Order #%d updated.", orderID)
	}
	c.setTransientMessage(message)
	return nil
}

// Orders returns a copy of the loaded order list.
func (c *Controller) Orders() []domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Filter returns the orders matching a search query against customer name,
// product text, or order id.
func (c *Controller) Filter(query string) []domain.Order {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.Orders()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Order
	for _, o := range c.orders {
		if strings.Contains(strings.ToLower(o.CustomerName), query) ||
			strings.Contains(strings.ToLower(o.Products), query) ||
			strings.Contains(fmt.Sprintf("%d", o.ID), query) {
			out = append(out, o)
		}
	}
	return out
}

// StatusCount is one entry of the panel's status summary.
type StatusCount struct {
	Label string
	Count int
}

// Stats summarizes the loaded orders by the display statuses the panel shows.
func (c *Controller) Stats() []StatusCount {
	counts := map[string]int{}
	c.mu.Lock()
	for _, o := range c.orders {
		counts[domain.DisplayStatus(o.Status)]++
	}
	c.mu.Unlock()

	labels := []string{"Pending", "To Pick-Up", "To Deliver", "Completed"}
	out := make([]StatusCount, 0, len(labels))
	for _, label := range labels {
		out = append(out, StatusCount{Label: label, Count: counts[label]})
	}
	return out
}

// Message returns the currently displayed banner message, success or error.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Controller) setMessage(msg string) {
	c.mu.Lock()
	c.message = msg
	c.mu.Unlock()
}

// setTransientMessage shows a success message and clears it after the TTL,
// but only if it is still the displayed message: an error that arrived during
// the window must not be wiped.
func (c *Controller) setTransientMessage(msg string) {
	c.setMessage(msg)
	time.AfterFunc(c.messageTTL, func() {
		c.mu.Lock()
		if c.message == msg {
			c.message = ""
		}
		c.mu.Unlock()
	})
}

// loadErrMessage maps order-list fetch failures to the panel's wording.
func loadErrMessage(err error) string {
	var he *api.HTTPError
	if errors.As(err, &he) {
		switch he.Status {
		case http.StatusForbidden:
			return "You don't have permission to view orders."
		case http.StatusNotFound:
			return "Orders endpoint not found."
		}
	}
	return api.UserMessage(err)
}
