package chart

import (
	"sync"

	"github.com/matzehuels/scrolly/pkg/errors"
)

// Handler applies one step. Handlers assign absolute styles and never read
// the styles left by an earlier step, so the outcome of a trigger depends on
// the step id alone.
type Handler func()

// Controller dispatches named steps to handlers. The last triggered step
// wins; there is no queue and no ordering between steps.
type Controller struct {
	mu       sync.Mutex
	handlers map[string]Handler
	order    []string
	active   string
}

// NewController returns an empty controller.
func NewController() *Controller {
	return &Controller{handlers: make(map[string]Handler)}
}

// Bind registers handler for id. Each id can be bound once.
func (c *Controller) Bind(id string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" || h == nil {
		return errors.New(errors.ErrCodeInvalidInput, "step id and handler are required")
	}
	if _, dup := c.handlers[id]; dup {
		return errors.New(errors.ErrCodeInvalidInput, "step %q is already bound", id)
	}
	c.handlers[id] = h
	c.order = append(c.order, id)
	return nil
}

// Trigger runs the handler bound to id and records it as active.
func (c *Controller) Trigger(id string) error {
	c.mu.Lock()
	h, ok := c.handlers[id]
	if ok {
		c.active = id
	}
	c.mu.Unlock()

	if !ok {
		return errors.New(errors.ErrCodeUnknownStep, "unknown step %q", id)
	}
	h()
	return nil
}

// Active returns the last triggered step id, or "".
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// IDs returns the bound step ids in bind order.
func (c *Controller) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}
