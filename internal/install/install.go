// Package install offers to install the app when the host allows it. The
// host's own prompt is deferred and only re-issued after the user accepts
// ours.
package install

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/appstate"
)

type Outcome string

const (
	Accepted  Outcome = "accepted"
	Dismissed Outcome = "dismissed"
)

var ErrNoDeferredPrompt = errors.New("no deferred install prompt")

// Host is the platform side of installation. Prompt shows the platform's
// own confirmation and performs the install when accepted.
type Host interface {
	Installable() bool
	Prompt(ctx context.Context) (Outcome, error)
}

// Controller tracks the prompt for one session
type Controller struct {
	mu        sync.Mutex
	host      Host
	state     *appstate.Context
	log       *zap.Logger
	deferred  bool
	visible   bool
	installed bool
}

func NewController(host Host, state *appstate.Context, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{host: host, state: state, log: log}
}

// Check asks the host whether installation is on offer and, if so, records
// the deferred event.
func (c *Controller) Check() bool {
	if c.host == nil || !c.host.Installable() {
		return false
	}
	c.OfferReceived()
	return c.Visible()
}

// OfferReceived handles the host's "can install" event. The prompt is
// shown unless it was dismissed this session or the app is installed.
func (c *Controller) OfferReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.installed {
		return
	}
	c.deferred = true
	c.visible = !c.state.PromptDismissed()
}

func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible && c.deferred && !c.installed
}

// Accept hides our prompt and re-issues the deferred host prompt
func (c *Controller) Accept(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if !c.deferred {
		c.mu.Unlock()
		return "", ErrNoDeferredPrompt
	}
	c.deferred = false
	c.visible = false
	c.mu.Unlock()

	out, err := c.host.Prompt(ctx)
	if err != nil {
		c.log.Warn("install prompt failed", zap.Error(err))
		return "", err
	}
	c.log.Info("install prompt answered", zap.String("outcome", string(out)))
	if out == Accepted {
		c.Installed()
	}
	return out, nil
}

// Dismiss hides the prompt for the rest of the session
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()
	return c.state.DismissPrompt()
}

// Installed handles the host's "app installed" event
func (c *Controller) Installed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installed = true
	c.deferred = false
	c.visible = false
}

func (c *Controller) IsInstalled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installed
}
