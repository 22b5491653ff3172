package controller

import (
	"github.com/fyodorov-ai/tsiolkovsky/model"
)

// Controller serves the HTTP API over an injected store.
type Controller struct {
	store model.Store
}

// New returns a controller backed by store.
func New(store model.Store) *Controller {
	return &Controller{store: store}
}
