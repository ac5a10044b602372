package handler

import (
	"context"
	"sync"

	c "github.com/mproffitt/printagent/pkg/config"
	"github.com/mproffitt/printagent/pkg/notification"
	p "github.com/mproffitt/printagent/pkg/processing"
	"github.com/mproffitt/printagent/pkg/queue"
	"github.com/mproffitt/printagent/pkg/watcher"
)

// Outcome The result of one dispatch attempt
type Outcome struct {
	Printed bool
}

// Option Overrides one of the service's collaborators
type Option func(*Service) error

// Service Watches every configured folder and prints what arrives
type Service struct {
	config   *c.Config
	settings c.Settings
	source   watcher.Source
	printer  p.Printer
	post     *p.PostProcessor
	notifier notification.Notifier
	queue    *queue.Queue

	mu         sync.Mutex
	cancel     context.CancelFunc
	watches    []*watch
	dispatcher *Dispatcher
	done       chan struct{}
}

type watch struct {
	folder   string
	sub      watcher.Subscription
	complete chan struct{}
}
