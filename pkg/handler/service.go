package handler

import (
	"context"
	"errors"

	c "github.com/mproffitt/printagent/pkg/config"
	"github.com/mproffitt/printagent/pkg/notification"
	p "github.com/mproffitt/printagent/pkg/processing"
	"github.com/mproffitt/printagent/pkg/queue"
	"github.com/mproffitt/printagent/pkg/watcher"
	log "github.com/sirupsen/logrus"
)

// WithSource Use the given watcher source instead of the configured backend
func WithSource(source watcher.Source) Option {
	return func(s *Service) error {
		s.source = source
		return nil
	}
}

// WithPrinter Use the given printer instead of the external printing tool
func WithPrinter(printer p.Printer) Option {
	return func(s *Service) error {
		s.printer = printer
		return nil
	}
}

// WithNotifier Use the given notifier for failed dispatches
func WithNotifier(notifier notification.Notifier) Option {
	return func(s *Service) error {
		s.notifier = notifier
		return nil
	}
}

// New Build the service from a loaded configuration
func New(config *c.Config, opts ...Option) (s *Service, err error) {
	if config == nil {
		return nil, errors.New("handler requires a configuration")
	}
	s = &Service{
		config:   config,
		settings: config.Settings(),
		queue:    queue.New(),
	}
	for _, opt := range opts {
		if err = opt(s); err != nil {
			return nil, err
		}
	}

	if s.source == nil {
		if s.source, err = watcher.New(config.Watcher); err != nil {
			return nil, err
		}
	}
	if s.printer == nil {
		s.printer = &p.Agent{
			Executable: s.settings.PrinterAgent,
			Settings:   config.PrintSettings,
			StrictExit: config.StrictExitCode,
		}
	}
	if s.notifier == nil {
		s.notifier = notification.New(config.Notifications)
	}
	if s.post, err = p.NewPostProcessor(s.settings.ArchiveFolder, config.ArchiveMode); err != nil {
		return nil, err
	}
	return s, nil
}

// Queue The queue shared by the settle stage and the dispatch loop
func (s *Service) Queue() *queue.Queue {
	return s.queue
}

// Start Watch every folder and begin dispatching
//
// Returns once the watches are established. Fails if no folder can be watched.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("service already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	var settle *Settle = NewSettle(ctx, s.settings.SettleDelay, s.queue)
	if s.watches, err = s.watchFolders(settle); err != nil {
		cancel()
		return
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	s.dispatcher = NewDispatcher(s.queue, func(ctx context.Context, item queue.Item) {
		s.Handle(ctx, item)
	}, s.config.MaxWorkers)

	go func(done chan struct{}) {
		defer close(done)
		s.dispatcher.Run(ctx)
	}(s.done)

	log.Info("Service started")
	return nil
}

// Stop Stop watching and dispatching
//
// Printing tools already running are not interrupted. In-flight workers
// are awaited for at most the configured shutdown grace.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	log.Info("Shutting down listeners")
	s.cancel()
	for _, w := range s.watches {
		w.close()
	}
	<-s.done

	if grace := s.config.ShutdownGrace(); grace > 0 {
		if !s.dispatcher.Wait(grace) {
			log.Warnf("Workers still running after %s, not waiting any longer", grace)
		}
	}

	s.cancel = nil
	s.watches = nil
	log.Info("Service stopped")
}
