package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/metrics"
	"sensor-dashboard/internal/models"
)

// Alert delivery states persisted alongside each alert.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Store persists alerts and their delivery outcome.
type Store interface {
	CreateAlert(ctx context.Context, a models.Alert) error
	UpdateAlertStatus(ctx context.Context, requestID, status, lastError string) error
}

// SendFunc delivers one alert through a single channel.
type SendFunc func(context.Context, models.Alert) error

// Service processes queued alerts on a small worker pool and dispatches them
// to every registered provider.
type Service struct {
	store         Store
	logger        *logging.Logger
	config        config.Config
	tasks         chan models.Alert
	ctx           context.Context
	cancel        context.CancelFunc
	wg            *sync.WaitGroup
	mu            sync.RWMutex
	providerFuncs map[string]SendFunc
}

// New constructs a notification Service. store may be nil, in which case
// alerts are dispatched without being recorded.
func New(store Store, logger *logging.Logger, cfg config.Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	queue := cfg.Notification.QueueSize
	if queue < 1 {
		queue = 1
	}
	svc := &Service{
		store:  store,
		logger: logger,
		config: cfg,
		tasks:  make(chan models.Alert, queue),
		ctx:    ctx,
		cancel: cancel,
	}
	svc.providerFuncs = map[string]SendFunc{
		"log": svc.logAlert,
	}
	return svc
}

// Register adds or replaces a delivery channel.
func (s *Service) Register(name string, fn SendFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerFuncs[name] = fn
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	workers := s.config.Notification.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels in-flight deliveries and stops the workers.
func (s *Service) Stop() {
	s.cancel()
}

// QueueAlert enqueues an alert. It never blocks: when the queue is full the
// alert is dropped.
func (s *Service) QueueAlert(a models.Alert) {
	select {
	case s.tasks <- a:
		s.logger.Infof("Queued alert: request_id=%s metric=%s", a.RequestID, a.Metric)
	default:
		metrics.IncNotification(metrics.ResultDropped)
		s.logger.Errorf("Queue full, dropping alert: request_id=%s", a.RequestID)
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case a := <-s.tasks:
			s.handleAlert(a)
		}
	}
}

// handleAlert records the alert, dispatches it and finalizes its status.
func (s *Service) handleAlert(a models.Alert) {
	if s.store != nil {
		if err := s.store.CreateAlert(s.ctx, a); err != nil {
			s.logger.Errorf("CreateAlert failed: %v", err)
		}
	}

	var failures []string
	for _, name := range s.providerNames() {
		s.mu.RLock()
		send := s.providerFuncs[name]
		s.mu.RUnlock()

		if err := send(s.ctx, a); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			s.logger.Errorf("Dispatch error via %s: %v", name, err)
			continue
		}
		s.logger.Debugf("Alert %s dispatched via %s", a.RequestID, name)
	}

	final, lastError := StatusSuccess, ""
	if len(failures) > 0 {
		final = StatusFailed
		lastError = failures[0]
		for _, f := range failures[1:] {
			lastError += "; " + f
		}
		metrics.IncNotification(metrics.ResultFailed)
	} else {
		metrics.IncNotification(metrics.ResultSent)
	}

	if s.store != nil {
		if err := s.store.UpdateAlertStatus(s.ctx, a.RequestID, final, lastError); err != nil {
			s.logger.Errorf("UpdateAlertStatus failed: %v", err)
		}
	}
	s.logger.Infof("Alert %s finished with status %s", a.RequestID, final)
}

func (s *Service) providerNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.providerFuncs))
	for name := range s.providerFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) logAlert(_ context.Context, a models.Alert) error {
	metrics.IncNotification(metrics.ResultLogged)
	s.logger.WithField("variant", a.Variant).Warnf("ALERT [%s] %s: %s (value=%.2f at %s)",
		a.Severity, a.Subject, a.Body, a.Value, a.Timestamp.Format(time.RFC3339))
	return nil
}
