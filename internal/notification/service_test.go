package notification

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/models"
)

type statusUpdate struct {
	requestID string
	status    string
	lastError string
}

type fakeStore struct {
	mu      sync.Mutex
	created []models.Alert
	updates chan statusUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: make(chan statusUpdate, 8)}
}

func (f *fakeStore) CreateAlert(_ context.Context, a models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, a)
	return nil
}

func (f *fakeStore) UpdateAlertStatus(_ context.Context, requestID, status, lastError string) error {
	f.updates <- statusUpdate{requestID, status, lastError}
	return nil
}

func testConfig(queue int) config.Config {
	var cfg config.Config
	cfg.Notification.QueueSize = queue
	cfg.Notification.MaxWorkers = 2
	return cfg
}

func waitUpdate(t *testing.T, store *fakeStore) statusUpdate {
	t.Helper()
	select {
	case u := <-store.updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status update")
		return statusUpdate{}
	}
}

func TestService_DispatchesAndRecords(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logging.NewWriter(io.Discard, "error"), testConfig(4))

	got := make(chan models.Alert, 1)
	svc.Register("telegram", func(_ context.Context, a models.Alert) error {
		got <- a
		return nil
	})

	var wg sync.WaitGroup
	svc.Start(&wg)
	defer func() {
		svc.Stop()
		wg.Wait()
	}()

	svc.QueueAlert(models.Alert{RequestID: "r-1", Metric: models.MetricVibration, Subject: "quake"})

	u := waitUpdate(t, store)
	assert.Equal(t, "r-1", u.requestID)
	assert.Equal(t, StatusSuccess, u.status)
	assert.Empty(t, u.lastError)
	assert.Equal(t, "quake", (<-got).Subject)

	store.mu.Lock()
	require.Len(t, store.created, 1)
	store.mu.Unlock()
}

func TestService_ProviderFailureMarksFailed(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logging.NewWriter(io.Discard, "error"), testConfig(4))
	svc.Register("telegram", func(context.Context, models.Alert) error {
		return errors.New("chat not found")
	})

	var wg sync.WaitGroup
	svc.Start(&wg)
	defer func() {
		svc.Stop()
		wg.Wait()
	}()

	svc.QueueAlert(models.Alert{RequestID: "r-2"})

	u := waitUpdate(t, store)
	assert.Equal(t, StatusFailed, u.status)
	assert.Contains(t, u.lastError, "telegram: chat not found")
}

func TestService_QueueFullDrops(t *testing.T) {
	svc := New(nil, logging.NewWriter(io.Discard, "error"), testConfig(1))

	svc.QueueAlert(models.Alert{RequestID: "a"})
	svc.QueueAlert(models.Alert{RequestID: "b"})

	assert.Len(t, svc.tasks, 1)
	assert.Equal(t, "a", (<-svc.tasks).RequestID)
}

func TestService_LogOnlyWithoutStore(t *testing.T) {
	svc := New(nil, logging.NewWriter(io.Discard, "error"), testConfig(1))
	assert.Equal(t, []string{"log"}, svc.providerNames())

	// no store and only the log provider: must not panic
	svc.handleAlert(models.Alert{RequestID: "c", Timestamp: time.Now()})
}
