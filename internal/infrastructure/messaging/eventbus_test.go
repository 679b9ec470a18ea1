package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	return NewInMemoryEventBus(cfg)
}

func TestEventBus_SubscribeValidation(t *testing.T) {
	bus := newSyncBus()

	assert.Error(t, bus.Subscribe(shared.EventLevelUp, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

func TestEventBus_DeliversToTypeSubscribers(t *testing.T) {
	bus := newSyncBus()

	var received []shared.EventType
	err := bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error {
		received = append(received, event.EventType())
		return nil
	})
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventLevelUp, "learner-1")))
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventBadgeEarned, "learner-1")))

	assert.Equal(t, []shared.EventType{shared.EventLevelUp}, received)
}

func TestEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := newSyncBus()

	var received []shared.EventType
	err := bus.SubscribeAll(func(event shared.Event) error {
		received = append(received, event.EventType())
		return nil
	})
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventScrapeStarted, "pipeline")))
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventCatalogUpdated, "pipeline")))
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventScrapeCompleted, "pipeline")))

	assert.Equal(t, []shared.EventType{
		shared.EventScrapeStarted,
		shared.EventCatalogUpdated,
		shared.EventScrapeCompleted,
	}, received)
}

func TestEventBus_SynchronousDeliveryPreservesOrder(t *testing.T) {
	bus := newSyncBus()

	var order []string
	_ = bus.Subscribe(shared.EventLessonCompleted, func(event shared.Event) error {
		order = append(order, "first")
		return nil
	})
	_ = bus.Subscribe(shared.EventLessonCompleted, func(event shared.Event) error {
		order = append(order, "second")
		return nil
	})

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventLessonCompleted, "learner-1")))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventBus_HandlerErrorDoesNotPropagate(t *testing.T) {
	bus := newSyncBus()

	delivered := false
	_ = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error {
		return errors.New("observer broke")
	})
	_ = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error {
		delivered = true
		return nil
	})

	// A broken observer never fails the publishing operation, and later
	// handlers still run.
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventLevelUp, "learner-1")))
	assert.True(t, delivered)
}

func TestEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := newSyncBus()
	assert.NoError(t, bus.Close())

	err := bus.Publish(shared.NewBaseEvent(shared.EventLevelUp, "learner-1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is safe.
	assert.NoError(t, bus.Close())
}

func TestEventBus_Metrics(t *testing.T) {
	bus := newSyncBus()

	_ = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error { return nil })
	_ = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error { return errors.New("boom") })

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventLevelUp, "learner-1")))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(2), snapshot.TotalHandlerExecs)
	assert.InDelta(t, 0.5, snapshot.HandlerSuccessRate, 0.001)
}

func TestEventBus_AsyncModeCompletesOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	done := make(chan shared.EventType, 4)
	_ = bus.SubscribeAll(func(event shared.Event) error {
		done <- event.EventType()
		return nil
	})

	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventBadgeEarned, "learner-1")))
	assert.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventLevelUp, "learner-1")))

	received := map[shared.EventType]bool{}
	for i := 0; i < 2; i++ {
		select {
		case et := <-done:
			received[et] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for async delivery")
		}
	}
	assert.True(t, received[shared.EventBadgeEarned])
	assert.True(t, received[shared.EventLevelUp])

	assert.NoError(t, bus.Close())
}
