package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*Event
	emitErr error
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, context.Background(), &Event{EventType: TypeReadingStored})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}

	EmitAsync(emitter, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 0 {
		t.Errorf("expected 0 events, got %d", len(got))
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	temp := 4.2
	event := &Event{
		BoxID:       "SMARTBOX-001",
		EventType:   TypeReadingStored,
		Temperature: &temp,
		CreatedAt:   time.Now().UTC(),
	}

	EmitAsync(emitter, context.Background(), event)
	time.Sleep(100 * time.Millisecond)

	got := emitter.getEvents()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].BoxID != "SMARTBOX-001" {
		t.Errorf("event box_id = %q, want %q", got[0].BoxID, "SMARTBOX-001")
	}
	if got[0].EventType != TypeReadingStored {
		t.Errorf("event type = %q, want %q", got[0].EventType, TypeReadingStored)
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the request context is already gone

	EmitAsync(emitter, ctx, &Event{EventType: TypeBoxClaimed})
	time.Sleep(100 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", len(got))
	}
}

func TestEmitAsync_ErrorHandling(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: context.DeadlineExceeded}

	// Should not panic; the error is logged, not returned.
	EmitAsync(emitter, context.Background(), &Event{EventType: TypeAccountApproved})
	time.Sleep(100 * time.Millisecond)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), &Event{EventType: TypeReadingStored})
		}()
	}
	wg.Wait()
	time.Sleep(200 * time.Millisecond)

	if got := emitter.getEvents(); len(got) != 10 {
		t.Errorf("expected 10 events, got %d", len(got))
	}
}
