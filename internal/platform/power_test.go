package platform

import (
	"context"
	"testing"
	"time"
)

func TestManualMonitorDeliversTriggeredEvents(t *testing.T) {
	m := NewManualMonitor()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.Trigger(true)

	select {
	case ev := <-m.Events():
		if !ev.IsSleeping {
			t.Fatalf("expected IsSleeping true")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sleep event")
	}

	m.Trigger(false)
	select {
	case ev := <-m.Events():
		if ev.IsSleeping {
			t.Fatalf("expected IsSleeping false")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for wake event")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestManualMonitorTriggerDoesNotBlockWhenUnread(t *testing.T) {
	m := NewManualMonitor()
	for i := 0; i < 100; i++ {
		m.Trigger(i%2 == 0)
	}
	m.Stop()
}
