package event

import (
	"sync"
	"testing"
)

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{TopicVariableTimeout, "resolve", true},
		{TopicVariableTimeout, "resolve.variable", true},
		{TopicVariableTimeout, TopicVariableTimeout, true},
		{TopicVariableTimeout, "", true},
		{TopicVariableTimeout, "resolve.code", false},
		{TopicTabChanged, "resolve", false},
		{"resolver.x", "resolve", false}, // prefix must end on a dot boundary
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+"/"+string(tt.pattern), func(t *testing.T) {
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("resolve", func(ev Event) {
		got = append(got, ev)
	})

	bus.Publish(TopicVariableTimeout, "sess-1", "USER")
	bus.Publish(TopicTabChanged, "sess-1", 2) // not under resolve

	if len(got) != 1 {
		t.Fatalf("received %d events, want 1", len(got))
	}
	if got[0].Topic != TopicVariableTimeout || got[0].Session != "sess-1" {
		t.Errorf("event = %+v", got[0])
	}
	if got[0].Time.IsZero() {
		t.Error("event time must be set")
	}
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()

	count := 0
	sub := bus.Subscribe("", func(Event) { count++ })

	bus.Publish(TopicTabChanged, "", 1)
	sub.Cancel()
	bus.Publish(TopicTabChanged, "", 2)

	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}
}

func TestBus_PanickingHandler(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("", func(Event) { panic("boom") })
	delivered := false
	bus.Subscribe("", func(Event) { delivered = true })

	// Must not panic, and other handlers still run.
	bus.Publish(TopicCodeError, "", nil)

	if !delivered {
		t.Error("a panicking handler must not block other subscribers")
	}
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("resolve", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(TopicCodeError, "", nil)
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler ran %d times, want 10", count)
	}
}
