package events

import (
	"encoding/json"
	"testing"
)

type captureSender struct {
	messages [][]byte
}

func (c *captureSender) Send(payload []byte) {
	c.messages = append(c.messages, payload)
}

func decodeEnvelope(t *testing.T, payload []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestFlushDropsWhenNoClientsOrTransports(t *testing.T) {
	b := NewBus()
	b.Enqueue(Event{Name: "tick"})
	b.Flush("world", nil, nil, nil)
	// No panic, no observable side effect: nothing to assert on besides
	// the queue being drained for the next tick.
	b.Flush("world", nil, nil, nil)
}

func TestFlushAllSendsToEveryClient(t *testing.T) {
	b := NewBus()
	b.Enqueue(Event{Name: "join"})

	a := &captureSender{}
	bb := &captureSender{}
	clients := map[string]*Client{
		"a": {ID: "a", Sender: a},
		"b": {ID: "b", Sender: bb},
	}
	b.Flush("world", clients, nil, nil)

	if len(a.messages) != 1 || len(bb.messages) != 1 {
		t.Fatalf("expected both clients to receive one message, got a=%d b=%d", len(a.messages), len(bb.messages))
	}
	env := decodeEnvelope(t, a.messages[0])
	if env.Event == nil || env.Event.Name != "join" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestFlushDirectOnlyReachesNamedClient(t *testing.T) {
	b := NewBus()
	filter := Direct("a")
	b.Enqueue(Event{Name: "whisper", Filter: filter})

	a := &captureSender{}
	bb := &captureSender{}
	clients := map[string]*Client{
		"a": {ID: "a", Sender: a},
		"b": {ID: "b", Sender: bb},
	}
	b.Flush("world", clients, nil, nil)

	if len(a.messages) != 1 {
		t.Fatalf("expected client a to receive the direct event, got %d messages", len(a.messages))
	}
	if len(bb.messages) != 0 {
		t.Fatalf("expected client b to receive nothing, got %d messages", len(bb.messages))
	}
}

func TestFlushExcludeSkipsListedClients(t *testing.T) {
	b := NewBus()
	b.Enqueue(Event{Name: "broadcast", Filter: Exclude("b")})

	a := &captureSender{}
	bb := &captureSender{}
	clients := map[string]*Client{
		"a": {ID: "a", Sender: a},
		"b": {ID: "b", Sender: bb},
	}
	b.Flush("world", clients, nil, nil)

	if len(a.messages) != 1 {
		t.Fatalf("expected client a to receive the event, got %d", len(a.messages))
	}
	if len(bb.messages) != 0 {
		t.Fatalf("expected client b to be excluded, got %d messages", len(bb.messages))
	}
}

type fakeInterests struct {
	interested map[string]map[[2]int32]bool
}

func (f *fakeInterests) IsInterested(clientID string, coord [2]int32) bool {
	return f.interested[clientID][coord]
}

func TestFlushLocationGatesOnInterest(t *testing.T) {
	b := NewBus()
	loc := [2]int32{3, 4}
	b.Enqueue(Event{Name: "chunk-update", Location: &loc})

	a := &captureSender{}
	bb := &captureSender{}
	clients := map[string]*Client{
		"a": {ID: "a", Sender: a},
		"b": {ID: "b", Sender: bb},
	}
	interests := &fakeInterests{interested: map[string]map[[2]int32]bool{
		"a": {loc: true},
	}}
	b.Flush("world", clients, interests, nil)

	if len(a.messages) != 1 {
		t.Fatalf("expected interested client a to receive the event, got %d", len(a.messages))
	}
	if len(bb.messages) != 0 {
		t.Fatalf("expected uninterested client b to receive nothing, got %d messages", len(bb.messages))
	}
}

func TestFlushBatchesMultipleEventsForOneClient(t *testing.T) {
	b := NewBus()
	b.Enqueue(Event{Name: "first"})
	b.Enqueue(Event{Name: "second"})

	a := &captureSender{}
	clients := map[string]*Client{"a": {ID: "a", Sender: a}}
	b.Flush("world", clients, nil, nil)

	if len(a.messages) != 1 {
		t.Fatalf("expected a single batched message, got %d", len(a.messages))
	}
	env := decodeEnvelope(t, a.messages[0])
	if env.Event != nil {
		t.Fatalf("expected a batch under events, got a single event field")
	}
	if len(env.Events) != 2 {
		t.Fatalf("expected 2 batched events, got %d", len(env.Events))
	}
}

func TestFlushSendsTransportUnionMessage(t *testing.T) {
	b := NewBus()
	b.Enqueue(Event{Name: "spawn"})
	b.Enqueue(Event{Name: "despawn"})

	transport := &captureSender{}
	b.Flush("world", nil, nil, []Sender{transport})

	if len(transport.messages) != 1 {
		t.Fatalf("expected one batched transport message, got %d", len(transport.messages))
	}
	env := decodeEnvelope(t, transport.messages[0])
	if len(env.Events) != 2 {
		t.Fatalf("expected 2 events in the transport batch, got %d", len(env.Events))
	}
}

func TestContainsIDLinearAndSortedPaths(t *testing.T) {
	small := []string{"b", "a", "c"}
	if !containsID(small, "a") || containsID(small, "z") {
		t.Fatalf("linear-scan containsID behaved unexpectedly")
	}

	large := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		large = append(large, string(rune('a'+i)))
	}
	filter := &ClientFilter{Kind: FilterInclude, IDs: append([]string{}, large...)}
	normalizeFilter(filter)
	if !containsID(filter.IDs, "a") || containsID(filter.IDs, "z") {
		t.Fatalf("binary-search containsID behaved unexpectedly")
	}
}

func TestSingleIncludeTargetDetectsUniformFilters(t *testing.T) {
	if target, ok := singleIncludeTarget([]string{"k", "k", "k"}); !ok || target != "k" {
		t.Fatalf("expected uniform filter to resolve to k, got %q ok=%v", target, ok)
	}
	if _, ok := singleIncludeTarget([]string{"k", "k", "z"}); ok {
		t.Fatalf("expected mixed filter to not resolve to a single target")
	}
}

func TestTargetsAllClientsDetectsAllAndEmptyExclude(t *testing.T) {
	if !targetsAllClients(nil) {
		t.Fatalf("nil filter should target all clients")
	}
	if !targetsAllClients(All()) {
		t.Fatalf("All() filter should target all clients")
	}
	if !targetsAllClients(Exclude()) {
		t.Fatalf("empty Exclude filter should target all clients")
	}
	if targetsAllClients(Exclude("a")) {
		t.Fatalf("non-empty Exclude filter should not target all clients")
	}
	if targetsAllClients(Include("a")) {
		t.Fatalf("Include filter should not target all clients")
	}
}
