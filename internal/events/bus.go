// Package events implements the per-tick server -> client event fan-out:
// a FIFO of Events, each optionally filtered to a client subset and gated
// on spatial chunk interest, flushed once per tick into per-client
// messages plus one batched message for external transports.
//
// Grounded on _examples/original_source/server/world/systems/events.rs
// (EventsSystem): this keeps that file's dispatch algorithm (drop-if-idle,
// id-list normalization above a small-scan threshold, Direct/single-client/
// single-Include-target fast paths before the general fan-out, one batched
// transport message) but drops its hand-unrolled per-length match arms —
// those exist in the original only to dodge Vec bounds-check overhead in a
// hot ECS system, which has no equivalent idiomatic-Go form; a plain loop
// over a slice is what this codebase's other hot paths (light.FloodLight's
// BFS, mesh.Builder's bucket map) already use.
package events

import (
	"encoding/json"
	"sort"
	"sync"
)

// smallFilterScanLimit is the id-list length below which a linear scan is
// cheaper than paying for a sort to enable binary search.
const smallFilterScanLimit = 8

// Sender delivers an already-encoded wire message to one recipient (a
// client's outgoing network channel, or an external transport).
type Sender interface {
	Send(payload []byte)
}

// Client is one connected recipient eligible for per-client event delivery.
type Client struct {
	ID     string
	Sender Sender
}

// Interests reports whether a client is subscribed to a chunk, gating
// Events that carry a spatial Location. A nil Interests treats every
// client as interested in every location.
type Interests interface {
	IsInterested(clientID string, coord [2]int32) bool
}

// Bus holds the outgoing event queue. Enqueue is safe to call from any
// goroutine; Flush must be called from the tick loop that owns clients and
// transports.
type Bus struct {
	mu    sync.Mutex
	queue []Event
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Enqueue appends an event to the FIFO.
func (b *Bus) Enqueue(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()
}

// envelope is the Event wire form: message type tag "Event", a world name,
// and either a single event or a batch.
type envelope struct {
	Type      string      `json:"type"`
	WorldName string      `json:"worldName"`
	Event     *wireEvent  `json:"event,omitempty"`
	Events    []wireEvent `json:"events,omitempty"`
}

func encodeEnvelope(worldName string, events []wireEvent) ([]byte, bool) {
	if len(events) == 0 {
		return nil, false
	}
	env := envelope{Type: "Event", WorldName: worldName}
	if len(events) == 1 {
		env.Event = &events[0]
	} else {
		env.Events = events
	}
	encoded, err := json.Marshal(env)
	if err != nil {
		return nil, false
	}
	return encoded, true
}

// Flush drains the queue and dispatches every event to its resolved
// targets, in enqueue order, then sends the batched transport message.
// Safe to call with zero clients and zero transports (the queue is simply
// cleared).
func (b *Bus) Flush(worldName string, clients map[string]*Client, interests Interests, transports []Sender) {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	b.mu.Unlock()

	if len(queue) == 0 {
		return
	}

	hasTransports := len(transports) > 0
	if len(clients) == 0 && !hasTransports {
		return
	}

	dispatch := make(map[string][]wireEvent, len(clients))
	var touched []string
	var transportBatch []wireEvent

	push := func(id string, w wireEvent) {
		if len(dispatch[id]) == 0 {
			touched = append(touched, id)
		}
		dispatch[id] = append(dispatch[id], w)
	}

	isInterested := func(loc *[2]int32, id string) bool {
		if loc == nil || interests == nil {
			return true
		}
		return interests.IsInterested(id, *loc)
	}

	var singleClientID string
	singleClient := len(clients) == 1
	if singleClient {
		for id := range clients {
			singleClientID = id
		}
	}

	for _, e := range queue {
		normalizeFilter(e.Filter)
		w := e.toWire()

		if hasTransports {
			transportBatch = append(transportBatch, w)
		}
		if len(clients) == 0 {
			continue
		}

		if e.Filter != nil && e.Filter.Kind == FilterDirect {
			if _, ok := clients[e.Filter.ID]; ok && isInterested(e.Location, e.Filter.ID) {
				push(e.Filter.ID, w)
			}
			continue
		}

		if singleClient {
			if filterAllows(e.Filter, singleClientID) && isInterested(e.Location, singleClientID) {
				push(singleClientID, w)
			}
			continue
		}

		if e.Filter != nil && e.Filter.Kind == FilterInclude {
			if target, ok := singleIncludeTarget(e.Filter.IDs); ok {
				if _, known := clients[target]; known && isInterested(e.Location, target) {
					push(target, w)
				}
				continue
			}
		}

		if e.Location == nil && targetsAllClients(e.Filter) {
			for id := range clients {
				push(id, w)
			}
			continue
		}

		for id := range clients {
			if !filterAllows(e.Filter, id) {
				continue
			}
			if !isInterested(e.Location, id) {
				continue
			}
			push(id, w)
		}
	}

	for _, id := range touched {
		wireEvents := dispatch[id]
		client, ok := clients[id]
		if !ok || len(wireEvents) == 0 {
			continue
		}
		if encoded, ok := encodeEnvelope(worldName, wireEvents); ok {
			client.Sender.Send(encoded)
		}
	}

	if hasTransports {
		if encoded, ok := encodeEnvelope(worldName, transportBatch); ok {
			for _, t := range transports {
				t.Send(encoded)
			}
		}
	}
}

// filterAllows reports whether id passes filter (nil means everyone).
func filterAllows(filter *ClientFilter, id string) bool {
	if filter == nil {
		return true
	}
	switch filter.Kind {
	case FilterAll:
		return true
	case FilterInclude:
		return containsID(filter.IDs, id)
	case FilterExclude:
		return !containsID(filter.IDs, id)
	default: // FilterDirect is handled before this path is reached
		return false
	}
}

func targetsAllClients(filter *ClientFilter) bool {
	if filter == nil || filter.Kind == FilterAll {
		return true
	}
	return filter.Kind == FilterExclude && len(filter.IDs) == 0
}

// normalizeFilter sorts and deduplicates a large Include/Exclude id list in
// place so later membership checks can binary-search instead of scanning.
func normalizeFilter(filter *ClientFilter) {
	if filter == nil || (filter.Kind != FilterInclude && filter.Kind != FilterExclude) {
		return
	}
	ids := filter.IDs
	if len(ids) <= smallFilterScanLimit {
		return
	}
	if !sort.StringsAreSorted(ids) {
		sort.Strings(ids)
	}
	filter.IDs = dedupSorted(ids)
}

func dedupSorted(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []string, target string) bool {
	if len(ids) > smallFilterScanLimit {
		i := sort.SearchStrings(ids, target)
		return i < len(ids) && ids[i] == target
	}
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// singleIncludeTarget reports whether every id in an Include filter names
// the same client, returning that id.
func singleIncludeTarget(ids []string) (string, bool) {
	if len(ids) == 0 || len(ids) > smallFilterScanLimit {
		return "", false
	}
	first := ids[0]
	for _, id := range ids[1:] {
		if id != first {
			return "", false
		}
	}
	return first, true
}
