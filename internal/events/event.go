package events

import "encoding/json"

// Event is one server -> client notification waiting in the bus's FIFO.
// Payload is raw JSON (nil means "{}" on the wire); Location, when set,
// gates delivery on the recipient's subscribed chunk interest.
type Event struct {
	Name     string
	Payload  json.RawMessage
	Filter   *ClientFilter
	Location *[2]int32
}

// New builds an Event whose payload is the JSON encoding of v.
func New(name string, v any) (Event, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Payload: payload}, nil
}

// wireEvent is one event's shape inside the Event wire form envelope:
// { name, payload: JSON-string }.
type wireEvent struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

var emptyPayload = json.RawMessage("{}")

func (e Event) toWire() wireEvent {
	payload := e.Payload
	if payload == nil {
		payload = emptyPayload
	}
	return wireEvent{Name: e.Name, Payload: payload}
}
