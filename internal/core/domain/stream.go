package domain

// EventType identifies one of the four streaming event kinds.
type EventType string

// Streaming event kinds, emitted in the strict order results, chunk*,
// then exactly one of done or error.
const (
	EventResults EventType = "results"
	EventChunk   EventType = "chunk"
	EventDone    EventType = "done"
	EventError   EventType = "error"
)

// StreamEvent is a single event of a streaming query. The sequence is
// append-only, single-pass and at-most-once: nothing follows a done or
// error event.
type StreamEvent struct {
	Type EventType `json:"type"`

	// Payload is the QueryResult for results events, a text fragment for
	// chunk events, an error description for error events and nil for done.
	Payload any `json:"payload"`
}

// ResultsEvent wraps a query result as the opening stream event.
func ResultsEvent(result *QueryResult) StreamEvent {
	return StreamEvent{Type: EventResults, Payload: result}
}

// ChunkEvent wraps one generated text fragment.
func ChunkEvent(fragment string) StreamEvent {
	return StreamEvent{Type: EventChunk, Payload: fragment}
}

// DoneEvent marks normal completion of the stream.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone, Payload: nil}
}

// ErrorEvent marks abnormal termination of the stream.
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Type: EventError, Payload: err.Error()}
}
