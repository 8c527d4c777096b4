package events

// Sender is the interface for components that announce session events.
type Sender interface {
	// Send delivers the event to every current subscriber before returning.
	Send(Event)
}
