package events

// Receiver is the interface for components that deliver session events to
// subscribers.
type Receiver interface {
	// Subscribe registers fn to be called for every subsequently sent event
	// and returns a function that cancels the subscription.
	Subscribe(fn func(Event)) (unsubscribe func())
}
