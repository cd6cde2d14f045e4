/*
Package events provides an in-memory event broker for polling lifecycle
notifications.

A scheduler.Poller publishes an Event on every state transition. Consumers
(the watch command, tests) subscribe and receive events asynchronously:

	Publisher → Event Channel (buffer: 100)
	     ↓
	Broadcast Loop
	     ↓
	Subscriber Channels (buffer: 50 each)

# Event Types

	poll.fetching   a fetch was started
	poll.succeeded  a snapshot was received
	poll.failed     a fetch failed (Metadata["error"], Metadata["retryCount"])
	poll.scheduled  the next fetch was armed (Metadata["delay"])
	poll.suspended  polling paused because the view is hidden
	poll.disposed   the poller was stopped

# Delivery

Publish never blocks the publisher. Events are dropped when the broker
queue is full, when a subscriber's buffer is full, or after Stop. Every
event gets a random UUID when published without an ID.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for event := range sub {
		fmt.Println(event.Type, event.Message)
	}
*/
package events
