package service

// Event names pushed to connected clients. Per-ride events go to the ride's
// channel (the ride ID is the channel key); marketplace-wide events are
// broadcast to every connection.
type Event string

const (
	EventNewRide              Event = "new-ride"
	EventNewBid               Event = "new-bid"
	EventBidUpdated           Event = "bid-updated"
	EventBidAccepted          Event = "bid-accepted"
	EventRideStatusUpdated    Event = "ride-status-updated"
	EventRideCompleted        Event = "ride-completed"
	EventBookingStatusUpdated Event = "booking-status-updated"
	EventBookingCancelled     Event = "booking-cancelled"
	EventDriverStatusUpdated  Event = "driver-status-update"
)

// Notifier delivers domain events to live subscribers. Delivery is
// fire-and-forget and at-most-once: a subscriber that is not connected
// when an event fires never sees it.
type Notifier interface {
	// Publish sends an event to subscribers of a single channel.
	Publish(channel string, event Event, payload any)

	// Broadcast sends an event to every connected subscriber.
	Broadcast(event Event, payload any)
}
