package broker

import "time"

// OrderStatus is the lifecycle state of an order:
//
//	Initial -> Accepted -> {Completed, Cancelled, Expired, Rejected}
//
// Initial and Accepted are open states; the order is re-evaluated on every
// event. The other four are terminal: once reached, the order is never
// evaluated again.
type OrderStatus int

const (
	Initial OrderStatus = iota
	Accepted
	Completed
	Cancelled
	Expired
	Rejected
)

// Open reports whether the order is still eligible for matching.
func (s OrderStatus) Open() bool {
	return s == Initial || s == Accepted
}

// Closed reports whether the status is terminal.
func (s OrderStatus) Closed() bool {
	return !s.Open()
}

func (s OrderStatus) String() string {
	switch s {
	case Initial:
		return "INITIAL"
	case Accepted:
		return "ACCEPTED"
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	case Expired:
		return "EXPIRED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// OrderState pairs an immutable order with its current status. PlacedAt is
// the event time at which the order was first accepted; time-in-force
// policies measure order age from it.
type OrderState struct {
	Order    Order
	Status   OrderStatus
	PlacedAt time.Time
}
