package orders

import (
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// usual forward path; cancelled is reachable from any non-terminal status
var lifecycle = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next is the forward step shown to admins; terminal statuses have none.
func (s Status) Next() (Status, bool) {
	n, ok := lifecycle[s]
	return n, ok
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", apperr.Ef(apperr.InvalidArgument, "invalid order status %q", s)
	}
	return st, nil
}

// CanTransition is permissive: an admin may set any known status from any
// other, including moving an order back out of delivered or cancelled.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}
