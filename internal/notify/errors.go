package notify

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// GatewayError is a rejection reported by the SMS gateway.
type GatewayError struct {
	Status string
	Detail string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("sms gateway rejected message: %s:%s", e.Status, e.Detail)
}
