package order

import (
	"fmt"
	"strings"

	"github.com/wichananm65/chat-shop-backend/internal/apperr"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSent       Status = "SENT"
)

var (
	ErrInvalidStatus     = fmt.Errorf("%w: unknown order status", apperr.ErrValidation)
	ErrIllegalTransition = fmt.Errorf("%w: order status transition not allowed", apperr.ErrConflict)
)

// ParseStatus accepts the status names in any case, surrounding spaces ignored.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusNew, StatusInProgress, StatusSent:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Label is the text the chat client shows for the status.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "НОВЫЙ"
	case StatusInProgress:
		return "В ОБРАБОТКЕ"
	case StatusSent:
		return "ОТПРАВЛЕН"
	default:
		return string(s)
	}
}

// StatusMachine decides which status changes are allowed. The zero value
// allows any change between known statuses.
type StatusMachine struct {
	allowed map[Status][]Status
}

func PermissiveTransitions() StatusMachine {
	return StatusMachine{}
}

// ForwardOnlyTransitions only lets an order move towards SENT.
func ForwardOnlyTransitions() StatusMachine {
	return StatusMachine{allowed: map[Status][]Status{
		StatusNew:        {StatusInProgress, StatusSent},
		StatusInProgress: {StatusSent},
	}}
}

// Check reports whether from may become to. Staying in the same status is
// always allowed.
func (m StatusMachine) Check(from, to Status) error {
	if from == to || m.allowed == nil {
		return nil
	}
	for _, next := range m.allowed[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, from, to)
}
