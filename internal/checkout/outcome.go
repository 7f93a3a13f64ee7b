package checkout

import "github.com/gofiber/fiber/v2"

// OutcomeKind classifies a submission result.
type OutcomeKind string

const (
	OutcomeSuccess             OutcomeKind = "SUCCESS"
	OutcomeInsufficientBalance OutcomeKind = "INSUFFICIENT_BALANCE"
	OutcomeAuthExpired         OutcomeKind = "AUTH_EXPIRED"
	OutcomeError               OutcomeKind = "ERROR"
	OutcomeValidationFailed    OutcomeKind = "VALIDATION_FAILED"
)

// Outcome is the result of one submission attempt. Failures are values.
type Outcome struct {
	Kind             OutcomeKind `json:"kind"`
	OrderNumber      string      `json:"orderNumber,omitempty"`
	OrderID          string      `json:"orderId,omitempty"`
	Message          string      `json:"message,omitempty"`
	Step             *Step       `json:"step,omitempty"`
	ValidationErrors FieldErrors `json:"validationErrors,omitempty"`
}

// Succeeded reports whether the order was placed.
func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

// HTTPStatus is the status code the handler replies with for o.
func (o Outcome) HTTPStatus() int {
	switch o.Kind {
	case OutcomeSuccess:
		return fiber.StatusCreated
	case OutcomeValidationFailed:
		return fiber.StatusUnprocessableEntity
	case OutcomeInsufficientBalance:
		return fiber.StatusPaymentRequired
	case OutcomeAuthExpired:
		return fiber.StatusUnauthorized
	}
	return fiber.StatusBadGateway
}
