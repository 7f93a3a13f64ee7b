package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/wichananm65/bridal-checkout/internal/schedule"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/user"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

// OrderCreator places orders with the storefront backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, req storefront.CreateOrderRequest) (storefront.CreateOrderResult, error)
}

const (
	msgValidationFailed = "please fix the highlighted fields"
	msgNotConfirmed     = "review the order on the confirmation step before submitting"
	msgAuthExpired      = "session expired, please sign in again"
	msgCanceled         = "submission canceled"
	msgGenericFailure   = "could not place the order, please try again"
)

// placeholder order numbers some backend versions return on success
var placeholderOrderNumbers = map[string]bool{
	"":          true,
	"n/a":       true,
	"null":      true,
	"undefined": true,
	"-":         true,
}

// Submitter re-validates a draft and places it as an order.
type Submitter struct {
	orders OrderCreator
	wizard Wizard
	clock  clockz.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewSubmitter(orders OrderCreator, v *validation.Validator, clock clockz.Clock, logger *slog.Logger) *Submitter {
	if clock == nil {
		clock = clockz.RealClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{orders: orders, wizard: NewWizard(v), clock: clock, loc: time.Local, logger: logger}
}

// Submit places d and maps the result to an Outcome. A draft that no longer
// passes validation, one not yet on the confirmation step, or an already
// expired token never reaches the network.
func (s *Submitter) Submit(ctx context.Context, token string, d *Draft) Outcome {
	now := s.clock.Now().In(s.loc)
	if step, errs, ok := s.wizard.FirstInvalid(d, now); !ok {
		return Outcome{
			Kind:             OutcomeValidationFailed,
			Message:          msgValidationFailed,
			Step:             &step,
			ValidationErrors: errs,
		}
	}
	if d.Step != LastStep {
		step := d.Step
		return Outcome{
			Kind:             OutcomeValidationFailed,
			Message:          msgNotConfirmed,
			Step:             &step,
			ValidationErrors: FieldErrors{},
		}
	}
	if user.TokenExpired(token, now) {
		return Outcome{Kind: OutcomeAuthExpired, Message: msgAuthExpired}
	}

	res, err := s.orders.CreateOrder(ctx, token, BuildOrderRequest(d))
	if err != nil {
		out := classifyFailure(ctx, err)
		s.logger.Warn("order submission failed",
			"dress_id", d.DressID,
			"order_type", d.OrderType,
			"outcome", out.Kind,
			"error", err)
		return out
	}

	number := strings.TrimSpace(res.OrderNumber)
	if placeholderOrderNumbers[strings.ToLower(number)] {
		number = fallbackOrderNumber(s.clock)
		s.logger.Info("order number missing, synthesized one", "order_id", res.OrderID, "order_number", number)
	}
	return Outcome{Kind: OutcomeSuccess, OrderNumber: number, OrderID: res.OrderID}
}

// BuildOrderRequest turns a draft into the order-creation payload. The
// return date is sent for rentals only.
func BuildOrderRequest(d *Draft) storefront.CreateOrderRequest {
	order := storefront.NewOrder{
		Phone:   strings.TrimSpace(d.Customer.Phone),
		Email:   strings.TrimSpace(d.Customer.Email),
		Address: strings.TrimSpace(d.Customer.Address),
		Type:    d.OrderType,
	}
	if d.Schedule.DueDate != nil {
		order.DueDate = schedule.Format(*d.Schedule.DueDate)
	}
	if d.OrderType == storefront.OrderTypeRent && d.Schedule.ReturnDate != nil {
		order.ReturnDate = schedule.Format(*d.Schedule.ReturnDate)
	}

	m := d.Measurements
	details := storefront.DressDetails{
		DressID:       d.DressID,
		Height:        m.Height,
		Weight:        m.Weight,
		Bust:          m.Bust,
		Waist:         m.Waist,
		Hip:           m.Hip,
		Armpit:        m.Armpit,
		Bicep:         m.Bicep,
		Neck:          m.Neck,
		ShoulderWidth: m.ShoulderWidth,
		SleeveLength:  m.SleeveLength,
		BackLength:    m.BackLength,
		LowerWaist:    m.LowerWaist,
		WaistToFloor:  m.WaistToFloor,
	}

	items := d.Accessories.Items()
	lines := make([]storefront.AccessoryDetail, 0, len(items))
	for _, it := range items {
		lines = append(lines, storefront.AccessoryDetail{AccessoryID: it.AccessoryID, Quantity: it.Quantity})
	}

	return storefront.CreateOrderRequest{
		NewOrder:           order,
		DressDetails:       details,
		AccessoriesDetails: lines,
	}
}

func classifyFailure(ctx context.Context, err error) Outcome {
	if errors.Is(ctx.Err(), context.Canceled) {
		return Outcome{Kind: OutcomeError, Message: msgCanceled}
	}
	var apiErr *storefront.APIError
	if !errors.As(err, &apiErr) {
		return Outcome{Kind: OutcomeError, Message: msgGenericFailure}
	}
	msg := apiErr.Message
	switch apiErr.Kind {
	case storefront.KindInsufficientFunds:
		return Outcome{Kind: OutcomeInsufficientBalance, Message: msg}
	case storefront.KindAuth:
		if msg == "" {
			msg = msgAuthExpired
		}
		return Outcome{Kind: OutcomeAuthExpired, Message: msg}
	}
	if msg == "" {
		msg = msgGenericFailure
	}
	return Outcome{Kind: OutcomeError, Message: msg}
}

func fallbackOrderNumber(clock clockz.Clock) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", clock.Now().UnixMilli(), suffix)
}
