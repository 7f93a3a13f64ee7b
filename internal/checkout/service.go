package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/clockz"
	"golang.org/x/sync/singleflight"

	"github.com/wichananm65/bridal-checkout/internal/accessory"
	"github.com/wichananm65/bridal-checkout/internal/pricing"
	"github.com/wichananm65/bridal-checkout/internal/schedule"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

var (
	ErrOrderTypeNotAllowed = errors.New("dress is not offered for this order type")
	ErrUnknownMeasurement  = errors.New("unknown measurement field")
)

// Storefront is the part of the storefront API checkout sessions use.
type Storefront interface {
	OrderCreator
	GetDress(ctx context.Context, token, id string) (storefront.Dress, error)
	AllShopAccessories(ctx context.Context, token, shopID string) ([]storefront.Accessory, error)
}

const (
	defaultSubmitTimeout = 30 * time.Second
	defaultSessionTTL    = 24 * time.Hour
)

// Service owns checkout sessions. Mutations of one session are serialized;
// storefront calls run outside that lock.
type Service struct {
	repo          Repository
	api           Storefront
	validator     *validation.Validator
	wizard        Wizard
	submitter     *Submitter
	clock         clockz.Clock
	logger        *slog.Logger
	loc           *time.Location
	submitTimeout time.Duration
	ttl           time.Duration

	locksMu sync.Mutex
	locks   map[string]*keyLock

	flights    singleflight.Group
	inflightMu sync.Mutex
	inflight   map[string]context.CancelFunc
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clockz.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithValidator(v *validation.Validator) Option { return func(s *Service) { s.validator = v } }

// WithLocation sets the zone dates sent by clients are read in.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithSubmitTimeout(d time.Duration) Option { return func(s *Service) { s.submitTimeout = d } }

// WithSessionTTL sets how long an untouched session survives PurgeStale.
func WithSessionTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }

func NewService(repo Repository, api Storefront, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		api:           api,
		clock:         clockz.RealClock,
		logger:        slog.Default(),
		loc:           time.Local,
		submitTimeout: defaultSubmitTimeout,
		ttl:           defaultSessionTTL,
		locks:         make(map[string]*keyLock),
		inflight:      make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.New("en")
	}
	s.wizard = NewWizard(s.validator)
	s.submitter = NewSubmitter(api, s.validator, s.clock, s.logger)
	s.submitter.loc = s.loc
	return s
}

// now is the current time in the zone client dates are read in.
func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// View is what clients see of a session.
type View struct {
	ID               string                 `json:"id"`
	Step             Step                   `json:"step"`
	StepName         string                 `json:"stepName"`
	Dress            storefront.Dress       `json:"dress"`
	OrderType        storefront.OrderType   `json:"orderType"`
	Customer         Customer               `json:"customer"`
	DueDate          string                 `json:"dueDate,omitempty"`
	ReturnDate       string                 `json:"returnDate,omitempty"`
	Measurements     Measurements           `json:"measurements"`
	Accessories      []accessory.Item       `json:"accessories"`
	Catalog          []storefront.Accessory `json:"catalog"`
	ValidationErrors FieldErrors            `json:"validationErrors"`
	Total            decimal.Decimal        `json:"total"`
	Notice           string                 `json:"notice,omitempty"`
}

// CustomerPatch updates the contact fields that are set.
type CustomerPatch struct {
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// ScheduleInput carries YYYY-MM-DD days. A nil field is left alone; an empty
// string clears it.
type ScheduleInput struct {
	DueDate    *string `json:"dueDate"`
	ReturnDate *string `json:"returnDate"`
}

// Open starts a session for dressID. The dress must allow orderType; the
// shop's whole accessory listing is fetched up front.
func (s *Service) Open(ctx context.Context, userID, token, dressID string, orderType storefront.OrderType) (View, error) {
	dress, err := s.api.GetDress(ctx, token, dressID)
	if err != nil {
		return View{}, fmt.Errorf("get dress %s: %w", dressID, err)
	}
	if dress.ID == "" {
		dress.ID = dressID
	}
	if !dress.Allows(orderType) {
		return View{}, ErrOrderTypeNotAllowed
	}

	var catalog []storefront.Accessory
	if dress.ShopID != "" {
		catalog, err = s.api.AllShopAccessories(ctx, token, dress.ShopID)
		if err != nil {
			return View{}, fmt.Errorf("list accessories for shop %s: %w", dress.ShopID, err)
		}
	}

	now := s.clock.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Dress:     dress,
		Catalog:   catalog,
		Draft:     NewDraft(dress.ID, orderType, catalog),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return View{}, err
	}
	s.logger.Info("checkout session opened",
		"session_id", sess.ID,
		"user_id", userID,
		"dress_id", dress.ID,
		"order_type", orderType,
		"accessories", len(catalog))
	return s.view(sess, ""), nil
}

// Get returns the session as the owner sees it.
func (s *Service) Get(ctx context.Context, userID, id string) (View, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return View{}, err
	}
	return s.view(sess, ""), nil
}

// UpdateCustomer sets contact fields and validates each one as it lands.
func (s *Service) UpdateCustomer(ctx context.Context, userID, id string, p CustomerPatch) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		d := sess.Draft
		apply := func(key string, val *string, dst *string) {
			if val == nil {
				return
			}
			*dst = *val
			d.SetError(key, s.validator.ValidateField(key, *val))
		}
		apply("phone", p.Phone, &d.Customer.Phone)
		apply("email", p.Email, &d.Customer.Email)
		apply("address", p.Address, &d.Customer.Address)
		return "", nil
	})
}

// SetSchedule updates the due and return days. Moving the due date drops a
// return date that no longer fits and returns a notice saying so.
func (s *Service) SetSchedule(ctx context.Context, userID, id string, in ScheduleInput) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		d := sess.Draft
		var notice string

		if in.DueDate != nil {
			if due, ok := s.parseDay(d, "dueDate", *in.DueDate); ok {
				d.Schedule.DueDate = due
				d.SetError("dueDate", s.validator.ScheduleMessage(schedule.ValidateDueDate(due, s.now())))
				ret, cleared := schedule.Reconcile(d.OrderType, due, d.Schedule.ReturnDate)
				d.Schedule.ReturnDate = ret
				if cleared {
					notice = s.validator.ReturnClearedNotice()
				}
			}
		}

		if d.OrderType != storefront.OrderTypeRent {
			d.Schedule.ReturnDate = nil
			d.SetError("returnDate", "")
			return notice, nil
		}
		if in.ReturnDate != nil {
			ret, ok := s.parseDay(d, "returnDate", *in.ReturnDate)
			if !ok {
				return notice, nil
			}
			d.Schedule.ReturnDate = ret
		}
		if d.Schedule.ReturnDate == nil {
			d.SetError("returnDate", "")
		} else {
			d.SetError("returnDate", s.validator.ScheduleMessage(
				schedule.ValidateReturnDate(d.OrderType, d.Schedule.DueDate, d.Schedule.ReturnDate)))
		}
		return notice, nil
	})
}

// parseDay reads a day for key. An empty string clears the day; unparsable
// input records an error and reports false.
func (s *Service) parseDay(d *Draft, key, raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.SetError(key, "")
		return nil, true
	}
	t, err := schedule.Parse(raw, s.loc)
	if err != nil {
		d.SetError(key, s.validator.InvalidDateMessage(key))
		return nil, false
	}
	return &t, true
}

// DateWindow returns the days the date pickers may offer.
func (s *Service) DateWindow(ctx context.Context, userID, id string) (schedule.DateWindow, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return schedule.DateWindow{}, err
	}
	d := sess.Draft
	return schedule.Window(d.OrderType, d.Schedule.DueDate, s.now()), nil
}

// SetMeasurements stores measurement values and range-checks the non-zero
// ones. Zero clears a value.
func (s *Service) SetMeasurements(ctx context.Context, userID, id string, values map[string]float64) (View, error) {
	for name := range values {
		if !validation.IsField(name) {
			return View{}, fmt.Errorf("%w: %s", ErrUnknownMeasurement, name)
		}
	}
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		d := sess.Draft
		for name, v := range values {
			f := validation.Field(name)
			d.Measurements.Set(f, v)
			msg := ""
			if v != 0 {
				msg = s.validator.ValidateMeasurementField(f, v)
			}
			d.SetError(validation.ErrorKey(f), msg)
		}
		return "", nil
	})
}

// ToggleAccessory selects or deselects an accessory.
func (s *Service) ToggleAccessory(ctx context.Context, userID, id, accessoryID string) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		_, err := sess.Draft.Accessories.Toggle(accessoryID)
		return "", err
	})
}

// SetAccessoryQuantity sets how many of an accessory are ordered.
func (s *Service) SetAccessoryQuantity(ctx context.Context, userID, id, accessoryID string, qty int) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		return "", sess.Draft.Accessories.SetQuantity(accessoryID, qty)
	})
}

// Next advances the wizard when the current step validates.
func (s *Service) Next(ctx context.Context, userID, id string) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		s.wizard.Next(sess.Draft, s.now())
		return "", nil
	})
}

// Prev moves the wizard back one step.
func (s *Service) Prev(ctx context.Context, userID, id string) (View, error) {
	return s.mutate(ctx, userID, id, func(sess *Session) (string, error) {
		s.wizard.Prev(sess.Draft)
		return "", nil
	})
}

// Quote prices the current draft.
func (s *Service) Quote(ctx context.Context, userID, id string) (pricing.Breakdown, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	d := sess.Draft
	return pricing.Itemize(sess.Dress, d.OrderType, d.Accessories.Items(), sess.Catalog), nil
}

// Submit places the session's order. Concurrent calls for one session share
// a single attempt. A successful submission ends the session; a draft that
// fails re-validation sends the wizard back to the failing step.
func (s *Service) Submit(ctx context.Context, userID, token, id string) (Outcome, error) {
	if _, err := s.load(ctx, userID, id); err != nil {
		return Outcome{}, err
	}
	ch := s.flights.DoChan(id, func() (any, error) {
		return s.submit(context.WithoutCancel(ctx), userID, token, id)
	})
	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Outcome{}, res.Err
		}
		return res.Val.(Outcome), nil
	}
}

func (s *Service) submit(parent context.Context, userID, token, id string) (Outcome, error) {
	ctx, cancel := s.clock.WithTimeout(parent, s.submitTimeout)
	defer cancel()
	s.track(id, cancel)
	defer s.untrack(id)

	unlock := s.lock(id)
	sess, err := s.load(ctx, userID, id)
	unlock()
	if err != nil {
		return Outcome{}, err
	}

	out := s.submitter.Submit(ctx, token, sess.Draft)

	unlock = s.lock(id)
	defer unlock()
	switch out.Kind {
	case OutcomeSuccess:
		if err := s.repo.Delete(parent, id); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Error("could not discard submitted session", "session_id", id, "error", err)
		}
		s.logger.Info("order placed", "session_id", id, "user_id", userID, "order_number", out.OrderNumber)
	case OutcomeValidationFailed:
		current, err := s.repo.Get(parent, id)
		if err != nil {
			return out, nil
		}
		current.Draft.replaceErrors(append(stepKeys(StepCustomerInfo), stepKeys(StepMeasurements)...), out.ValidationErrors)
		current.Draft.Step = *out.Step
		current.UpdatedAt = s.clock.Now()
		if err := s.repo.Save(parent, current); err != nil {
			s.logger.Error("could not save rejected draft", "session_id", id, "error", err)
		}
	}
	return out, nil
}

// Cancel ends a session and aborts a submission in flight for it.
func (s *Service) Cancel(ctx context.Context, userID, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	s.inflightMu.Lock()
	if cancel, ok := s.inflight[id]; ok {
		cancel()
	}
	s.inflightMu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("checkout session canceled", "session_id", id, "user_id", userID)
	return nil
}

// PurgeStale drops sessions idle longer than the session TTL. Sessions with
// a submission in flight are kept.
func (s *Service) PurgeStale(ctx context.Context) (int, error) {
	s.inflightMu.Lock()
	keep := make([]string, 0, len(s.inflight))
	for id := range s.inflight {
		keep = append(keep, id)
	}
	s.inflightMu.Unlock()

	removed, err := s.repo.PurgeStale(ctx, s.clock.Now().Add(-s.ttl), keep)
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		s.logger.Info("stale checkout sessions purged", "count", len(removed))
	}
	return len(removed), nil
}

// RunSweeper calls PurgeStale every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(interval):
			if _, err := s.PurgeStale(ctx); err != nil {
				s.logger.Error("session sweep failed", "error", err)
			}
		}
	}
}

func (s *Service) mutate(ctx context.Context, userID, id string, fn func(*Session) (string, error)) (View, error) {
	unlock := s.lock(id)
	defer unlock()
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return View{}, err
	}
	notice, err := fn(sess)
	if err != nil {
		return View{}, err
	}
	sess.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, sess); err != nil {
		return View{}, err
	}
	return s.view(sess, notice), nil
}

// load fetches a session owned by userID. Other users get ErrNotFound.
func (s *Service) load(ctx context.Context, userID, id string) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) lock(id string) (unlock func()) {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &keyLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *Service) track(id string, cancel context.CancelFunc) {
	s.inflightMu.Lock()
	s.inflight[id] = cancel
	s.inflightMu.Unlock()
}

func (s *Service) untrack(id string) {
	s.inflightMu.Lock()
	delete(s.inflight, id)
	s.inflightMu.Unlock()
}

func (s *Service) view(sess *Session, notice string) View {
	d := sess.Draft
	offered := make([]storefront.Accessory, 0, len(sess.Catalog))
	for _, a := range sess.Catalog {
		if a.Allows(d.OrderType) {
			offered = append(offered, a)
		}
	}
	v := View{
		ID:               sess.ID,
		Step:             d.Step,
		StepName:         d.Step.String(),
		Dress:            sess.Dress,
		OrderType:        d.OrderType,
		Customer:         d.Customer,
		Measurements:     d.Measurements,
		Accessories:      d.Accessories.Items(),
		Catalog:          offered,
		ValidationErrors: d.Errors,
		Total:            pricing.ComputeTotal(sess.Dress, d.OrderType, d.Accessories.Items(), sess.Catalog),
		Notice:           notice,
	}
	if d.Schedule.DueDate != nil {
		v.DueDate = schedule.Format(*d.Schedule.DueDate)
	}
	if d.Schedule.ReturnDate != nil {
		v.ReturnDate = schedule.Format(*d.Schedule.ReturnDate)
	}
	return v
}
