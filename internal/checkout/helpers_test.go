package checkout

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/wichananm65/bridal-checkout/internal/schedule"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/validation"
)

var testCatalog = []storefront.Accessory{
	{ID: "veil", Name: "Cathedral veil", ShopID: "shop-1", SellPrice: "50000", RentalPrice: "20000", IsSellable: true, IsRentable: true},
	{ID: "gloves", Name: "Lace gloves", ShopID: "shop-1", SellPrice: "30000", RentalPrice: "10000", IsSellable: true, IsRentable: true},
	{ID: "tiara", Name: "Crystal tiara", ShopID: "shop-1", SellPrice: "90000", IsSellable: true},
}

var testDress = storefront.Dress{
	ID:          "dress-1",
	Name:        "Ivory mermaid",
	ShopID:      "shop-1",
	SellPrice:   "500000",
	RentalPrice: "100000",
	IsSellable:  true,
	IsRentable:  true,
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeStorefront records order calls. When release is set, CreateOrder waits
// for it or for ctx.
type fakeStorefront struct {
	mu        sync.Mutex
	dress     storefront.Dress
	catalog   []storefront.Accessory
	result    storefront.CreateOrderResult
	createErr error
	release   chan struct{}
	calls     int
	last      storefront.CreateOrderRequest
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		dress:   testDress,
		catalog: testCatalog,
		result:  storefront.CreateOrderResult{OrderID: "o-1", OrderNumber: "ORD-1001"},
	}
}

func (f *fakeStorefront) GetDress(_ context.Context, _, id string) (storefront.Dress, error) {
	if id != f.dress.ID {
		return storefront.Dress{}, &storefront.APIError{Kind: storefront.KindUnknown, Status: 404, Message: "dress not found"}
	}
	return f.dress, nil
}

func (f *fakeStorefront) AllShopAccessories(context.Context, string, string) ([]storefront.Accessory, error) {
	return f.catalog, nil
}

func (f *fakeStorefront) CreateOrder(ctx context.Context, _ string, req storefront.CreateOrderRequest) (storefront.CreateOrderResult, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return storefront.CreateOrderResult{}, ctx.Err()
		}
	}
	if f.createErr != nil {
		return storefront.CreateOrderResult{}, f.createErr
	}
	return f.result, nil
}

func (f *fakeStorefront) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStorefront) lastRequest() storefront.CreateOrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeClock interface {
	clockz.Clock
	Advance(time.Duration)
}

func newTestService(t *testing.T, api Storefront) (*Service, fakeClock) {
	t.Helper()
	clock := clockz.NewFakeClock()
	svc := NewService(NewInMemoryRepository(), api,
		WithClock(clock),
		WithLogger(discard),
		WithLocation(time.UTC),
		WithSubmitTimeout(time.Minute),
		WithSessionTTL(24*time.Hour),
	)
	return svc, clock
}

func validDraft(orderType storefront.OrderType, now time.Time) *Draft {
	d := NewDraft(testDress.ID, orderType, testCatalog)
	d.Customer = Customer{Phone: "0901234567", Email: "bride@example.com", Address: "12 Nguyen Hue, District 1"}
	due := schedule.AddDays(now, 5)
	d.Schedule.DueDate = &due
	if orderType == storefront.OrderTypeRent {
		ret := schedule.AddDays(now, 7)
		d.Schedule.ReturnDate = &ret
	}
	d.Measurements = Measurements{Height: 165, Weight: 50, Bust: 86, Waist: 66, Hip: 92, Neck: 33, ShoulderWidth: 38}
	return d
}

// confirmedDraft is a valid draft that has been walked to the confirmation step.
func confirmedDraft(orderType storefront.OrderType, now time.Time) *Draft {
	d := validDraft(orderType, now)
	d.Step = StepConfirmation
	return d
}

func day(now time.Time, n int) string {
	return schedule.Format(schedule.AddDays(now, n))
}

func ptr[T any](v T) *T { return &v }

var englishValidator = validation.New("en")
