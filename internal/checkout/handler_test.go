package checkout

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

func makeAppWithCheckoutHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			claims := jwt.MapClaims{"user_id": v}
			tok := &jwt.Token{Claims: claims}
			c.Locals("user", tok)
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, userID, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func TestCheckoutRoutes(t *testing.T) {
	svc, _ := newTestService(t, newFakeStorefront())
	app := makeAppWithCheckoutHandler(NewHandler(svc))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"POST /api/v1/checkout/sessions",
		"GET /api/v1/checkout/sessions/:id",
		"DELETE /api/v1/checkout/sessions/:id",
		"PATCH /api/v1/checkout/sessions/:id/customer",
		"PUT /api/v1/checkout/sessions/:id/schedule",
		"GET /api/v1/checkout/sessions/:id/date-window",
		"PUT /api/v1/checkout/sessions/:id/measurements",
		"POST /api/v1/checkout/sessions/:id/accessories/:accessoryId/toggle",
		"PUT /api/v1/checkout/sessions/:id/accessories/:accessoryId",
		"POST /api/v1/checkout/sessions/:id/next",
		"POST /api/v1/checkout/sessions/:id/prev",
		"GET /api/v1/checkout/sessions/:id/quote",
		"POST /api/v1/checkout/sessions/:id/submit",
		"POST /api/v1/checkout/validate",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestCheckoutHandler_Flow(t *testing.T) {
	api := newFakeStorefront()
	svc, clock := newTestService(t, api)
	app := makeAppWithCheckoutHandler(NewHandler(svc))
	now := clock.Now().In(time.UTC)

	status, _ := doJSON(t, app, "POST", "/api/v1/checkout/sessions", "", `{"dressId":"dress-1","orderType":"SELL"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := doJSON(t, app, "POST", "/api/v1/checkout/sessions", owner, `{"dressId":"dress-1","orderType":"lease"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, body["message"])

	status, body = doJSON(t, app, "POST", "/api/v1/checkout/sessions", owner, `{"dressId":"nope","orderType":"SELL"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = doJSON(t, app, "POST", "/api/v1/checkout/sessions", owner, `{"dressId":"dress-1","orderType":"rent"}`)
	require.Equal(t, fiber.StatusCreated, status)
	id := body["id"].(string)
	base := "/api/v1/checkout/sessions/" + id

	status, _ = doJSON(t, app, "GET", base, "99", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = doJSON(t, app, "POST", base+"/next", owner, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["step"])
	assert.Contains(t, body["validationErrors"], "email")

	status, _ = doJSON(t, app, "PATCH", base+"/customer", owner,
		`{"phone":"0901234567","email":"bride@example.com","address":"12 Nguyen Hue, District 1"}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "PUT", base+"/schedule", owner,
		`{"dueDate":"`+day(now, 4)+`","returnDate":"`+day(now, 8)+`"}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = doJSON(t, app, "GET", base+"/date-window", owner, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, day(now, 3), body["dueMin"])
	assert.Equal(t, day(now, 10), body["returnMax"])

	status, _ = doJSON(t, app, "PUT", base+"/measurements", owner, `{"shoeSize":38}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "PUT", base+"/measurements", owner,
		`{"height":165,"weight":50,"bust":86,"waist":66,"hip":92,"neck":33,"shoulderWidth":38}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "POST", base+"/accessories/veil/toggle", owner, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, "PUT", base+"/accessories/veil", owner, `{"quantity":25}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, body = doJSON(t, app, "PUT", base+"/accessories/veil", owner, `{"quantity":2}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "140000", body["total"])
	status, _ = doJSON(t, app, "POST", base+"/accessories/bouquet/toggle", owner, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	for range 3 {
		status, body = doJSON(t, app, "POST", base+"/next", owner, "")
		require.Equal(t, fiber.StatusOK, status)
	}
	assert.Equal(t, "confirmation", body["stepName"])

	status, body = doJSON(t, app, "GET", base+"/quote", owner, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "140000", body["total"])

	status, body = doJSON(t, app, "POST", base+"/submit", owner, "")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "SUCCESS", body["kind"])
	assert.Equal(t, "ORD-1001", body["orderNumber"])

	status, _ = doJSON(t, app, "GET", base, owner, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCheckoutHandler_InsufficientBalance(t *testing.T) {
	api := newFakeStorefront()
	api.createErr = &storefront.APIError{Kind: storefront.KindInsufficientFunds, Status: 400, Message: "Insufficient balance"}
	svc, clock := newTestService(t, api)
	app := makeAppWithCheckoutHandler(NewHandler(svc))

	view, err := svc.Open(t.Context(), owner, "", "dress-1", storefront.OrderTypeSell)
	require.NoError(t, err)
	fillSession(t, svc, clock.Now().In(time.UTC), view.ID, storefront.OrderTypeSell)

	status, body := doJSON(t, app, "POST", "/api/v1/checkout/sessions/"+view.ID+"/submit", owner, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_FAILED", body["kind"])
	assert.Zero(t, api.callCount())

	walkToConfirmation(t, svc, view.ID)
	status, body = doJSON(t, app, "POST", "/api/v1/checkout/sessions/"+view.ID+"/submit", owner, "")
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["kind"])
	assert.Equal(t, "Insufficient balance", body["message"])

	status, _ = doJSON(t, app, "DELETE", "/api/v1/checkout/sessions/"+view.ID, owner, "")
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestValidateFieldEndpoint(t *testing.T) {
	svc, _ := newTestService(t, newFakeStorefront())
	app := makeAppWithCheckoutHandler(NewHandler(svc))

	tests := []struct {
		body string
		msg  string
	}{
		{`{"field":"phone","value":"0901234567"}`, ""},
		{`{"field":"email","value":"nope"}`, "Email is not a valid email address"},
		{`{"field":"description","value":"too short"}`, "Description must be at least 20 characters"},
		{`{"field":"waist","value":200}`, "Waist must be between 50 and 110 cm"},
		{`{"field":"waist","value":"70"}`, ""},
	}
	for _, tt := range tests {
		status, body := doJSON(t, app, "POST", "/api/v1/checkout/validate", owner, tt.body)
		assert.Equal(t, fiber.StatusOK, status, tt.body)
		assert.Equal(t, tt.msg, body["message"], tt.body)
	}

	status, _ := doJSON(t, app, "POST", "/api/v1/checkout/validate", owner, `{"field":"waist","value":true}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
