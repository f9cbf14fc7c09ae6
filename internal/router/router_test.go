package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
	"github.com/iliyamo/crm-service/internal/service/servicetest"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T, production bool) *api {
	users := servicetest.NewUsers()
	customers := servicetest.NewCustomers()
	interactions := servicetest.NewInteractions()
	leads := servicetest.NewLeads()
	opportunities := servicetest.NewOpportunities()
	pub := &servicetest.Publisher{}

	userSvc := service.NewUserService(users, service.UserConfig{JWTSecret: "test-secret", AccessTTLMin: 60, BcryptCost: 4}, pub)

	e := echo.New()
	e.HTTPErrorHandler = handler.NewErrorHandler(production)
	d := Deps{Auth: userSvc}
	RegisterRoutes(e)
	RegisterUsers(e, handler.NewUserHandler(userSvc), d)
	RegisterCustomers(e, handler.NewCustomerHandler(service.NewCustomerService(customers, interactions, pub)), d)
	RegisterInteractions(e, handler.NewInteractionHandler(service.NewInteractionService(interactions, customers, pub)), d)
	RegisterLeads(e, handler.NewLeadHandler(service.NewLeadService(leads, opportunities, users, pub)), d)
	RegisterOpportunities(e, handler.NewOpportunityHandler(service.NewOpportunityService(opportunities, leads, pub)), d)
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload string
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(a.t, err)
		payload = string(bs)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// user registers an account with role and returns its credential.
func (a *api) user(name, role string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/users/register", "", echo.Map{
		"name": name, "email": name + "@example.com", "password": "secret1", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct{ Token string }
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, rec)["message"].(string)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	a := newAPI(t, false)

	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/", "", nil).Code)

	rec = a.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found - GET: /nope", message(t, rec))
}

func TestAuthentication(t *testing.T) {
	a := newAPI(t, false)

	rec := a.do(http.MethodGet, "/api/v1/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not Authorized, No Token Provided", message(t, rec))

	rec = a.do(http.MethodGet, "/api/v1/customers", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not Authorized, Token Failed!", message(t, rec))
}

func TestRoleGates(t *testing.T) {
	a := newAPI(t, false)
	rep := a.user("rep", model.RoleSalesRep)
	mgr := a.user("mgr", model.RoleManager)

	cases := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/api/v1/customers", rep},
		{http.MethodDelete, "/api/v1/customers/65a000000000000000000001", mgr},
		{http.MethodPost, "/api/v1/interactions", mgr},
		{http.MethodPost, "/api/v1/leads", mgr},
		{http.MethodDelete, "/api/v1/leads/65a000000000000000000001", mgr},
		{http.MethodDelete, "/api/v1/opportunities/65a000000000000000000001", rep},
		{http.MethodGet, "/api/v1/users", mgr},
		{http.MethodPut, "/api/v1/users/65a000000000000000000001", rep},
	}
	for _, tc := range cases {
		// An invalid payload still gets 403: the gate runs first.
		rec := a.do(tc.method, tc.path, tc.token, echo.Map{})
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Forbidden to access this route", message(t, rec))
	}
}

func TestCustomerAndInteractionFlow(t *testing.T) {
	a := newAPI(t, false)
	mgr := a.user("mgr", model.RoleManager)
	rep := a.user("rep", model.RoleSalesRep)
	admin := a.user("root", model.RoleAdmin)

	rec := a.do(http.MethodPost, "/api/v1/customers", mgr, echo.Map{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Customer name is required", message(t, rec))

	rec = a.do(http.MethodPost, "/api/v1/customers", mgr, echo.Map{"name": "Acme", "company": "Acme Inc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	cust := decode[map[string]any](t, rec)
	assert.Equal(t, "Acme", cust["name"])
	assert.Equal(t, "Acme Inc", cust["company"])
	assert.NotContains(t, cust, "interactions")
	custID := cust["_id"].(string)

	rec = a.do(http.MethodPost, "/api/v1/interactions", rep, echo.Map{
		"type": "Call", "date": "2024-03-01", "customerId": custID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itID := decode[map[string]any](t, rec)["_id"].(string)

	rec = a.do(http.MethodGet, "/api/v1/customers/"+custID, rep, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.CustomerDetail](t, rec)
	require.Len(t, got.Interactions, 1)
	assert.Equal(t, itID, got.Interactions[0].ID.Hex())

	rec = a.do(http.MethodGet, "/api/v1/interactions?customer="+custID, rep, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodGet, "/api/v1/interactions?customer=bad", rep, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodDelete, "/api/v1/interactions/"+itID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Interaction removed", message(t, rec))

	rec = a.do(http.MethodGet, "/api/v1/customers/not-an-id", rep, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", message(t, rec))

	rec = a.do(http.MethodDelete, "/api/v1/customers/"+custID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Customer removed", message(t, rec))
}

func TestMarkupIsEscapedInResponses(t *testing.T) {
	a := newAPI(t, false)
	mgr := a.user("mgr", model.RoleManager)

	rec := a.do(http.MethodPost, "/api/v1/customers", mgr, echo.Map{"name": "<script>alert(1)</script>"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), `\u003cscript\u003e`)
	assert.Equal(t, "<script>alert(1)</script>", decode[map[string]any](t, rec)["name"])
}

func TestLeadCascadeAndOpportunityUnlink(t *testing.T) {
	a := newAPI(t, false)
	rep := a.user("rep", model.RoleSalesRep)
	mgr := a.user("mgr", model.RoleManager)
	admin := a.user("root", model.RoleAdmin)

	rec := a.do(http.MethodPost, "/api/v1/leads", rep, echo.Map{"name": "Globex"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	leadID := decode[map[string]any](t, rec)["_id"].(string)

	var opps []string
	for _, name := range []string{"Upsell", "Renewal", "Pilot"} {
		rec = a.do(http.MethodPost, "/api/v1/opportunities", rep, echo.Map{"name": name, "value": 1000, "lead": leadID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		opps = append(opps, decode[map[string]any](t, rec)["_id"].(string))
	}

	rec = a.do(http.MethodDelete, "/api/v1/opportunities/"+opps[2], mgr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Opportunity removed", message(t, rec))

	rec = a.do(http.MethodGet, "/api/v1/leads/"+leadID, rep, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lead := decode[model.LeadDetail](t, rec)
	require.Len(t, lead.Opportunities, 2)
	assert.Equal(t, opps[0], lead.Opportunities[0].ID.Hex())

	rec = a.do(http.MethodDelete, "/api/v1/leads/"+leadID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lead removed", message(t, rec))

	for _, path := range []string{"/api/v1/leads/" + leadID, "/api/v1/opportunities/" + opps[0], "/api/v1/opportunities/" + opps[1]} {
		assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, rep, nil).Code, path)
	}
}

func TestUserEndpoints(t *testing.T) {
	a := newAPI(t, false)
	admin := a.user("root", model.RoleAdmin)
	rep := a.user("rep", "")

	rec := a.do(http.MethodPost, "/api/v1/users/register", "", echo.Map{
		"name": "rep", "email": "REP@example.com", "password": "other1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", message(t, rec))

	rec = a.do(http.MethodPost, "/api/v1/users/login", "", echo.Map{"email": "rep@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", message(t, rec))

	rec = a.do(http.MethodPost, "/api/v1/users/login", "", echo.Map{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid credentials", message(t, rec))

	rec = a.do(http.MethodPost, "/api/v1/users/login", "", echo.Map{"email": "rep@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]any](t, rec)["token"])

	rec = a.do(http.MethodGet, "/api/v1/users/profile", rep, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"name":"rep","email":"rep@example.com","role":"sales-rep"}}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "rep@example.com", list[0]["email"])
	assert.NotContains(t, list[0], "password")
	repID := list[0]["_id"].(string)

	rec = a.do(http.MethodPut, "/api/v1/users/"+repID, admin, echo.Map{"role": model.RoleManager})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User updated successfully", message(t, rec))

	rec = a.do(http.MethodPut, "/api/v1/users/profile", rep, echo.Map{"name": "Rep", "email": "rep2@example.com", "password": "new-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"name":"Rep","email":"rep2@example.com","role":"manager"}}`, rec.Body.String())
}

func TestErrorBodies(t *testing.T) {
	dev := newAPI(t, false)
	rec := dev.do(http.MethodGet, "/api/v1/leads/65a000000000000000000001", dev.user("rep", ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec), "stack")

	prod := newAPI(t, true)
	rec = prod.do(http.MethodGet, "/api/v1/leads/65a000000000000000000001", prod.user("rep", ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Lead not found"}`, rec.Body.String())

	rec = prod.do(http.MethodPost, "/api/v1/users/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", message(t, rec))
}
