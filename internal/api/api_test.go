package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/service"
	"github.com/starford/caseificio/internal/testutil"
)

// testEnv sets up a temp SQLite backend, service and router. An empty token
// disables auth.
func testEnv(t *testing.T, authToken string) (*service.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*service.Service, http.Handler) {
	t.Helper()
	svc := service.New(testutil.SQLiteStore(t),
		service.WithLogger(testutil.Logger()),
		service.WithLocation(time.UTC),
		service.WithClock(testutil.Clock(2026, time.March, 8)),
		service.WithStrict(true),
	)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func createCaciotta(t *testing.T, router http.Handler) models.CheeseType {
	t.Helper()
	ct := testutil.CheeseTypes()[0]
	w := do(t, router, http.MethodPost, "/cheese-types", CheeseTypeRequest{
		Name: ct.Name, Color: ct.Color, Protocol: ct.Protocol, Sales: ct.Sales,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create cheese type = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[models.CheeseType](t, w)
}

func createProduction(t *testing.T, router http.Handler, number, date, cheeseTypeID string) ProductionResponse {
	t.Helper()
	w := do(t, router, http.MethodPost, "/productions", map[string]any{
		"date":              date,
		"production_number": number,
		"cheeses":           []map[string]any{{"cheese_type_id": cheeseTypeID, "liters": 80}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create production = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[ProductionResponse](t, w)
}

func TestCreateProductionAndReadAgenda(t *testing.T) {
	_, router := testEnv(t, "")
	ct := createCaciotta(t, router)
	resp := createProduction(t, router, "2026-001", "2026-03-01", ct.ID)
	if len(resp.Report.Created) != 2 {
		t.Fatalf("report = %+v", resp.Report)
	}

	w := do(t, router, http.MethodGet, "/agenda?date=2026-03-08", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("agenda = %d", w.Code)
	}
	agenda := decode[AgendaResponse](t, w)
	if len(agenda.Items) != 1 || agenda.Items[0].ProductionNumber != "2026-001" || agenda.Items[0].CheeseColor != "#F2C14E" {
		t.Errorf("agenda = %+v", agenda)
	}

	// Without ?date the service clock decides.
	agenda = decode[AgendaResponse](t, do(t, router, http.MethodGet, "/agenda", nil))
	if agenda.Date.String() != "2026-03-08" {
		t.Errorf("default date = %s", agenda.Date)
	}
}

func TestDuplicateProductionNumber(t *testing.T) {
	_, router := testEnv(t, "")
	ct := createCaciotta(t, router)
	createProduction(t, router, "2026-001", "2026-03-01", ct.ID)

	w := do(t, router, http.MethodPost, "/productions", map[string]any{
		"date": "2026-03-02", "production_number": "2026-001",
		"cheeses": []map[string]any{{"cheese_type_id": ct.ID, "liters": 10}},
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "already used") {
		t.Errorf("duplicate number = %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateCheeseTypeWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	ct := createCaciotta(t, router)
	createProduction(t, router, "2026-001", "2026-03-01", ct.ID)

	w := do(t, router, http.MethodGet, "/cheese-types/"+ct.ID, nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	update := CheeseTypeRequest{Name: "Caciotta", Color: "#F2C14E", Protocol: []models.ProtocolStep{{Day: 2, Activity: "Rivoltamento"}}}
	w = do(t, router, http.MethodPut, "/cheese-types/"+ct.ID, update, "If-Match", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[CheeseTypeResponse](t, w)
	if len(resp.Report.Deleted) != 2 || len(resp.Report.Created) != 1 {
		t.Errorf("report = %+v", resp.Report)
	}

	// The old ETag is now stale.
	w = do(t, router, http.MethodPut, "/cheese-types/"+ct.ID, update, "If-Match", etag)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}

	agenda := decode[AgendaResponse](t, do(t, router, http.MethodGet, "/agenda?date=2026-03-03", nil))
	if len(agenda.Items) != 1 || agenda.Items[0].Activity.Title != "Rivoltamento" {
		t.Errorf("regenerated agenda = %+v", agenda.Items)
	}
}

func TestCreateDuplicateCheeseType(t *testing.T) {
	_, router := testEnv(t, "")
	createCaciotta(t, router)
	w := do(t, router, http.MethodPost, "/cheese-types", CheeseTypeRequest{Name: "CACIOTTA"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate = %d, want 409", w.Code)
	}
}

func TestDeleteProductionCascades(t *testing.T) {
	_, router := testEnv(t, "")
	ct := createCaciotta(t, router)
	p := createProduction(t, router, "2026-001", "2026-03-01", ct.ID)

	w := do(t, router, http.MethodDelete, "/productions/"+p.Production.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if rep := decode[ReportResponse](t, w); len(rep.Report.Deleted) != 2 {
		t.Errorf("report = %+v", rep)
	}
	if w := do(t, router, http.MethodGet, "/productions/"+p.Production.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d", w.Code)
	}
	list := decode[map[string][]models.Activity](t, do(t, router, http.MethodGet, "/activities", nil))
	if len(list["activities"]) != 0 {
		t.Errorf("activities left: %+v", list)
	}
}

func TestRecurringActivityToggle(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/activities", ActivityRequest{
		Title: "Pulizia caldaia", Type: models.ActivityRecurring, Recurrence: models.RecurrenceMonthly,
		Date: mustDate(t, "2026-01-31"),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	a := decode[models.Activity](t, w)

	w = do(t, router, http.MethodPost, "/activities/"+a.ID+"/toggle?date=2026-03-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}
	if got := decode[models.Activity](t, w); !got.CompletedDates.Has(mustDate(t, "2026-03-31")) {
		t.Errorf("completed dates = %v", got.CompletedDates)
	}

	occ := decode[OccurrencesResponse](t, do(t, router, http.MethodGet, "/activities/"+a.ID+"/occurrences?from=2026-01-01&to=2026-06-30", nil))
	var got []string
	for _, d := range occ.Dates {
		got = append(got, d.String())
	}
	want := "2026-01-31 2026-03-31 2026-05-31"
	if strings.Join(got, " ") != want {
		t.Errorf("occurrences = %v, want %s", got, want)
	}
}

func TestCreateProtocolActivityRejected(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/activities", ActivityRequest{
		Title: "x", Type: models.ActivityProtocol, Date: mustDate(t, "2026-03-01"),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("protocol create = %d, want 400", w.Code)
	}
}

func TestAgendaRangeValidation(t *testing.T) {
	_, router := testEnv(t, "")
	cases := map[string]int{
		"/agenda/range?from=2026-03-01&to=2026-03-07": http.StatusOK,
		"/agenda/range?from=2026-03-01":               http.StatusBadRequest,
		"/agenda/range?from=2026-03-07&to=2026-03-01": http.StatusBadRequest,
		"/agenda/range?from=2026-01-01&to=2027-06-01": http.StatusBadRequest,
		"/agenda?date=not-a-date":                     http.StatusBadRequest,
	}
	for target, want := range cases {
		if w := do(t, router, http.MethodGet, target, nil); w.Code != want {
			t.Errorf("%s = %d, want %d", target, w.Code, want)
		}
	}
	days := decode[AgendaRangeResponse](t, do(t, router, http.MethodGet, "/agenda/range?from=2026-03-01&to=2026-03-07", nil))
	if len(days.Days) != 7 {
		t.Errorf("days = %d", len(days.Days))
	}
}

func TestStatsEndpoints(t *testing.T) {
	_, router := testEnv(t, "")
	ct := createCaciotta(t, router)
	createProduction(t, router, "2025-001", "2025-12-30", ct.ID)
	createProduction(t, router, "2026-001", "2026-03-01", ct.ID)

	monthly := decode[MonthlyStatsResponse](t, do(t, router, http.MethodGet, "/stats/monthly", nil))
	if monthly.Year != 2026 || len(monthly.Months) != 12 || monthly.Months[2].TotalLiters != 80 {
		t.Errorf("monthly = %+v", monthly)
	}
	years := decode[map[string][]int](t, do(t, router, http.MethodGet, "/stats/years", nil))
	if len(years["years"]) != 2 || years["years"][0] != 2026 {
		t.Errorf("years = %v", years)
	}
	if w := do(t, router, http.MethodGet, "/stats/yearly?year=abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad year = %d", w.Code)
	}
}

func TestNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	for _, target := range []string{"/cheese-types/x", "/productions/x", "/activities/x"} {
		if w := do(t, router, http.MethodGet, target, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d", target, w.Code)
		}
		if w := do(t, router, http.MethodDelete, target, nil); w.Code != http.StatusNotFound {
			t.Errorf("DELETE %s = %d", target, w.Code)
		}
	}
	if w := do(t, router, http.MethodPost, "/activities/x/toggle", nil); w.Code != http.StatusNotFound {
		t.Errorf("toggle missing = %d", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/cheese-types", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret")
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"scheme", "Basic secret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/cheese-types", nil, "Authorization", tt.header)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/cheese-types", nil); w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d", w.Code)
	}
}

// blockingSSE writes headers and waits for the client to go away.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d", w.Code)
	}
}

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
