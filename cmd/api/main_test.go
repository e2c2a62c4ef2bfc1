package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daitician/internal/api"
	"daitician/internal/ingredient"
	"daitician/internal/mealplan"
)

// mockRequester is a mock of the meal plan requester.
type mockRequester struct {
	plan string
	err  error

	calls               int
	receivedIngredients []string
	receivedCalories    int
	receivedMeals       int
}

// RequestMealPlan mocks the RequestMealPlan method.
func (m *mockRequester) RequestMealPlan(ctx context.Context, ingredients []string, calorieTarget, mealCount int) (string, error) {
	m.calls++
	m.receivedIngredients = ingredients
	m.receivedCalories = calorieTarget
	m.receivedMeals = mealCount
	if m.err != nil {
		return "", m.err
	}
	return m.plan, nil
}

func newTestRouter(requester api.MealPlanRequester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return setupRouter(api.NewHandler(requester), []string{"http://localhost:8081"})
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestIndex(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Welcome to dAItician!")
	assert.Contains(t, body, "Select vegetables:")
	assert.Contains(t, body, "Select grains:")
	assert.Contains(t, body, `value="2000"`)
	assert.Contains(t, body, "Please select at least one ingredient to generate the meal plan.")
	assert.Less(t, strings.Index(body, "Select vegetables:"), strings.Index(body, "Select fruits:"))
}

func TestGenerate(t *testing.T) {
	requester := &mockRequester{plan: "### breakfast: Chicken Rice Bowl (500 kcal)\n---\n"}
	r := newTestRouter(requester)

	rr := postForm(r, "/generate", url.Values{
		"ingredients": {"chicken", "rice"},
		"other":       {"broccoli, "},
		"calories":    {"2000"},
		"meals":       {"5"},
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, requester.calls)
	assert.Equal(t, []string{"chicken", "rice", "broccoli"}, requester.receivedIngredients)
	assert.Equal(t, 2000, requester.receivedCalories)
	assert.Equal(t, 5, requester.receivedMeals)

	body := rr.Body.String()
	assert.Contains(t, body, "Your meal plan:")
	assert.Contains(t, body, "Chicken Rice Bowl (500 kcal)")
	assert.Contains(t, body, `action="/download"`)
}

func TestGenerate_NoIngredients(t *testing.T) {
	requester := &mockRequester{plan: "unused"}
	r := newTestRouter(requester)

	rr := postForm(r, "/generate", url.Values{"calories": {"1500"}, "meals": {"3"}, "other": {" , "}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, requester.calls)
	assert.Contains(t, rr.Body.String(), "Please select at least one ingredient to generate the meal plan.")
}

func TestGenerate_OutOfRange(t *testing.T) {
	requester := &mockRequester{plan: "unused"}
	r := newTestRouter(requester)

	rr := postForm(r, "/generate", url.Values{"ingredients": {"oats"}, "calories": {"5000"}, "meals": {"5"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, requester.calls)
	body := rr.Body.String()
	assert.Contains(t, body, "Invalid selection: choose between 1000 and 3500 kcal and between 3 and 6 meals.")
	assert.NotContains(t, body, "Field validation")
	assert.NotContains(t, body, "mealPlanForm")
}

func TestGenerate_RequestFailedKeepsSelections(t *testing.T) {
	requester := &mockRequester{err: &mealplan.RequestFailedError{Message: "invalid api key"}}
	r := newTestRouter(requester)

	rr := postForm(r, "/generate", url.Values{
		"ingredients": {"salmon"},
		"other":       {"dill"},
		"calories":    {"1800"},
		"meals":       {"4"},
	})

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "an error occurred: invalid api key")
	assert.Contains(t, body, `<option value="salmon" selected>`)
	assert.Contains(t, body, `value="dill"`)
	assert.Contains(t, body, `value="1800"`)
	assert.NotContains(t, body, "Your meal plan:")
}

var hiddenPlanField = regexp.MustCompile(`name="plan" value="([^"]*)"`)

// browserEncode mimics how a browser submits a form field: line breaks in
// the value are normalized to CRLF before urlencoding.
func browserEncode(form url.Values) string {
	normalized := url.Values{}
	for k, vs := range form {
		for _, v := range vs {
			v = strings.ReplaceAll(strings.ReplaceAll(v, "\r\n", "\n"), "\n", "\r\n")
			normalized.Add(k, v)
		}
	}
	return normalized.Encode()
}

func TestDownload(t *testing.T) {
	r := newTestRouter(&mockRequester{})
	plan := "### śniadanie: Owsianka (350 kcal)\n---\n### lunch: Café Salad (500 kcal)"

	rr := postForm(r, "/download", url.Values{"plan": {base64.RawURLEncoding.EncodeToString([]byte(plan))}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="meal_plan.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte(plan), rr.Body.Bytes())
}

func TestDownload_FromGeneratedPage(t *testing.T) {
	plan := "### breakfast: Crème Oats (400 kcal)\nMix & soak overnight.\n---\n\n### lunch: Tuna <Wrap> (600 kcal)\n"
	r := newTestRouter(&mockRequester{plan: plan})

	page := postForm(r, "/generate", url.Values{"ingredients": {"oats", "tuna"}})
	require.Equal(t, http.StatusOK, page.Code)
	m := hiddenPlanField.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2)

	req := httptest.NewRequest(http.MethodPost, "/download",
		strings.NewReader(browserEncode(url.Values{"plan": {html.UnescapeString(m[1])}})))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []byte(plan), rr.Body.Bytes())
}

func TestDownload_RawPlanRejected(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := postForm(r, "/download", url.Values{"plan": {"### lunch: Salad (300 kcal)"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDownload_Empty(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := postForm(r, "/download", url.Values{})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListIngredients(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ingredients", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var categories []ingredient.Category
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &categories))
	assert.Equal(t, ingredient.ListCategories(), categories)
}

func TestCreateMealPlan(t *testing.T) {
	requester := &mockRequester{plan: "### lunch: Tuna Salad (600 kcal)"}
	r := newTestRouter(requester)

	rr := postJSON(r, "/api/meal-plans", `{"ingredients": ["tuna", "lettuce"], "other": "capers", "calories": 2500, "meals": 6}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp api.MealPlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "### lunch: Tuna Salad (600 kcal)", resp.MealPlan)
	assert.Equal(t, []string{"tuna", "lettuce", "capers"}, requester.receivedIngredients)
	assert.Equal(t, 2500, requester.receivedCalories)
	assert.Equal(t, 6, requester.receivedMeals)
}

func TestCreateMealPlan_Defaults(t *testing.T) {
	requester := &mockRequester{plan: "plan"}
	r := newTestRouter(requester)

	rr := postJSON(r, "/api/meal-plans", `{"ingredients": ["eggs"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2000, requester.receivedCalories)
	assert.Equal(t, 5, requester.receivedMeals)
}

func TestCreateMealPlan_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "NoIngredients", body: `{"ingredients": [], "calories": 2000, "meals": 5}`},
		{name: "TooFewMeals", body: `{"ingredients": ["eggs"], "meals": 2}`},
		{name: "TooManyCalories", body: `{"ingredients": ["eggs"], "calories": 3600}`},
		{name: "Malformed", body: `{"ingredients": "eggs"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requester := &mockRequester{plan: "plan"}
			r := newTestRouter(requester)

			rr := postJSON(r, "/api/meal-plans", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, 0, requester.calls)
		})
	}
}

func TestCreateMealPlan_RequestFailed(t *testing.T) {
	requester := &mockRequester{err: &mealplan.RequestFailedError{Message: "connection refused"}}
	r := newTestRouter(requester)

	rr := postJSON(r, "/api/meal-plans", `{"ingredients": ["eggs"]}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error": "an error occurred: connection refused"}`, rr.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(rr.Header().Get(api.RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(api.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&mockRequester{})

	req := httptest.NewRequest(http.MethodOptions, "/api/meal-plans", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:8081", rr.Header().Get("Access-Control-Allow-Origin"))
}
