package api

import (
	"context"
	"embed"
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"daitician/internal/ingredient"
	"daitician/internal/mealplan"
)

// DownloadFilename is the name offered for a saved meal plan.
const DownloadFilename = "meal_plan.txt"

// RequestIDHeader carries the identifier assigned to each request.
const RequestIDHeader = "X-Request-ID"

const (
	noIngredientsMessage    = "Please select at least one ingredient to generate the meal plan."
	invalidSelectionMessage = "Invalid selection: choose between 1000 and 3500 kcal and between 3 and 6 meals."
)

// planEncoding carries the plan through the download form. Browsers
// normalize line breaks in form values to CRLF, so the text is never
// posted raw.
var planEncoding = base64.RawURLEncoding

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the HTML templates served by the form handlers.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// MealPlanRequester defines the interface for generating meal plans.
type MealPlanRequester interface {
	RequestMealPlan(ctx context.Context, ingredients []string, calorieTarget, mealCount int) (string, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Requester MealPlanRequester
}

// NewHandler creates a new Handler.
func NewHandler(requester MealPlanRequester) *Handler {
	return &Handler{Requester: requester}
}

// MealPlanRequest is the JSON body accepted by CreateMealPlan. Zero
// calories or meals fall back to the form defaults.
type MealPlanRequest struct {
	Ingredients []string `json:"ingredients"`
	Other       string   `json:"other"`
	Calories    int      `json:"calories" binding:"omitempty,min=1000,max=3500"`
	Meals       int      `json:"meals" binding:"omitempty,min=3,max=6"`
}

// MealPlanResponse is returned by CreateMealPlan on success.
type MealPlanResponse struct {
	MealPlan string `json:"meal_plan"`
}

type mealPlanForm struct {
	Ingredients []string `form:"ingredients"`
	Other       string   `form:"other"`
	Calories    int      `form:"calories" binding:"omitempty,min=1000,max=3500"`
	Meals       int      `form:"meals" binding:"omitempty,min=3,max=6"`
}

type itemView struct {
	Name     string
	Selected bool
}

type categoryView struct {
	Label string
	Items []itemView
}

type pageData struct {
	Categories  []categoryView
	Calories    int
	Meals       int
	Other       string
	Plan        string
	EncodedPlan string
	Warning     string
	Error       string
	MinCalories int
	MaxCalories int
	CalorieStep int
	MinMeals    int
	MaxMeals    int
}

func newPageData(selected []string, calories, meals int, other string) pageData {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	categories := ingredient.ListCategories()
	views := make([]categoryView, len(categories))
	for i, c := range categories {
		items := make([]itemView, len(c.Ingredients))
		for j, name := range c.Ingredients {
			items[j] = itemView{Name: name, Selected: chosen[name]}
		}
		views[i] = categoryView{Label: "Select " + strings.ToLower(c.Name) + ":", Items: items}
	}

	return pageData{
		Categories:  views,
		Calories:    calories,
		Meals:       meals,
		Other:       other,
		MinCalories: mealplan.MinCalories,
		MaxCalories: mealplan.MaxCalories,
		CalorieStep: mealplan.CalorieStep,
		MinMeals:    mealplan.MinMeals,
		MaxMeals:    mealplan.MaxMeals,
	}
}

func withDefaults(calories, meals int) (int, int) {
	if calories == 0 {
		calories = mealplan.DefaultCalorieTarget
	}
	if meals == 0 {
		meals = mealplan.DefaultMealCount
	}
	return calories, meals
}

// RequestID tags every request with an identifier, reusing the caller's
// X-Request-ID when present, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Index renders the empty form.
func (h *Handler) Index(c *gin.Context) {
	data := newPageData(nil, mealplan.DefaultCalorieTarget, mealplan.DefaultMealCount, "")
	data.Warning = noIngredientsMessage
	c.HTML(http.StatusOK, "index.html", data)
}

// Generate handles the form submission and renders the plan or an inline error.
// The user's selections are echoed back either way.
func (h *Handler) Generate(c *gin.Context) {
	var form mealPlanForm
	if err := c.ShouldBind(&form); err != nil {
		data := newPageData(form.Ingredients, mealplan.DefaultCalorieTarget, mealplan.DefaultMealCount, form.Other)
		slog.InfoContext(c.Request.Context(), "api: invalid form selection", "request_id", c.GetString("request_id"), "error", err)
		data.Error = invalidSelectionMessage
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}
	calories, meals := withDefaults(form.Calories, form.Meals)
	data := newPageData(form.Ingredients, calories, meals, form.Other)

	ingredients := ingredient.Merge(form.Ingredients, form.Other)
	if len(ingredients) == 0 {
		data.Warning = noIngredientsMessage
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	plan, err := h.Requester.RequestMealPlan(c.Request.Context(), ingredients, calories, meals)
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(c, err), "index.html", data)
		return
	}

	data.Plan = plan
	data.EncodedPlan = planEncoding.EncodeToString([]byte(plan))
	c.HTML(http.StatusOK, "index.html", data)
}

// Download returns the plan rendered by Generate as a UTF-8 text
// attachment, byte for byte. The form field holds the encoded plan.
func (h *Handler) Download(c *gin.Context) {
	plan, err := planEncoding.DecodeString(strings.TrimSpace(c.PostForm("plan")))
	if err != nil || len(plan) == 0 {
		c.String(http.StatusBadRequest, "No meal plan to download.")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", plan)
}

// ListIngredients returns the ingredient catalog in display order.
func (h *Handler) ListIngredients(c *gin.Context) {
	c.JSON(http.StatusOK, ingredient.ListCategories())
}

// CreateMealPlan generates a meal plan from a JSON request.
func (h *Handler) CreateMealPlan(c *gin.Context) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredients := ingredient.Merge(req.Ingredients, req.Other)
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": noIngredientsMessage})
		return
	}
	calories, meals := withDefaults(req.Calories, req.Meals)

	plan, err := h.Requester.RequestMealPlan(c.Request.Context(), ingredients, calories, meals)
	if err != nil {
		c.JSON(statusFor(c, err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, MealPlanResponse{MealPlan: plan})
}

func statusFor(c *gin.Context, err error) int {
	if _, ok := mealplan.IsRequestFailed(err); ok {
		slog.WarnContext(c.Request.Context(), "api: meal plan request failed", "request_id", c.GetString("request_id"), "error", err)
		return http.StatusBadGateway
	}
	slog.ErrorContext(c.Request.Context(), "api: unexpected meal plan error", "request_id", c.GetString("request_id"), "error", err)
	return http.StatusInternalServerError
}
