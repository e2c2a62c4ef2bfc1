package mealplan

// Bounds and defaults offered by the form. The Requester itself does not
// enforce them.
const (
	MinCalories          = 1000
	MaxCalories          = 3500
	CalorieStep          = 100
	DefaultCalorieTarget = 2000

	MinMeals         = 3
	MaxMeals         = 6
	DefaultMealCount = 5
)

// Request holds the user's selections for one meal plan.
type Request struct {
	Ingredients   []string
	CalorieTarget int
	MealCount     int
}

// Role tags a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// Params are the generation parameters sent with a completion request.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Candidates  int
}

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is what a completion service returned for one request.
type Completion struct {
	Candidates []string
	Usage      TokenUsage
}
