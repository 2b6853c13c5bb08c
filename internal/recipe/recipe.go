package recipe

import (
	"time"

	"golang.org/x/text/language"
)

// Difficulty levels for a recipe.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Defaults applied to fields the model left empty. The model is instructed to
// leave unknown fields blank rather than fabricate, so defaulting happens on
// our side.
const (
	DefaultCookingTime = 30
	DefaultServings    = 2
	DefaultCuisine     = "International"
)

// Recipe is the canonical structured record produced by extraction and
// persisted by the store. JSON tags face the HTTP API, bson tags the database.
type Recipe struct {
	ID          string    `json:"id,omitempty" bson:"-"`
	UserID      string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Ingredients []string  `json:"ingredients" bson:"ingredients"`
	Steps       []string  `json:"steps" bson:"steps"`
	CookingTime int       `json:"cooking_time" bson:"cooking_time"`
	Servings    int       `json:"servings" bson:"servings"`
	Difficulty  string    `json:"difficulty" bson:"difficulty"`
	Cuisine     string    `json:"cuisine" bson:"cuisine"`
	Tags        []string  `json:"tags" bson:"tags"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	SourceURL   string    `json:"source_url" bson:"source_url"`
	Language    string    `json:"language" bson:"language"`
	CreatedAt   time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ApplyDefaults fills fields the model left empty with their documented
// defaults and replaces nil slices with empty ones so the API never emits
// JSON null for a list.
func ApplyDefaults(r *Recipe) {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.CookingTime <= 0 {
		r.CookingTime = DefaultCookingTime
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.Difficulty == "" {
		r.Difficulty = DifficultyEasy
	}
	if r.Cuisine == "" {
		r.Cuisine = DefaultCuisine
	}
}

// EstimateDifficulty is the offline heuristic used when no model judgement is
// available: short and simple recipes are Easy, moderately involved ones
// Medium, everything else Hard.
func EstimateDifficulty(cookingTime, ingredientCount int) string {
	switch {
	case cookingTime <= 30 && ingredientCount <= 5:
		return DifficultyEasy
	case cookingTime <= 60 && ingredientCount <= 10:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// NormalizeLanguage canonicalizes a model-reported language name or code to a
// BCP-47 tag. Unparseable input passes through unchanged.
func NormalizeLanguage(s string) string {
	if s == "" {
		return s
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}
