package recipe

import "testing"

func TestApplyDefaults(t *testing.T) {
	r := &Recipe{Title: "Toast"}
	ApplyDefaults(r)
	if r.CookingTime != 30 {
		t.Fatalf("expected cooking_time default 30, got %d", r.CookingTime)
	}
	if r.Servings != 2 {
		t.Fatalf("expected servings default 2, got %d", r.Servings)
	}
	if r.Difficulty != DifficultyEasy {
		t.Fatalf("expected difficulty default Easy, got %q", r.Difficulty)
	}
	if r.Cuisine != DefaultCuisine {
		t.Fatalf("expected cuisine default International, got %q", r.Cuisine)
	}
	if r.Ingredients == nil || r.Steps == nil || r.Tags == nil {
		t.Fatalf("expected nil slices replaced with empty ones")
	}
}

func TestApplyDefaults_KeepsProvidedValues(t *testing.T) {
	r := &Recipe{
		CookingTime: 45,
		Servings:    6,
		Difficulty:  DifficultyHard,
		Cuisine:     "Italian",
		Ingredients: []string{"flour"},
	}
	ApplyDefaults(r)
	if r.CookingTime != 45 || r.Servings != 6 || r.Difficulty != DifficultyHard || r.Cuisine != "Italian" {
		t.Fatalf("defaults overwrote provided values: %+v", r)
	}
	if len(r.Ingredients) != 1 {
		t.Fatalf("expected ingredients preserved")
	}
}

func TestEstimateDifficulty(t *testing.T) {
	cases := []struct {
		minutes, count int
		want           string
	}{
		{10, 3, DifficultyEasy},
		{30, 5, DifficultyEasy},
		{30, 6, DifficultyMedium},
		{45, 8, DifficultyMedium},
		{60, 10, DifficultyMedium},
		{61, 4, DifficultyHard},
		{20, 11, DifficultyHard},
	}
	for _, c := range cases {
		if got := EstimateDifficulty(c.minutes, c.count); got != c.want {
			t.Fatalf("EstimateDifficulty(%d, %d) = %q, want %q", c.minutes, c.count, got, c.want)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("ru"); got != "ru" {
		t.Fatalf("expected 'ru', got %q", got)
	}
	if got := NormalizeLanguage("en-US"); got != "en-US" {
		t.Fatalf("expected 'en-US', got %q", got)
	}
	// free-form names the parser cannot handle pass through
	if got := NormalizeLanguage("Russian (probably)"); got != "Russian (probably)" {
		t.Fatalf("expected passthrough, got %q", got)
	}
	if got := NormalizeLanguage(""); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}
