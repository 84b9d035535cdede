package entity

type UserPreference struct {
	UserId           int
	FavoriteGenres   []string
	DislikedGenres   []string
	PacingPreference string
	TonePreference   string
	PreferredThemes  []string
	PreferredMoods   []string
	TriggersToAvoid  []string
	ReadingGoals     map[string]any
}
