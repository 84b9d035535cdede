package mapper

import (
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/model"
)

type UserPreferenceMapper struct{}

func NewUserPreferenceMapper() *UserPreferenceMapper {
	return &UserPreferenceMapper{}
}

func (m *UserPreferenceMapper) ToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}
	return &entity.UserPreference{
		UserId:           p.UserId,
		FavoriteGenres:   []string(p.FavoriteGenres),
		DislikedGenres:   []string(p.DislikedGenres),
		PacingPreference: deref(p.PacingPreference),
		TonePreference:   deref(p.TonePreference),
		PreferredThemes:  []string(p.PreferredThemes),
		PreferredMoods:   []string(p.PreferredMoods),
		TriggersToAvoid:  []string(p.TriggersToAvoid),
		ReadingGoals:     map[string]any(p.ReadingGoals),
	}
}
