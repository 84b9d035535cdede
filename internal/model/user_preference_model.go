package model

import (
	"gorm.io/datatypes"
)

type UserPreference struct {
	Id               int                         `gorm:"primaryKey"`
	UserId           int                         `gorm:"not null;uniqueIndex"`
	FavoriteGenres   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	PacingPreference *string                     `gorm:"type:varchar(32)"`
	TonePreference   *string                     `gorm:"type:varchar(32)"`
	PreferredThemes  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	PreferredMoods   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	TriggersToAvoid  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	DislikedGenres   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ReadingGoals     datatypes.JSONMap           `gorm:"type:jsonb"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
