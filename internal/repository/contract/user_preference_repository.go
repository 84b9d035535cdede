package contract

import (
	"context"

	"library-assistant-be/internal/entity"
)

type UserPreferenceRepository interface {
	// FindByUserID returns nil, nil when the user has no stored profile
	FindByUserID(ctx context.Context, userId int) (*entity.UserPreference, error)
}
