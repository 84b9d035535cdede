package implementation

import (
	"context"
	"errors"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/mapper"
	"library-assistant-be/internal/model"
	"library-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type UserPreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserPreferenceMapper
}

func NewUserPreferenceRepository(db *gorm.DB) contract.UserPreferenceRepository {
	return &UserPreferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserPreferenceMapper(),
	}
}

func (r *UserPreferenceRepositoryImpl) FindByUserID(ctx context.Context, userId int) (*entity.UserPreference, error) {
	var m model.UserPreference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
