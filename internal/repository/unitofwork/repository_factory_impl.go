package unitofwork

import (
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/implementation"
	"library-assistant-be/internal/repository/memory"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	books       contract.BookRepository
	copies      contract.BookCopyRepository
	preferences contract.UserPreferenceRepository
}

// NewRepositoryFactory backs every repository with the given database.
func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		books:       implementation.NewBookRepository(db),
		copies:      implementation.NewBookCopyRepository(db),
		preferences: implementation.NewUserPreferenceRepository(db),
	}
}

// NewMemoryRepositoryFactory serves every repository from one in-memory catalogue.
func NewMemoryRepositoryFactory(cat *memory.Catalogue) RepositoryFactory {
	return &RepositoryFactoryImpl{books: cat, copies: cat, preferences: cat}
}

func (f *RepositoryFactoryImpl) BookRepository() contract.BookRepository {
	return f.books
}

func (f *RepositoryFactoryImpl) BookCopyRepository() contract.BookCopyRepository {
	return f.copies
}

func (f *RepositoryFactoryImpl) UserPreferenceRepository() contract.UserPreferenceRepository {
	return f.preferences
}
