package unitofwork

import "library-assistant-be/internal/repository/contract"

// RepositoryFactory hands out the read-only repositories a chat turn uses.
type RepositoryFactory interface {
	BookRepository() contract.BookRepository
	BookCopyRepository() contract.BookCopyRepository
	UserPreferenceRepository() contract.UserPreferenceRepository
}
