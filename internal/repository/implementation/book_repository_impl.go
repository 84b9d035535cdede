package implementation

import (
	"context"
	"errors"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/mapper"
	"library-assistant-be/internal/model"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type BookRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookMapper
}

func NewBookRepository(db *gorm.DB) contract.BookRepository {
	return &BookRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookMapper(),
	}
}

func (r *BookRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.BookSpecification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BookRepositoryImpl) FindByID(ctx context.Context, id int) (*entity.Book, error) {
	var m model.Book
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookRepositoryImpl) FindOne(ctx context.Context, specs ...specification.BookSpecification) (*entity.Book, error) {
	var m model.Book
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Book{}), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookRepositoryImpl) FindAll(ctx context.Context, specs ...specification.BookSpecification) ([]*entity.Book, error) {
	var models []*model.Book
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Book{}), specs...)
	if err := query.Order("books.id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BookRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.BookSpecification) ([]*contract.ScoredBook, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Book
		Distance float64
	}
	var results []result

	// pgvector cosine distance: embedding <=> vector
	queryVector := pgvector.NewVector(embedding)
	query := r.db.WithContext(ctx).
		Table("books").
		Select("books.*, (books.embedding <=> ?) AS distance", queryVector).
		Where("books.embedding IS NOT NULL")
	query = r.applySpecifications(query, specs...)

	err := query.
		Order(gorm.Expr("books.embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredBook, len(results))
	for i := range results {
		scored[i] = &contract.ScoredBook{
			Book:     r.mapper.ToEntity(&results[i].Book),
			Distance: results[i].Distance,
		}
	}
	return scored, nil
}
