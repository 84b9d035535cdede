package implementation

import (
	"context"
	"time"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/model"
	"library-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type BookCopyRepositoryImpl struct {
	db *gorm.DB
}

func NewBookCopyRepository(db *gorm.DB) contract.BookCopyRepository {
	return &BookCopyRepositoryImpl{db: db}
}

func (r *BookCopyRepositoryImpl) Availability(ctx context.Context, bookIds []int) (map[int]entity.Availability, error) {
	out := make(map[int]entity.Availability, len(bookIds))
	for _, id := range bookIds {
		out[id] = entity.Availability{BookId: id}
	}
	if len(bookIds) == 0 {
		return out, nil
	}

	type row struct {
		BookId      int
		Total       int
		Available   int
		EarliestDue *time.Time
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.BookCopy{}).
		Select(`book_id,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS available,
			MIN(due_date) FILTER (WHERE status = ?) AS earliest_due`,
			model.CopyStatusAvailable, model.CopyStatusIssued).
		Where("book_id IN ?", bookIds).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, res := range rows {
		out[res.BookId] = entity.Availability{
			BookId:          res.BookId,
			TotalCopies:     res.Total,
			AvailableCopies: res.Available,
			EarliestDueDate: res.EarliestDue,
		}
	}
	return out, nil
}
