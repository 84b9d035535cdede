package mapper

import (
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type BookMapper struct{}

func NewBookMapper() *BookMapper {
	return &BookMapper{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sliceOf(j *datatypes.JSONSlice[string]) []string {
	if j == nil {
		return nil
	}
	return []string(*j)
}

func jsonSliceOf(s []string) *datatypes.JSONSlice[string] {
	if s == nil {
		return nil
	}
	j := datatypes.JSONSlice[string](s)
	return &j
}

func (m *BookMapper) ToEntity(b *model.Book) *entity.Book {
	if b == nil {
		return nil
	}

	var embedding []float32
	if b.Embedding != nil {
		embedding = b.Embedding.Slice()
	}

	return &entity.Book{
		Id:              b.Id,
		Title:           b.Title,
		TitleLong:       deref(b.TitleLong),
		Author:          b.Author,
		Authors:         deref(b.Authors),
		Isbn:            deref(b.Isbn),
		Isbn10:          deref(b.Isbn10),
		Isbn13:          deref(b.Isbn13),
		Publisher:       deref(b.Publisher),
		Genres:          deref(b.Genres),
		Subjects:        deref(b.Subjects),
		Description:     deref(b.Description),
		Synopsis:        deref(b.Synopsis),
		Language:        deref(b.Language),
		Pages:           b.Pages,
		Rating:          b.Rating,
		DatePublished:   deref(b.DatePublished),
		CoverImageUrl:   deref(b.CoverImageUrl),
		Image:           deref(b.Image),
		Embedding:       embedding,
		Pacing:          deref(b.Pacing),
		Tone:            deref(b.Tone),
		MoodTags:        sliceOf(b.MoodTags),
		Themes:          sliceOf(b.Themes),
		ContentWarnings: sliceOf(b.ContentWarnings),
	}
}

func (m *BookMapper) ToModel(b *entity.Book) *model.Book {
	if b == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(b.Embedding) > 0 {
		v := pgvector.NewVector(b.Embedding)
		embedding = &v
	}

	return &model.Book{
		Id:              b.Id,
		Title:           b.Title,
		TitleLong:       optional(b.TitleLong),
		Author:          b.Author,
		Authors:         optional(b.Authors),
		Isbn:            optional(b.Isbn),
		Isbn10:          optional(b.Isbn10),
		Isbn13:          optional(b.Isbn13),
		Publisher:       optional(b.Publisher),
		Genres:          optional(b.Genres),
		Subjects:        optional(b.Subjects),
		Description:     optional(b.Description),
		Synopsis:        optional(b.Synopsis),
		Language:        optional(b.Language),
		Pages:           b.Pages,
		Rating:          b.Rating,
		DatePublished:   optional(b.DatePublished),
		CoverImageUrl:   optional(b.CoverImageUrl),
		Image:           optional(b.Image),
		Embedding:       embedding,
		Pacing:          optional(b.Pacing),
		Tone:            optional(b.Tone),
		MoodTags:        jsonSliceOf(b.MoodTags),
		Themes:          jsonSliceOf(b.Themes),
		ContentWarnings: jsonSliceOf(b.ContentWarnings),
	}
}

func (m *BookMapper) ToEntities(books []*model.Book) []*entity.Book {
	entities := make([]*entity.Book, len(books))
	for i, b := range books {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
