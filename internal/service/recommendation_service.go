package service

import (
	"context"

	"library-assistant-be/internal/dto"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/specification"
	"library-assistant-be/pkg/rag/recommend"
)

type IRecommendationService interface {
	Recommend(ctx context.Context, userID *int, limit int) (*dto.RecommendationsResponse, error)
}

type recommendationService struct {
	scorer *recommend.Scorer
	copies contract.BookCopyRepository
	logger logger.ILogger
}

func NewRecommendationService(scorer *recommend.Scorer, copies contract.BookCopyRepository, log logger.ILogger) IRecommendationService {
	return &recommendationService{scorer: scorer, copies: copies, logger: log}
}

func (s *recommendationService) Recommend(ctx context.Context, userID *int, limit int) (*dto.RecommendationsResponse, error) {
	profile, err := s.scorer.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.scorer.Recommend(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	avail, err := s.copies.Availability(ctx, res.IDs())
	if err != nil {
		s.logger.Warn("RECOMMEND", "Availability lookup failed", map[string]interface{}{"error": err.Error()})
		avail = nil
	}

	books := make([]dto.RecommendedBookResponse, len(res.Books))
	for i, b := range res.Books {
		a, ok := avail[b.Id]
		if !ok {
			a = entity.Availability{BookId: b.Id}
		}
		books[i] = dto.RecommendedBookResponse{
			Id:           b.Id,
			Title:        b.Title,
			Author:       b.Author,
			Cover:        b.CoverURL(),
			Genres:       b.Genres,
			Pacing:       b.Pacing,
			Tone:         b.Tone,
			Themes:       b.Themes,
			MoodTags:     b.MoodTags,
			Score:        res.Scores[i],
			Availability: a.Text(),
		}
	}

	return &dto.RecommendationsResponse{Personalized: profile != nil, Books: books}, nil
}

type ICatalogueService interface {
	Facet(ctx context.Context, facet recommend.Facet, limit int) (*dto.FacetResponse, error)
}

type catalogueService struct {
	books contract.BookRepository
}

func NewCatalogueService(books contract.BookRepository) ICatalogueService {
	return &catalogueService{books: books}
}

// Facet lists the most common theme or mood tags across enriched books.
func (s *catalogueService) Facet(ctx context.Context, facet recommend.Facet, limit int) (*dto.FacetResponse, error) {
	books, err := s.books.FindAll(ctx, specification.WithoutEmbedding{})
	if err != nil {
		return nil, err
	}
	tags := recommend.TopTags(books, facet, limit)
	if tags == nil {
		tags = []string{}
	}
	return &dto.FacetResponse{Facet: string(facet), Tags: tags}, nil
}
