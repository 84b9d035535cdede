package specification

import (
	"fmt"
	"strconv"

	"library-assistant-be/internal/entity"

	"gorm.io/gorm"
)

// HasEmbedding keeps only indexed books.
type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.embedding IS NOT NULL")
}

func (s HasEmbedding) Matches(b *entity.Book) bool {
	return b.IsIndexed()
}

// PagesAtMost is an inclusive upper page bound. Books without a page count never match.
type PagesAtMost struct {
	Pages int
}

func (s PagesAtMost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.pages <= ?", s.Pages)
}

func (s PagesAtMost) Matches(b *entity.Book) bool {
	return b.Pages != nil && *b.Pages <= s.Pages
}

// PagesAtLeast is an inclusive lower page bound.
type PagesAtLeast struct {
	Pages int
}

func (s PagesAtLeast) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.pages >= ?", s.Pages)
}

func (s PagesAtLeast) Matches(b *entity.Book) bool {
	return b.Pages != nil && *b.Pages >= s.Pages
}

type GenreLike struct {
	Genre string
}

func (s GenreLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.genres ILIKE ?", containsPattern(s.Genre))
}

func (s GenreLike) Matches(b *entity.Book) bool {
	return b.Genres != "" && containsFold(b.Genres, s.Genre)
}

type LanguageLike struct {
	Language string
}

func (s LanguageLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.language ILIKE ?", containsPattern(s.Language))
}

func (s LanguageLike) Matches(b *entity.Book) bool {
	return b.Language != "" && containsFold(b.Language, s.Language)
}

// PublishedFrom compares the free-form date_published string against the year
// as text. "2001-03-04" >= "2001" holds, but a non four-digit year format
// compares wrongly; the store does not keep a typed date to do better.
type PublishedFrom struct {
	Year int
}

func (s PublishedFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.date_published >= ?", strconv.Itoa(s.Year))
}

func (s PublishedFrom) Matches(b *entity.Book) bool {
	return b.DatePublished != "" && b.DatePublished >= strconv.Itoa(s.Year)
}

// PublishedUntil has the same lexicographic limitation as PublishedFrom:
// "2001-03-04" <= "2001" is false, so full dates in the end year are excluded.
type PublishedUntil struct {
	Year int
}

func (s PublishedUntil) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.date_published <= ?", strconv.Itoa(s.Year))
}

func (s PublishedUntil) Matches(b *entity.Book) bool {
	return b.DatePublished != "" && b.DatePublished <= strconv.Itoa(s.Year)
}

type PacingLike struct {
	Pacing string
}

func (s PacingLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.pacing ILIKE ?", containsPattern(s.Pacing))
}

func (s PacingLike) Matches(b *entity.Book) bool {
	return b.Pacing != "" && containsFold(b.Pacing, s.Pacing)
}

type ToneLike struct {
	Tone string
}

func (s ToneLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.tone ILIKE ?", containsPattern(s.Tone))
}

func (s ToneLike) Matches(b *entity.Book) bool {
	return b.Tone != "" && containsFold(b.Tone, s.Tone)
}

const arrayContainsSQL = "EXISTS (SELECT 1 FROM jsonb_array_elements_text(books.%s) AS elem(value) WHERE elem.value ILIKE ?)"

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if containsFold(v, term) {
			return true
		}
	}
	return false
}

// ThemesContainAll requires every term to be a substring of at least one theme.
type ThemesContainAll struct {
	Terms []string
}

func (s ThemesContainAll) Apply(db *gorm.DB) *gorm.DB {
	for _, term := range s.Terms {
		db = db.Where(fmt.Sprintf(arrayContainsSQL, "themes"), containsPattern(term))
	}
	return db
}

func (s ThemesContainAll) Matches(b *entity.Book) bool {
	for _, term := range s.Terms {
		if !anyContains(b.Themes, term) {
			return false
		}
	}
	return true
}

// MoodsContainAll is ThemesContainAll over mood_tags.
type MoodsContainAll struct {
	Terms []string
}

func (s MoodsContainAll) Apply(db *gorm.DB) *gorm.DB {
	for _, term := range s.Terms {
		db = db.Where(fmt.Sprintf(arrayContainsSQL, "mood_tags"), containsPattern(term))
	}
	return db
}

func (s MoodsContainAll) Matches(b *entity.Book) bool {
	for _, term := range s.Terms {
		if !anyContains(b.MoodTags, term) {
			return false
		}
	}
	return true
}

type TitleLike struct {
	Title string
}

func (s TitleLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.title ILIKE ?", containsPattern(s.Title))
}

func (s TitleLike) Matches(b *entity.Book) bool {
	return containsFold(b.Title, s.Title)
}

type ExcludeBook struct {
	Id int
}

func (s ExcludeBook) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("books.id <> ?", s.Id)
}

func (s ExcludeBook) Matches(b *entity.Book) bool {
	return b.Id != s.Id
}

// WithoutEmbedding skips loading the vector column. Matches everything.
type WithoutEmbedding struct{}

func (s WithoutEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Omit("embedding")
}

func (s WithoutEmbedding) Matches(*entity.Book) bool {
	return true
}
