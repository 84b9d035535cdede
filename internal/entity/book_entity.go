package entity

import (
	"fmt"
	"time"
)

// Book is a catalogue entry. A nil Embedding means the book is not indexed yet;
// nil enrichment slices mean it has not been enriched.
type Book struct {
	Id            int
	Title         string
	TitleLong     string
	Author        string
	Authors       string
	Isbn          string
	Isbn10        string
	Isbn13        string
	Publisher     string
	Genres        string
	Subjects      string
	Description   string
	Synopsis      string
	Language      string
	Pages         *int
	Rating        *float64
	DatePublished string
	CoverImageUrl string
	Image         string
	Embedding     []float32

	Pacing          string
	Tone            string
	MoodTags        []string
	Themes          []string
	ContentWarnings []string
}

func (b *Book) CoverURL() string {
	if b.CoverImageUrl != "" {
		return b.CoverImageUrl
	}
	return b.Image
}

func (b *Book) IsIndexed() bool {
	return len(b.Embedding) > 0
}

type Availability struct {
	BookId          int
	TotalCopies     int
	AvailableCopies int
	EarliestDueDate *time.Time
}

func (a Availability) Text() string {
	return fmt.Sprintf("%d/%d available", a.AvailableCopies, a.TotalCopies)
}
