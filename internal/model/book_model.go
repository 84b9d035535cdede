package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Book struct {
	Id            int      `gorm:"primaryKey"`
	Title         string   `gorm:"type:varchar(255);not null;index"`
	TitleLong     *string  `gorm:"type:varchar(512)"`
	Author        string   `gorm:"type:varchar(255);not null;index"`
	Authors       *string  `gorm:"type:varchar(512)"`
	Isbn          *string  `gorm:"type:varchar(32);uniqueIndex"`
	Isbn10        *string  `gorm:"type:varchar(32)"`
	Isbn13        *string  `gorm:"type:varchar(32)"`
	Publisher     *string  `gorm:"type:varchar(255)"`
	Genres        *string  `gorm:"type:varchar(255)"`
	Subjects      *string  `gorm:"type:varchar(512)"`
	Description   *string  `gorm:"type:text"`
	Synopsis      *string  `gorm:"type:text"`
	Language      *string  `gorm:"type:varchar(64)"`
	Pages         *int     `gorm:"type:integer"`
	Rating        *float64 `gorm:"type:double precision"`
	DatePublished *string  `gorm:"type:varchar(32)"` // YYYY-MM-DD or a bare year
	CoverImageUrl *string  `gorm:"type:varchar(512)"`
	Image         *string  `gorm:"type:varchar(512)"`

	Embedding *pgvector.Vector `gorm:"type:vector(384)"` // all-minilm

	Pacing          *string                      `gorm:"type:varchar(32)"`
	Tone            *string                      `gorm:"type:varchar(64)"`
	MoodTags        *datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Themes          *datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ContentWarnings *datatypes.JSONSlice[string] `gorm:"type:jsonb"`
}

func (Book) TableName() string {
	return "books"
}

const (
	CopyStatusAvailable = "available"
	CopyStatusIssued    = "issued"
)

type BookCopy struct {
	Id      int        `gorm:"primaryKey"`
	BookId  int        `gorm:"not null;index"`
	Status  string     `gorm:"type:varchar(16);not null;default:'available'"`
	DueDate *time.Time `gorm:"type:date"`
}

func (BookCopy) TableName() string {
	return "book_copies"
}
