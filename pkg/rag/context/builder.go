// Package context renders retrieved books into the grounding block of the
// assistant prompt.
package context

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/contract"
)

const unknown = "unknown"

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

// Preview returns the first 300 runes of the synopsis, else of the description,
// marking truncation with "...".
func Preview(b *entity.Book) string {
	text := strings.TrimSpace(b.Synopsis)
	if text == "" {
		text = strings.TrimSpace(b.Description)
	}
	if text == "" {
		return constant.NoDescription
	}

	runes := []rune(text)
	if len(runes) <= constant.SynopsisPreviewRunes {
		return text
	}
	return string(runes[:constant.SynopsisPreviewRunes]) + "..."
}

// Tag is the machine-parsable reference line for one book.
func Tag(b *entity.Book, a entity.Availability) string {
	return fmt.Sprintf("BOOK[%d|%s|%s|%s|%s]", b.Id, b.Title, b.Author, b.CoverURL(), a.Text())
}

// Render builds the context block. Books missing from avail render as 0/0.
func Render(books []*entity.Book, avail map[int]entity.Availability) string {
	if len(books) == 0 {
		return constant.EmptyContextSentinel
	}

	var sb strings.Builder
	for i, b := range books {
		a, ok := avail[b.Id]
		if !ok {
			a = entity.Availability{BookId: b.Id}
		}

		pages := unknown
		if b.Pages != nil {
			pages = strconv.Itoa(*b.Pages)
		}

		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, Tag(b, a)))
		sb.WriteString(fmt.Sprintf("   (Genre: %s, Pages: %s, Year: %s)\n", orUnknown(b.Genres), pages, orUnknown(b.DatePublished)))

		switch {
		case b.Pacing != "" && b.Tone != "":
			sb.WriteString(fmt.Sprintf("   (Pacing: %s, Tone: %s)\n", b.Pacing, b.Tone))
		case b.Pacing != "":
			sb.WriteString(fmt.Sprintf("   (Pacing: %s)\n", b.Pacing))
		case b.Tone != "":
			sb.WriteString(fmt.Sprintf("   (Tone: %s)\n", b.Tone))
		}
		if len(b.Themes) > 0 {
			sb.WriteString(fmt.Sprintf("   (Themes: %s)\n", strings.Join(b.Themes, ", ")))
		}

		sb.WriteString(fmt.Sprintf("   (Subjects: %s)\n", orUnknown(b.Subjects)))
		sb.WriteString(fmt.Sprintf("   (Synopsis: %s)\n", Preview(b)))
	}
	return sb.String()
}

type Builder struct {
	copies contract.BookCopyRepository
	logger logger.ILogger
}

func NewBuilder(copies contract.BookCopyRepository, log logger.ILogger) *Builder {
	return &Builder{copies: copies, logger: log}
}

// Build looks up availability for every book and renders the block. A failed
// lookup is logged and shown as 0/0 rather than failing the turn.
func (b *Builder) Build(ctx context.Context, books []*entity.Book) string {
	if len(books) == 0 {
		return constant.EmptyContextSentinel
	}

	ids := make([]int, len(books))
	for i, book := range books {
		ids[i] = book.Id
	}

	avail, err := b.copies.Availability(ctx, ids)
	if err != nil {
		b.logger.Warn("CONTEXT", "Availability lookup failed", map[string]interface{}{
			"error":    err.Error(),
			"book_ids": ids,
		})
		avail = nil
	}
	return Render(books, avail)
}
