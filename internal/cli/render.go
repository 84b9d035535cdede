package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"library-assistant-be/internal/dto"
	"library-assistant-be/pkg/events"
	"library-assistant-be/pkg/rag/stream"

	"github.com/fatih/color"
)

type printer struct {
	out   io.Writer
	title *color.Color
	dim   *color.Color
	ok    *color.Color
	warn  *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:   out,
		title: color.New(color.FgCyan, color.Bold),
		dim:   color.New(color.Faint),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgRed),
	}
}

// emit prints prose as it streams and the cards once the answer is complete.
func (p *printer) emit(e stream.Event) error {
	if e.Kind == stream.KindText {
		_, err := fmt.Fprint(p.out, e.Text)
		return err
	}
	fmt.Fprintln(p.out)
	if len(e.Books) == 0 {
		return nil
	}
	fmt.Fprintln(p.out)
	for i, card := range e.Books {
		p.card(i+1, card.Title, card.Author, card.Availability)
	}
	return nil
}

func (p *printer) card(n int, title, author, availability string) {
	fmt.Fprintf(p.out, "%2d. ", n)
	p.title.Fprint(p.out, title)
	if author != "" {
		p.dim.Fprintf(p.out, " by %s", author)
	}
	fmt.Fprint(p.out, "  ")
	if strings.HasPrefix(availability, "0/") {
		p.warn.Fprintln(p.out, availability)
	} else {
		p.ok.Fprintln(p.out, availability)
	}
}

func (p *printer) recommendations(res *dto.RecommendationsResponse) {
	if res.Personalized {
		p.dim.Fprintln(p.out, "Ranked by your reading preferences")
	} else {
		p.dim.Fprintln(p.out, "No preferences on file; showing a sample of the catalogue")
	}
	if len(res.Books) == 0 {
		fmt.Fprintln(p.out, "No books to recommend.")
		return
	}
	for i, b := range res.Books {
		p.card(i+1, b.Title, b.Author, b.Availability)
		if res.Personalized {
			p.dim.Fprintf(p.out, "    score %.0f  %s\n", b.Score, b.Genres)
		}
	}
}

func (p *printer) event(e events.Event) {
	payload := e.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p.dim.Fprint(p.out, e.Timestamp().Format("15:04:05 "))
	if truncated, _ := payload["truncated"].(bool); truncated {
		p.warn.Fprint(p.out, e.EventType())
	} else {
		p.title.Fprint(p.out, e.EventType())
	}
	for _, k := range keys {
		fmt.Fprintf(p.out, " %s=%v", k, payload[k])
	}
	fmt.Fprintln(p.out)
}
