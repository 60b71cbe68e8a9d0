package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/daybook/internal/models"
)

const dateLayout = "2006-01-02 15:04"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntryTable(w io.Writer, es []models.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tMOOD\tCATEGORY\tFAV\tTITLE")
	for _, e := range es {
		fav := ""
		if e.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Time(time.Local).Format(dateLayout), e.Mood.Label(), e.Category, fav, headline(e))
	}
	return tw.Flush()
}

// headline is the title, or the first content line for untitled entries.
func headline(e models.Entry) string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	line, _, _ := strings.Cut(strings.TrimSpace(e.Content), "\n")
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}

func printEntry(w io.Writer, e models.Entry) {
	fmt.Fprintf(w, "%s\n", headline(e))
	fmt.Fprintf(w, "  id:       %s\n", e.ID)
	fmt.Fprintf(w, "  date:     %s\n", e.Time(time.Local).Format(dateLayout))
	fmt.Fprintf(w, "  updated:  %s\n", time.UnixMilli(e.UpdatedAt).In(time.Local).Format(dateLayout))
	fmt.Fprintf(w, "  mood:     %s\n", e.Mood.Label())
	fmt.Fprintf(w, "  category: %s\n", e.Category)
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "  tags:     %s\n", strings.Join(e.Tags, ", "))
	}
	if e.IsFavorite {
		fmt.Fprintln(w, "  favorite")
	}
	if e.IsPrivate {
		fmt.Fprintln(w, "  private")
	}
	if n := len(e.Images); n > 0 {
		fmt.Fprintf(w, "  images:   %d\n", n)
	}
	if e.Audio != nil {
		fmt.Fprintln(w, "  audio:    attached")
	}
	if e.Drawing != nil {
		fmt.Fprintln(w, "  drawing:  attached")
	}
	if e.Location != nil {
		fmt.Fprintf(w, "  location: %s\n", *e.Location)
	}
	if e.Content != "" {
		fmt.Fprintf(w, "\n%s\n", e.Content)
	}
}
