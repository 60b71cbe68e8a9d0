package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/services"
)

func (a *App) newListCmd() *cobra.Command {
	var (
		f      services.Filter
		mood   string
		cat    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List entries, newest first",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Mood = models.Mood(mood)
			f.Category = models.Category(cat)
			es, err := a.entries.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, es)
			}
			if len(es) == 0 {
				fmt.Fprintln(out, "No entries yet. Use 'daybook add' to write one.")
				return nil
			}
			return printEntryTable(out, es)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.FavoritesOnly, "favorites", false, "only favorite entries")
	fl.StringVar(&cat, "category", "", "filter by category")
	fl.StringVar(&mood, "mood", "", "filter by mood")
	fl.StringVar(&f.Tag, "tag", "", "filter by tag")
	fl.StringVarP(&f.Query, "query", "q", "", "search title, content and tags")
	fl.BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func (a *App) newShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "show <id>",
		Short:       "Show one entry",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entries.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entry as JSON")
	return cmd
}

// entryFlags are shared by add and edit.
type entryFlags struct {
	title, content string
	mood, category string
	tags           []string
	favorite, priv bool
	images         []string
	audio, drawing string
	location       string
}

func (ef *entryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&ef.title, "title", "t", "", "entry title")
	fl.StringVarP(&ef.content, "content", "m", "", `entry text ("-" reads stdin)`)
	fl.StringVar(&ef.mood, "mood", "", "awful|bad|okay|good|great")
	fl.StringVar(&ef.category, "category", "", "personal|work|travel|health|family|other")
	fl.StringArrayVar(&ef.tags, "tag", nil, "tag; can be repeated")
	fl.BoolVar(&ef.favorite, "favorite", false, "mark as favorite")
	fl.BoolVar(&ef.priv, "private", false, "mark as private")
	fl.StringArrayVar(&ef.images, "image", nil, "attach an image file; can be repeated")
	fl.StringVar(&ef.audio, "audio", "", "attach an audio file")
	fl.StringVar(&ef.drawing, "drawing", "", "attach a drawing image file")
	fl.StringVar(&ef.location, "location", "", "free-text location")
}

func (a *App) readContent(cmd *cobra.Command, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(a.input(cmd))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func optionalMedia(path string) (*string, error) {
	if path == "" {
		return nil, nil
	}
	u, err := dataURL(path)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *App) newAddCmd() *cobra.Command {
	var ef entryFlags
	cmd := &cobra.Command{
		Use:         "add",
		Short:       "Write a new entry dated now",
		Args:        cobra.NoArgs,
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.readContent(cmd, ef.content)
			if err != nil {
				return err
			}
			d := services.Draft{
				Title:      ef.title,
				Content:    content,
				Mood:       models.Mood(ef.mood),
				Category:   models.Category(ef.category),
				Tags:       ef.tags,
				IsFavorite: ef.favorite,
				IsPrivate:  ef.priv,
			}
			if d.Images, err = dataURLs(ef.images); err != nil {
				return err
			}
			if d.Audio, err = optionalMedia(ef.audio); err != nil {
				return err
			}
			if d.Drawing, err = optionalMedia(ef.drawing); err != nil {
				return err
			}
			if ef.location != "" {
				d.Location = &ef.location
			}

			e, err := a.entries.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
	ef.register(cmd)
	return cmd
}

func (a *App) newEditCmd() *cobra.Command {
	var (
		ef         entryFlags
		addTags    []string
		removeTags []string
		clearMedia bool
	)
	cmd := &cobra.Command{
		Use:         "edit <id>",
		Short:       "Change an entry; only the given flags are applied",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.entries.Get(ctx, args[0])
			if err != nil {
				return err
			}

			fl := cmd.Flags()
			if fl.Changed("title") {
				e.Title = ef.title
			}
			if fl.Changed("content") {
				if e.Content, err = a.readContent(cmd, ef.content); err != nil {
					return err
				}
			}
			if fl.Changed("mood") {
				e.Mood = models.Mood(ef.mood)
			}
			if fl.Changed("category") {
				e.Category = models.Category(ef.category)
			}
			if fl.Changed("tag") {
				e.Tags = ef.tags
			}
			for _, t := range addTags {
				e.AddTag(t)
			}
			for _, t := range removeTags {
				e.RemoveTag(t)
			}
			if fl.Changed("favorite") {
				e.IsFavorite = ef.favorite
			}
			if fl.Changed("private") {
				e.IsPrivate = ef.priv
			}
			if clearMedia {
				e.Images, e.Audio, e.Drawing = nil, nil, nil
			}
			if fl.Changed("image") {
				imgs, err := dataURLs(ef.images)
				if err != nil {
					return err
				}
				e.Images = append(e.Images, imgs...)
			}
			if fl.Changed("audio") {
				if e.Audio, err = optionalMedia(ef.audio); err != nil {
					return err
				}
			}
			if fl.Changed("drawing") {
				if e.Drawing, err = optionalMedia(ef.drawing); err != nil {
					return err
				}
			}
			if fl.Changed("location") {
				e.Location = nil
				if ef.location != "" {
					e.Location = &ef.location
				}
			}

			if _, err := a.entries.Update(ctx, e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated", e.ID)
			return nil
		},
	}
	ef.register(cmd)
	fl := cmd.Flags()
	fl.StringArrayVar(&addTags, "add-tag", nil, "add a tag; can be repeated")
	fl.StringArrayVar(&removeTags, "remove-tag", nil, "remove a tag; can be repeated")
	fl.BoolVar(&clearMedia, "clear-media", false, "drop attached images, audio and drawing first")
	return cmd
}

func (a *App) newFavCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "fav <id>",
		Short:       "Toggle the favorite mark of an entry",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entries.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "unmarked"
			if e.IsFavorite {
				state = "marked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s as favorite\n", state, e.ID)
			return nil
		},
	}
}

func (a *App) newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "rm <id>...",
		Short:       "Delete entries permanently",
		Args:        cobra.MinimumNArgs(1),
		Annotations: gated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := a.entries.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", len(args))
			return nil
		},
	}
}
