package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tdrill/internal/bootstrap"
	mediadto "tdrill/internal/modules/media/dto"
	statsdto "tdrill/internal/modules/stats/dto"
	"tdrill/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "tdrill",
		Short:         "Threat discrimination trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", config.DefaultDataDir(), "data directory")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newMediaCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newLabelsCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	return config.New(flags.dataDir)
}

func loadApp(flags *globalFlags, tui bool) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.Options{Verbose: flags.verbose && !tui})
}

// withApp builds the application for a single command and releases it after.
func withApp(flags *globalFlags, fn func(cmd *cobra.Command, args []string, app *bootstrap.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(flags, false)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()
		return fn(cmd, args, app)
	}
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal trainer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, true)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}

// ─── media ───────────────────────────────────────────────────────────────────

func newMediaCmd(flags *globalFlags) *cobra.Command {
	media := &cobra.Command{Use: "media", Short: "Manage the media catalog"}

	var kind, class, source, excluded, query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List built-in and imported media",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			var excludedFilter *bool
			if excluded != "" {
				v, err := strconv.ParseBool(excluded)
				if err != nil {
					return fmt.Errorf("--excluded must be true or false: %w", err)
				}
				excludedFilter = &v
			}
			out, err := app.MediaCLI.List(cmd.Context(), kind, class, source, excludedFilter, query)
			if err != nil {
				return err
			}
			printGallery(cmd.OutOrStdout(), out)
			return nil
		}),
	}
	list.Flags().StringVar(&kind, "kind", "", "VIDEO|PHOTO")
	list.Flags().StringVar(&class, "class", "", "THREAT|NON_THREAT (effective)")
	list.Flags().StringVar(&source, "source", "", "builtin|user")
	list.Flags().StringVar(&excluded, "excluded", "", "true|false")
	list.Flags().StringVar(&query, "query", "", "substring of name or location")

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Rescan the media root and rewrite the manifest",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			out, err := app.MediaCLI.Scan(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "scanned %d videos, %d photos -> %s\n", out.Videos, out.Photos, out.ManifestPath)
			return nil
		}),
	}

	var importKind, importClass string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a local video or photo",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			if strings.TrimSpace(importClass) == "" {
				return fmt.Errorf("--class is required")
			}
			out, err := app.MediaCLI.Import(cmd.Context(), args[0], importKind, importClass)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s as %s (%s %s)\n", out.Name, out.Location, out.Kind, out.Class)
			return nil
		}),
	}
	importCmd.Flags().StringVar(&importKind, "kind", "", "VIDEO|PHOTO (guessed from the extension when empty)")
	importCmd.Flags().StringVar(&importClass, "class", "", "THREAT|NON_THREAT")

	remove := &cobra.Command{
		Use:   "remove <location>",
		Short: "Delete imported media",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			if err := app.MediaCLI.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		}),
	}

	exclude := newExcludeCmd(flags, "exclude", true)
	include := newExcludeCmd(flags, "include", false)

	classify := &cobra.Command{
		Use:   "classify <location>... <THREAT|NON_THREAT|none>",
		Short: "Override the classification of media",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			class := args[len(args)-1]
			out, err := app.MediaCLI.Classify(cmd.Context(), class, args[:len(args)-1]...)
			if err != nil {
				return err
			}
			for _, e := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Location, e.Class)
			}
			return nil
		}),
	}

	reset := &cobra.Command{
		Use:   "reset <location>...",
		Short: "Drop exclusion and classification overrides",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			if err := app.MediaCLI.Reset(cmd.Context(), args...); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %d item(s)\n", len(args))
			return nil
		}),
	}

	open := &cobra.Command{
		Use:   "open <location>",
		Short: "Open media in the system viewer",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			target, err := app.MediaCLI.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "opened %s\n", target)
			return nil
		}),
	}

	media.AddCommand(list, scan, importCmd, remove, exclude, include, classify, reset, open)
	return media
}

func newExcludeCmd(flags *globalFlags, use string, excluded bool) *cobra.Command {
	short := "Exclude media from training"
	if !excluded {
		short = "Include previously excluded media"
	}
	return &cobra.Command{
		Use:   use + " <location>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			out, err := app.MediaCLI.SetExcluded(cmd.Context(), excluded, args...)
			if err != nil {
				return err
			}
			for _, e := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\texcluded=%t\n", e.Location, e.Excluded)
			}
			return nil
		}),
	}
}

func printGallery(w io.Writer, out mediadto.GalleryOutput) {
	if len(out.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "no media")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LOCATION\tKIND\tCLASS\tSOURCE\tEXCLUDED")
	for _, e := range out.Entries {
		class := e.Class
		if e.Class != e.OriginalClass {
			class += "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", e.Location, e.Kind, class, e.Source, e.Excluded)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "%d items (%d videos, %d photos, %d excluded, %d imported)\n",
		out.Total, out.Videos, out.Photos, out.Excluded, out.User)
}

// ─── stats ───────────────────────────────────────────────────────────────────

func newStatsCmd(flags *globalFlags) *cobra.Command {
	stats := &cobra.Command{Use: "stats", Short: "Session history"}

	var limit int
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			sessions, err := app.StatsCLI.List(cmd.Context(), limit, all)
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		}),
	}
	list.Flags().IntVar(&limit, "limit", 10, "number of sessions")
	list.Flags().BoolVar(&all, "all", false, "list every session")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate statistics",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			s, err := app.StatsCLI.Summary(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "sessions:     %d\n", s.Sessions)
			_, _ = fmt.Fprintf(w, "responses:    %d (%d correct)\n", s.TotalResponses, s.CorrectResponses)
			_, _ = fmt.Fprintf(w, "accuracy:     %.1f%%\n", s.Score*100)
			_, _ = fmt.Fprintf(w, "best:         %.1f%%\n", s.BestScore*100)
			_, _ = fmt.Fprintf(w, "avg reaction: %s\n", formatReaction(s.AverageReactionMs))
			if !s.LastPlayed.IsZero() {
				_, _ = fmt.Fprintf(w, "last played:  %s\n", s.LastPlayed.Local().Format(time.DateTime))
			}
			return nil
		}),
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all session history",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			n, err := app.StatsCLI.Clear(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared %d sessions\n", n)
			return nil
		}),
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	stats.AddCommand(list, summary, clearCmd)
	return stats
}

func printSessions(w io.Writer, sessions []statsdto.SessionOutput) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "no sessions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tWHEN\tCORRECT\tSCORE\tAVG REACTION")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%.0f%%\t%s\n",
			s.ID, s.Timestamp.Local().Format(time.DateTime),
			s.CorrectResponses, s.TotalResponses, s.Score*100, formatReaction(s.AverageReactionMs))
	}
	_ = tw.Flush()
}

func formatReaction(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%d ms", *ms)
}

// ─── labels ──────────────────────────────────────────────────────────────────

func newLabelsCmd(flags *globalFlags) *cobra.Command {
	labels := &cobra.Command{Use: "labels", Short: "Threat label presets"}

	labels.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active labels",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			prefs, err := app.PrefsCLI.Show(cmd.Context())
			if err != nil {
				return err
			}
			l := prefs.Labels
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "preset: %s\nthreat: %s\nnon-threat: %s\n", l.Preset, l.Threat, l.NonThreat)
			return nil
		}),
	})

	var threat, nonThreat string
	set := &cobra.Command{
		Use:   "set <THREAT_NON_THREAT|SHOOT_NO_SHOOT|CUSTOM>",
		Short: "Choose a label preset",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
			l, err := app.PrefsCLI.SetLabels(cmd.Context(), args[0], threat, nonThreat)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "labels: %s / %s (%s)\n", l.Threat, l.NonThreat, l.Preset)
			return nil
		}),
	}
	set.Flags().StringVar(&threat, "threat", "", "custom threat label")
	set.Flags().StringVar(&nonThreat, "non-threat", "", "custom non-threat label")
	labels.AddCommand(set)
	return labels
}

// ─── config ──────────────────────────────────────────────────────────────────

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration and session defaults"}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration and preferences",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			prefs, err := app.PrefsCLI.Show(cmd.Context())
			if err != nil {
				return err
			}
			doc := struct {
				DataDir string        `yaml:"data_dir"`
				Config  config.Config `yaml:",inline"`
				Session struct {
					IncludeVideos   bool `yaml:"include_videos"`
					IncludePhotos   bool `yaml:"include_photos"`
					DurationMinutes int  `yaml:"duration_minutes"`
				} `yaml:"session_defaults"`
				Labels string `yaml:"labels"`
			}{DataDir: app.Config.DataDir, Config: app.Config}
			doc.Session.IncludeVideos = prefs.Session.IncludeVideos
			doc.Session.IncludePhotos = prefs.Session.IncludePhotos
			doc.Session.DurationMinutes = prefs.Session.DurationMinutes
			doc.Labels = prefs.Labels.Threat + " / " + prefs.Labels.NonThreat

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		}),
	})

	var videos, photos bool
	var minutes int
	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Set the session defaults used by the setup form",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
			current, err := app.PrefsCLI.Show(cmd.Context())
			if err != nil {
				return err
			}
			s := current.Session
			if cmd.Flags().Changed("videos") {
				s.IncludeVideos = videos
			}
			if cmd.Flags().Changed("photos") {
				s.IncludePhotos = photos
			}
			if cmd.Flags().Changed("minutes") {
				s.DurationMinutes = minutes
			}
			out, err := app.PrefsCLI.SetSessionDefaults(cmd.Context(), s.IncludeVideos, s.IncludePhotos, s.DurationMinutes)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "videos=%t photos=%t minutes=%d\n", out.IncludeVideos, out.IncludePhotos, out.DurationMinutes)
			return nil
		}),
	}
	defaults.Flags().BoolVar(&videos, "videos", true, "include videos")
	defaults.Flags().BoolVar(&photos, "photos", true, "include photos")
	defaults.Flags().IntVar(&minutes, "minutes", 1, "session length (1-30)")
	cfgCmd.AddCommand(defaults)
	return cfgCmd
}
