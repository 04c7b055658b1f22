package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"SiteFM/core/bundle"
	"SiteFM/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var listDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the tracks in a built manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("out") {
			cfg.DistDir = listDir
		}
		m, err := bundle.ReadManifest(filepath.Join(cfg.DistDir, bundle.ManifestName))
		if err != nil {
			return err
		}
		renderTracks(cmd.OutOrStdout(), m)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listDir, "out", "", "output root holding index.json (default $DIST_DIR or dist)")
	rootCmd.AddCommand(listCmd)
}

// formatDuration 渲染为 m:ss，未知时为 "-"
func formatDuration(d *float64) string {
	if d == nil {
		return "-"
	}
	secs := int(*d + 0.5)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func renderTracks(w io.Writer, m model.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Group", "Title", "Artist", "Duration", "Sources"})
	for _, tr := range m.Tracks {
		t.AppendRow(table.Row{
			tr.GroupPath,
			tr.Title,
			tr.Artist,
			formatDuration(tr.Duration),
			strings.Join(tr.MIMEs(), ", "),
		})
	}

	playable := lo.CountBy(m.Tracks, func(tr model.Track) bool { return len(tr.Sources) > 0 })
	groups := len(lo.Uniq(lo.Map(m.Tracks, func(tr model.Track, _ int) string { return tr.GroupPath })))
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d groups", groups),
		fmt.Sprintf("%d tracks", len(m.Tracks)),
		"",
		"",
		fmt.Sprintf("%d playable", playable),
	})
	t.SetCaption("generated at %s", m.GeneratedAt)
	t.Render()
}
