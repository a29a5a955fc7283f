package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rshade/econreport/internal/engine/cache"
)

const (
	fileColumnWidth   = 40
	statusColumnWidth = 8
	ageColumnWidth    = 10
	separatorWidth    = 72
	cachedAtLayout    = "2006-01-02 15:04:05"
)

// Status colors (ANSI 256).
const (
	colorHeader  = lipgloss.Color("12")
	colorFresh   = lipgloss.Color("10")
	colorExpired = lipgloss.Color("11")
	colorCorrupt = lipgloss.Color("9")
	colorMuted   = lipgloss.Color("8")
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the on-disk cache",
	}
	cmd.AddCommand(newCacheListCmd(a), newCacheClearCmd(a))
	return cmd
}

func newCacheListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List cache entries with their age and status",
		Example: `  econreport cache list --cache-dir /var/cache/econreport`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			renderCacheList(cmd.OutOrStdout(), store, entries)
			return nil
		},
	}
}

func newCacheClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [key]",
		Short: "Delete one cache entry, or every entry when no key is given",
		Example: `  econreport cache clear
  econreport cache clear economic_indicators`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				store.Clear(args[0])
				cmd.Printf("Cleared cache entry %q\n", args[0])
				return nil
			}
			n := store.ClearAll()
			cmd.Printf("Cleared %d cache entries from %s\n", n, store.Directory())
			return nil
		},
	}
}

func renderCacheList(w io.Writer, store *cache.Store, entries []cache.EntryInfo) {
	r := lipgloss.NewRenderer(w)
	headerStyle := r.NewStyle().Foreground(colorHeader).Bold(true)
	muted := r.NewStyle().Foreground(colorMuted).Italic(true)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Cache %s (freshness %s)",
		store.Directory(), cache.FormatDuration(store.Freshness()))))
	sb.WriteString("\n")

	if len(entries) == 0 {
		sb.WriteString(muted.Render("No cache entries"))
		sb.WriteString("\n")
		_, _ = io.WriteString(w, sb.String())
		return
	}

	sb.WriteString(strings.Repeat("-", separatorWidth))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-*s %-*s %-*s %s\n",
		fileColumnWidth, "File", statusColumnWidth, "Status", ageColumnWidth, "Age", "Cached at"))

	for _, e := range entries {
		age, cachedAt := "-", "-"
		if !e.CachedAt.IsZero() {
			age = cache.FormatDuration(e.Age)
			cachedAt = e.CachedAt.Format(cachedAtLayout)
		}
		status := r.NewStyle().Foreground(statusColor(e.Status)).
			Render(fmt.Sprintf("%-*s", statusColumnWidth, e.Status))
		sb.WriteString(fmt.Sprintf("%-*s %s %-*s %s\n",
			fileColumnWidth, e.File, status, ageColumnWidth, age, cachedAt))
	}

	_, _ = io.WriteString(w, sb.String())
}

func statusColor(s cache.Status) lipgloss.Color {
	switch s {
	case cache.StatusFresh:
		return colorFresh
	case cache.StatusExpired:
		return colorExpired
	case cache.StatusCorrupt:
		return colorCorrupt
	default:
		return colorMuted
	}
}
