package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/romangod6/mastodon-sitemap/config"
	"github.com/romangod6/mastodon-sitemap/internal/models"
	"github.com/romangod6/mastodon-sitemap/internal/sitemap"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [path-or-url]",
		Short: "Print statistics about a sitemap file or URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultSitemapPath()
			if len(args) == 1 {
				target = args[0]
			}

			doc, err := loadSitemap(cmd.Context(), target)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), target, sitemap.Summarize(doc))
			return nil
		},
	}
}

// defaultSitemapPath reads only OUTPUT_DIRECTORY so inspect works without
// instance credentials.
func defaultSitemapPath() string {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	return filepath.Join(config.Optional(v, "OUTPUT_DIRECTORY", ""), "sitemap.xml")
}

func loadSitemap(ctx context.Context, target string) (*models.Sitemap, error) {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		f, err := os.Open(target)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return sitemap.Parse(f)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", target, resp.StatusCode)
	}
	return sitemap.Parse(resp.Body)
}

func printSummary(w io.Writer, target string, s sitemap.Summary) {
	fmt.Fprintf(w, "Sitemap: %s\n", target)
	fmt.Fprintf(w, "Total URLs found: %d\n", s.Total)

	freqs := make([]string, 0, len(s.ByChangeFreq))
	for f := range s.ByChangeFreq {
		freqs = append(freqs, f)
	}
	sort.Strings(freqs)
	for _, f := range freqs {
		name := f
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "  %-8s %d\n", name, s.ByChangeFreq[f])
	}

	if s.Newest != "" {
		fmt.Fprintf(w, "Oldest lastmod: %s\n", s.Oldest)
		fmt.Fprintf(w, "Newest lastmod: %s\n", s.Newest)
	}
}
