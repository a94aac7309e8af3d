package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itish2003/searchdoc/formatting"
	"github.com/itish2003/searchdoc/models"
)

type renderOptions struct {
	hitsFile   string
	answerFile string
	htmlOut    string
	pdfOut     string
}

// newRenderCmd runs the formatting pipeline offline over saved search hits
// and a saved answer.
func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved answer to HTML and PDF without calling any service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := runRender(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered answer with %d citations\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.hitsFile, "hits", "", "JSON file holding an array of search hits, or a SerpAPI response")
	cmd.Flags().StringVar(&opts.answerFile, "answer", "", "text file holding the raw model answer")
	cmd.Flags().StringVar(&opts.htmlOut, "html", "answer.html", "HTML output path")
	cmd.Flags().StringVar(&opts.pdfOut, "pdf", "answer.pdf", "PDF output path")
	_ = cmd.MarkFlagRequired("hits")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func runRender(opts *renderOptions) (int, error) {
	hits, err := readHits(opts.hitsFile)
	if err != nil {
		return 0, err
	}
	answer, err := os.ReadFile(opts.answerFile)
	if err != nil {
		return 0, fmt.Errorf("failed to read answer: %w", err)
	}

	cm, _, err := formatting.BuildCitationMap(hits)
	if err != nil {
		return 0, err
	}

	html := formatting.FormatAnswerHTML(string(answer), cm)
	if err := os.WriteFile(opts.htmlOut, []byte(html), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write html: %w", err)
	}

	doc, err := formatting.RenderDocument(string(answer), cm)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(opts.pdfOut, doc, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write pdf: %w", err)
	}
	return cm.Len(), nil
}

// readHits accepts either a bare array or an object with organic_results.
func readHits(path string) ([]models.SearchHit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hits: %w", err)
	}
	var hits []models.SearchHit
	if err := json.Unmarshal(data, &hits); err == nil {
		return hits, nil
	}
	var wrapped struct {
		OrganicResults []models.SearchHit `json:"organic_results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse hits: %w", err)
	}
	return wrapped.OrganicResults, nil
}
