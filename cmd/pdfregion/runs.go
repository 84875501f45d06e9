package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfregion/pkg/pdf"
)

func newRunsCmd() *cobra.Command {
	var (
		page   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs <input.pdf>",
		Short: "Print the text runs of a page with their anchors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runRuns(ctx, cmd, args[0], page, asJSON)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

type runView struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Font     string  `json:"font,omitempty"`
	FontSize float64 `json:"fontSize"`
}

func runRuns(ctx context.Context, cmd *cobra.Command, path string, pageNumber int, asJSON bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	loader := pdf.NewLoader(pdf.WithLogger(logger), pdf.WithTextRunOptions(cfg.TextRunOptions()...))
	doc, err := loader.LoadDocument(ctx, src)
	if err != nil {
		return err
	}
	defer doc.Close()

	page, err := doc.Page(ctx, pageNumber)
	if err != nil {
		return err
	}
	viewport, err := page.Viewport(ctx)
	if err != nil {
		return err
	}
	runs, err := page.TextRuns(ctx)
	if err != nil {
		return err
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		x, y := run.Anchor()
		views = append(views, runView{Text: run.Text, X: x, Y: y, Font: run.Font, FontSize: run.FontSize})
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	fmt.Fprintf(w, "Page %d of %d (%.2f x %.2f)\n", page.Number(), doc.PageCount(), viewport.Width, viewport.Height)
	for _, v := range views {
		fmt.Fprintf(w, "  %-30q at (%.2f, %.2f) size=%.2f\n", v.Text, v.X, v.Y, v.FontSize)
	}
	return nil
}
