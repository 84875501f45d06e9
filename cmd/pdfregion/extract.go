package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfregion/internal/app"
	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
)

func newExtractCmd() *cobra.Command {
	var (
		page    int
		rect    string
		surface string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "extract <input.pdf>",
		Short: "Export the text inside a rectangle of a page to a spreadsheet",
		Long: `Selects the rectangle x,y,w,h on the given page, measured from the top-left
corner of a surface of size WxH (the page size in points when --surface is
omitted), and writes the text inside it as a spreadsheet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseRect(rect)
			if err != nil {
				return err
			}

			var size *coords.Size
			if surface != "" {
				parsed, err := parseSize(surface)
				if err != nil {
					return err
				}
				size = &parsed
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runExtract(ctx, cmd, args[0], page, selected, size, out)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().StringVar(&rect, "rect", "", "Selection as x,y,w,h in surface pixels")
	cmd.Flags().StringVar(&surface, "surface", "", "Surface size as WxH (default: page size)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: configured export file name)")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, path string, page int, rect selection.Rect, surface *coords.Size, out string) error {
	file, err := intake.ReadFile(path)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close(ctx)

	s := application.Session
	if n, err := s.Open(ctx, file); err != nil {
		return fail(cmd, n.Title, n.Description)
	}
	if count := s.Snapshot().PageCount; page < 1 || page > count {
		return fmt.Errorf("page %d out of range [1, %d]", page, count)
	}
	if _, err := s.GoToPage(page); err != nil {
		return err
	}

	if surface == nil {
		info, err := s.Page(ctx)
		if err != nil {
			return err
		}
		surface = &coords.Size{Width: info.Viewport.Width, Height: info.Viewport.Height}
	}

	s.PointerDown(selection.Point{X: rect.X, Y: rect.Y})
	s.PointerMove(selection.Point{X: rect.X + rect.Width, Y: rect.Y + rect.Height})
	s.PointerUp()

	export, n, err := s.Export(ctx, *surface)
	if err != nil {
		return fail(cmd, n.Title, n.Description)
	}

	if out == "" {
		out = export.FileName
	}
	if err := os.WriteFile(out, export.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows x %d columns written to %s\n",
		n.Title, len(export.Table.Rows), export.Table.Columns(), out)
	return nil
}

// parseRect parses "x,y,w,h"
func parseRect(value string) (selection.Rect, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return selection.Rect{}, fmt.Errorf("invalid rect %q: want x,y,w,h", value)
	}

	var nums [4]float64
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return selection.Rect{}, fmt.Errorf("invalid rect %q: %w", value, err)
		}
		nums[i] = n
	}
	if nums[2] < 0 || nums[3] < 0 {
		return selection.Rect{}, fmt.Errorf("invalid rect %q: negative size", value)
	}

	return selection.Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, nil
}

// parseSize parses "WxH"
func parseSize(value string) (coords.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return coords.Size{}, fmt.Errorf("invalid size %q: want WxH", value)
	}

	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return coords.Size{}, fmt.Errorf("invalid size %q: %w", value, err)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return coords.Size{}, fmt.Errorf("invalid size %q: %w", value, err)
	}

	return coords.Size{Width: width, Height: height}, nil
}
