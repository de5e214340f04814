package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/reanchor/internal/docmodel/pdfcpux"
	"github.com/jackzampolin/reanchor/internal/report"
	"github.com/jackzampolin/reanchor/internal/transfer"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <old_pdf> <new_pdf> <output_pdf> [fuzzy_ratio] [base_allowance]",
	Short: "Transfer annotations from an old PDF revision to a new one",
	Long: `Transfer relocates the text markup annotations (highlights, underlines,
squiggly marks) and their reply notes from old_pdf to new_pdf, writing the
result to output_pdf. Neither input file is modified.

The optional fuzzy_ratio (default 0.3) and base_allowance (default 5)
control how much the annotated text may have changed and still be matched:
the allowed edit distance is len(text)*ratio + allowance.

Examples:
  reanchor transfer v1.pdf v2.pdf v2_annotated.pdf
  reanchor transfer v1.pdf v2.pdf v2_annotated.pdf 0.4 5`,
	Args: cobra.RangeArgs(3, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPath, newPath, outPath := args[0], args[1], args[2]

		cfg := cfgManager.Get()
		ratio := cfg.FuzzyRatio
		allowance := cfg.BaseAllowance

		// Invalid optional arguments warn and fall back to the defaults.
		if len(args) >= 4 {
			if v, err := strconv.ParseFloat(args[3], 64); err == nil {
				ratio = v
			} else {
				fmt.Printf("Warning: Invalid fuzzy ratio '%s'. Using default %v.\n", args[3], ratio)
			}
		}
		if len(args) == 5 {
			if v, err := strconv.Atoi(args[4]); err == nil {
				allowance = v
			} else {
				fmt.Printf("Warning: Invalid base allowance '%s'. Using default %d.\n", args[4], allowance)
			}
		}

		for _, p := range []string{oldPath, newPath} {
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("file not found at %s", p)
			}
		}

		fmt.Println("reanchor — transfer PDF annotations")
		fmt.Printf("Opening old PDF: %s\n", oldPath)
		fmt.Printf("Opening new PDF: %s\n", newPath)

		return runTransfer(cmd.Context(), oldPath, newPath, outPath, ratio, allowance)
	},
}

func runTransfer(ctx context.Context, oldPath, newPath, outPath string, ratio float64, allowance int) error {
	cfg := cfgManager.Get()
	logger := slog.Default()

	src, err := pdfcpux.Open(oldPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := pdfcpux.Open(newPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	// Preserve the new revision's table of contents across the transfer.
	outline, hasOutline := dst.Outline()

	printer := report.NewPrinter(os.Stdout, cfg.Color)
	session := transfer.NewSession(transfer.SessionConfig{
		LocalWindow:          cfg.LocalWindow,
		MaxPageDistance:      cfg.MaxPageDistance,
		MaxFuzzyPageDistance: cfg.MaxFuzzyPageDistance,
		FuzzyRatio:           ratio,
		BaseAllowance:        allowance,
		Logger:               logger,
		Printer:              printer,
	})

	counts, failures, err := session.Run(ctx, src, dst)
	if err != nil {
		return err
	}

	if hasOutline {
		if err := dst.SetOutline(outline); err != nil {
			return err
		}
	}

	// All-or-nothing: nothing has been written until this point, and an
	// interrupt must leave it that way.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := dst.Save(outPath); err != nil {
		return err
	}

	printer.Summary(counts, failures, outPath)
	return nil
}
