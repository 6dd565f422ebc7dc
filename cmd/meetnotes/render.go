package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/meetnotes/internal/analyze"
	"github.com/dgallion1/meetnotes/internal/parser"
	"github.com/dgallion1/meetnotes/internal/render"
	"github.com/dgallion1/meetnotes/internal/transcript"
)

func newRenderCmd() *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a .json, .html or .md notes document to Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			md, err := renderFile(args[0], cfg.MaxRenderDepth)
			if err != nil {
				return err
			}
			if withMetrics {
				return printJSON(cmd, map[string]any{"markdown": md, "metrics": analyze.Analyze(md)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print JSON with markdown and structural metrics")
	return cmd
}

func renderFile(path string, maxDepth int) (string, error) {
	p, err := parser.ForFile(path, maxDepth)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := p.Parse(f, path)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return render.New(maxDepth).Render(doc)
}

func newTranscriptCmd() *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "transcript <file>",
		Short: "Merge a JSON array of transcript segments into speaker turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			segments, err := transcript.Decode(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			turns := transcript.Merge(segments)
			md := transcript.Render(turns)
			if withMetrics {
				return printJSON(cmd, map[string]any{"markdown": md, "metrics": analyze.AnalyzeTranscript(turns)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print JSON with markdown and transcript metrics")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
