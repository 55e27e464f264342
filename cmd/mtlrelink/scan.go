package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/mtlrelink/internal/config"
	"github.com/philipparndt/mtlrelink/pkg/analysis"
	"github.com/philipparndt/mtlrelink/pkg/relink"
)

func newScanCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report mtllib references without modifying anything",
		Long: `Walk the configured tree and list every material library referenced by a
.obj mesh, whether it exists on disk and whether it is already the target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table|yaml)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runScan(cmd *cobra.Command, format string) error {
	if format != "table" && format != "yaml" {
		return fmt.Errorf("unknown format %q (expected table or yaml)", format)
	}

	cfg := configFrom(cmd)

	reports, err := relink.Scan(cmd.Context(), cfg.Root)
	if err != nil {
		return err
	}
	result := analysis.Analyze(reports, cfg.Target)

	out := cmd.OutOrStdout()
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode scan result: %w", err)
		}
		return enc.Close()
	}

	renderScan(out, cfg, result)
	return nil
}

func renderScan(w io.Writer, cfg *config.Config, result *analysis.ScanResult) {
	fmt.Fprintln(w, "Material Library Scan")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Root: %s\n", cfg.Root)
	fmt.Fprintf(w, "Target: %s\n\n", cfg.Target)

	fmt.Fprintf(w, "Directories: %d\n", result.Directories)
	fmt.Fprintf(w, "Mesh files: %d\n", result.MeshFiles)
	fmt.Fprintf(w, "  Linked: %d\n", result.Linked)
	fmt.Fprintf(w, "  Unlinked: %d\n", result.Unlinked)
	fmt.Fprintf(w, "  Without mtllib: %d\n", result.WithoutLibrary)
	fmt.Fprintf(w, "References: %d\n", result.References)
	fmt.Fprintf(w, "Missing materials: %d\n", len(result.Missing()))
	fmt.Fprintf(w, "Superseded materials: %d\n\n", len(result.Superseded()))

	if len(result.Materials) == 0 {
		fmt.Fprintln(w, "No material references found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Material", "Users", "Exists", "Target"})
	for _, m := range result.Materials {
		t.AppendRow(table.Row{m.Path, m.Users, yesNo(m.Exists), yesNo(m.IsTarget)})
	}
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
