package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/GeneralBots/botcoder/parser"
	"github.com/GeneralBots/botcoder/patch"
)

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func newApplyCmd() *cobra.Command {
	var dryRun, showDiff bool
	cmd := &cobra.Command{
		Use:   "apply [file|-]",
		Short: "Apply the patch blocks of a saved model reply to the project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var fsys afero.Fs = afero.NewOsFs()
			if dryRun {
				fsys = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(fsys), afero.NewMemMapFs())
			}
			patcher := patch.New(fsys, cfg.ProjectPath, patch.WithLogger(logger))

			n, err := applyCalls(cmd.OutOrStdout(), patcher, parser.Parse(text), showDiff || dryRun)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no patch blocks found")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the diffs without writing files")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff for each change")
	return cmd
}

// applyCalls applies every write_file_delta call in order and reports each
// outcome. It returns the number of patches attempted and an error when any
// of them failed.
func applyCalls(out io.Writer, patcher *patch.Patcher, calls []parser.ToolCall, showDiff bool) (int, error) {
	var attempted, failed int
	for _, call := range calls {
		if call.Name != parser.ToolWriteFileDelta {
			fmt.Fprintf(out, "skipped %s\n", call)
			continue
		}
		attempted++
		spec, err := call.Spec()
		if err != nil {
			failed++
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		outcome := patcher.Apply(spec.Path, spec.Old, spec.New)
		fmt.Fprintln(out, outcome)
		if !outcome.OK() {
			failed++
		}
		if showDiff && outcome.Diff != "" {
			fmt.Fprintln(out, outcome.Diff)
		}
	}
	if failed > 0 {
		return attempted, fmt.Errorf("%d of %d patches failed", failed, attempted)
	}
	return attempted, nil
}

func newParseCmd() *cobra.Command {
	var union bool
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Print the tool calls found in a model reply as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var opts []parser.Option
			if union {
				opts = append(opts, parser.WithUnion())
			}
			calls := parser.New(opts...).Parse(parser.CleanResponse(text))
			if calls == nil {
				calls = []parser.ToolCall{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(calls)
		},
	}
	cmd.Flags().BoolVar(&union, "lenient", false, "Also collect simple calls when patch blocks are present")
	return cmd
}
