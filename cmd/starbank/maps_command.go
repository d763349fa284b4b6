package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"starbank/internal/config"
	"starbank/internal/mapinfo"
	"starbank/internal/textutil"
)

func newMapsCommand(ctx *commandContext) *cobra.Command {
	mapsCmd := &cobra.Command{
		Use:   "maps",
		Short: "Inspect maps in the Battle.net cache",
	}

	mapsCmd.AddCommand(newMapsListCommand(ctx))
	mapsCmd.AddCommand(newMapsExtractCommand(ctx))
	mapsCmd.AddCommand(newMapsBanksCommand(ctx))

	return mapsCmd
}

type scanFlags struct {
	root string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "Cache root to scan instead of paths.cache_root")
}

type scanRun struct {
	cfg     *config.Config
	builder *mapinfo.Builder
	result  *mapinfo.ScanResult
}

func runScan(cmd *cobra.Command, ctx *commandContext, flags scanFlags) (*scanRun, error) {
	builder, cfg, err := ctx.newBuilder()
	if err != nil {
		return nil, err
	}
	root := cfg.Paths.CacheRoot
	if override := strings.TrimSpace(flags.root); override != "" {
		root, err = config.ExpandPath(override)
		if err != nil {
			return nil, fmt.Errorf("resolve cache root: %w", err)
		}
	}
	result, err := builder.Build(cmd.Context(), root)
	if err != nil {
		return nil, fmt.Errorf("scan map cache: %w", err)
	}
	return &scanRun{cfg: cfg, builder: builder, result: result}, nil
}

func newMapsListCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest cached copy of every map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScan(cmd, ctx, flags)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, run.result)
			}

			out := cmd.OutOrStdout()
			if len(run.result.Entries) == 0 {
				fmt.Fprintf(out, "No maps found under %s\n", run.result.Root)
			} else {
				fmt.Fprintln(out, renderMapTable(run.result.Entries))
			}
			fmt.Fprintln(out, renderScanSummary(run.result))
			printMalformed(cmd, run.result.Malformed)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the scan result as JSON")
	return cmd
}

func newMapsExtractCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	var dest string

	cmd := &cobra.Command{
		Use:   "extract <number|name@author>",
		Short: "Write a map's script to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScan(cmd, ctx, flags)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(run.result.Entries, args[0])
			if err != nil {
				return err
			}
			target, err := extractDestination(run.cfg, entry, dest)
			if err != nil {
				return err
			}
			if err := run.builder.ExtractScriptAsset(cmd.Context(), entry, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s to %s\n", entry.Key(), target)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination file or directory (default paths.extract_dir)")
	return cmd
}

func newMapsBanksCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "banks <number|name@author>",
		Short: "Show the banks a map reads and writes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := runScan(cmd, ctx, flags)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(run.result.Entries, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, newMapBanksJSON(entry))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s by %s\n", entry.Name, authorLabel(entry))
			fmt.Fprintf(out, "Archive:   %s\n", entry.CachePath)
			fmt.Fprintf(out, "Protected: %s\n", protectionLabel(entry.IsProtected))
			if len(entry.Banks) == 0 {
				fmt.Fprintln(out, "No banks referenced by this map")
				return nil
			}
			writeLines(out, renderSectionHeader("Banks", shouldColorize(out)))
			fmt.Fprintln(out, renderBankTable(entry.Banks))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the bank list as JSON")
	return cmd
}

func printMalformed(cmd *cobra.Command, report mapinfo.MalformedReport) {
	lines := renderMalformedReport(report, shouldColorize(cmd.OutOrStdout()))
	if len(lines) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	writeLines(out, lines)
}

// resolveEntry finds a map by its 1-based list number, its exact
// name@author key, or a case-insensitive name when that is unambiguous.
func resolveEntry(entries []mapinfo.MapEntry, ref string) (mapinfo.MapEntry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return mapinfo.MapEntry{}, errors.New("map reference required")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(entries) {
			return mapinfo.MapEntry{}, fmt.Errorf("map number %d out of range (1-%d)", n, len(entries))
		}
		return entries[n-1], nil
	}
	for _, entry := range entries {
		if entry.Key() == ref {
			return entry, nil
		}
	}
	var matches []mapinfo.MapEntry
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, ref) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return mapinfo.MapEntry{}, fmt.Errorf("no cached map matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		keys := make([]string, 0, len(matches))
		for _, entry := range matches {
			keys = append(keys, entry.Key())
		}
		return mapinfo.MapEntry{}, fmt.Errorf("%q matches several maps; use one of: %s", ref, strings.Join(keys, ", "))
	}
}

func extractDestination(cfg *config.Config, entry mapinfo.MapEntry, dest string) (string, error) {
	fileName := textutil.ScriptFileName(entry.Name, entry.AuthorName)
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return filepath.Join(cfg.Paths.ExtractDir, fileName), nil
	}
	expanded, err := config.ExpandPath(dest)
	if err != nil {
		return "", fmt.Errorf("resolve destination: %w", err)
	}
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return filepath.Join(expanded, fileName), nil
	}
	return expanded, nil
}
