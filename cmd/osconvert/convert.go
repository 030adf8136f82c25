package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/miriam/othersupport-converter/internal/convert"
	"github.com/miriam/othersupport-converter/internal/fetch"
	"github.com/miriam/othersupport-converter/internal/observability"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <file-or-url>...",
	Short: "Convert Other Support documents to SciENcv XML",
	Long: `Convert one or more Other Support documents to SciENcv XML files named after the investigator.

Each input is a path to a .docx file or an http(s) URL to fetch one from. Inputs convert independently; a failing input is reported and does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var (
	convertOutDir   string
	convertStdout   bool
	convertJSON     bool
	convertCompact  bool
	convertVerbose  bool
	convertParallel int
	convertTimeout  int
)

func init() {
	convertCmd.Flags().StringVarP(&convertOutDir, "out", "o", ".", "Directory to write output files to")
	convertCmd.Flags().BoolVar(&convertStdout, "stdout", false, "Write the result to stdout instead of a file (single input only)")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "Emit the extracted profile as JSON instead of XML")
	convertCmd.Flags().BoolVar(&convertCompact, "compact", false, "Emit compact XML without indentation")
	convertCmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "Print a summary of each extracted profile to stderr")
	convertCmd.Flags().IntVar(&convertParallel, "parallel", 4, "Maximum number of inputs converted concurrently")
	convertCmd.Flags().IntVar(&convertTimeout, "timeout", 30, "Timeout in seconds for fetching remote documents")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertStdout && len(args) > 1 {
		return fmt.Errorf("--stdout supports a single input, got %d", len(args))
	}
	if convertParallel < 1 {
		return fmt.Errorf("--parallel must be at least 1")
	}
	if convertTimeout < 1 {
		return fmt.Errorf("--timeout must be at least 1 second")
	}

	opts := conversionOptions()
	printer := observability.NewPrinter(cmd.ErrOrStderr())

	if convertStdout {
		result, err := convert.Convert(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		if err := writeResult(cmd.OutOrStdout(), result, convertJSON); err != nil {
			return err
		}
		printSummary(printer, result)
		return nil
	}

	if err := os.MkdirAll(convertOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(convertParallel)

	var mu sync.Mutex
	failures := 0

	for _, input := range args {
		g.Go(func() error {
			result, err := convert.Convert(ctx, input, opts)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				var path string
				if path, err = writeResultFile(result, convertOutDir, convertJSON); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", input, path)
					printSummary(printer, result)
					return nil
				}
			}

			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", input, err)
			return nil
		})
	}

	// Conversion errors are reported per input above, never through the group.
	_ = g.Wait()

	if failures > 0 {
		return fmt.Errorf("%d of %d inputs failed", failures, len(args))
	}
	return nil
}

// printSummary prints the verbose profile boxes when --verbose is set.
func printSummary(printer *observability.Printer, result *convert.Result) {
	if !convertVerbose {
		return
	}
	printer.PrintProfile(result.Profile)
	printer.PrintCleaningNotes(result.Profile.CleaningNotes)
}

// conversionOptions builds conversion options from the convert flags.
func conversionOptions() *convert.Options {
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = time.Duration(convertTimeout) * time.Second
	return &convert.Options{
		Fetch:   fetchOpts,
		Compact: convertCompact,
	}
}

// writeResultFile writes the result under outDir using the generated
// filename, returning the written path.
func writeResultFile(result *convert.Result, outDir string, asJSON bool) (string, error) {
	name := result.Filename
	if asJSON {
		name = strings.TrimSuffix(name, ".xml") + ".json"
	}

	path := filepath.Join(outDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := writeResult(file, result, asJSON); err != nil {
		return "", err
	}
	return path, nil
}

// writeResult writes the XML, or the profile as indented JSON when asJSON is
// set, with a trailing newline.
func writeResult(w io.Writer, result *convert.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Profile); err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		return nil
	}

	xml := result.XML
	if !strings.HasSuffix(xml, "\n") {
		xml += "\n"
	}
	if _, err := io.WriteString(w, xml); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
