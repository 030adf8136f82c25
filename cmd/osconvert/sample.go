package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/miriam/othersupport-converter/internal/convert"
	"github.com/miriam/othersupport-converter/internal/fetch"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Download and convert the NIH sample document",
	Long:  `Download the sample Other Support document published by NIH and convert it, leaving both the .docx and the resulting XML in the output directory.`,
	RunE:  runSample,
}

var (
	sampleOutDir string
	sampleURL    string
)

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutDir, "out", "o", ".", "Directory to write the sample document and XML to")
	sampleCmd.Flags().StringVar(&sampleURL, "url", fetch.SampleURL, "Sample document URL")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(sampleOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	docPath, err := downloadSample(cmd.Context(), sampleURL, sampleOutDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", sampleURL, docPath)

	result, err := convert.Convert(cmd.Context(), docPath, &convert.Options{})
	if err != nil {
		return err
	}
	xmlPath, err := writeResultFile(result, sampleOutDir, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", docPath, xmlPath)
	return nil
}

// downloadSample fetches the document and writes it under outDir using the
// URL's base name.
func downloadSample(ctx context.Context, rawURL, outDir string) (string, error) {
	data, err := fetch.Document(ctx, rawURL, nil)
	if err != nil {
		return "", err
	}

	docPath := filepath.Join(outDir, sampleFilename(rawURL))
	if err := os.WriteFile(docPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sample document: %w", err)
	}
	return docPath, nil
}

// sampleFilename derives a local file name from the sample URL.
func sampleFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err == nil {
		if base := path.Base(parsed.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	return "other-support-sample.docx"
}
