package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
	"github.com/KaramelBytes/rankedinc-cli/internal/pipeline"
	"github.com/KaramelBytes/rankedinc-cli/internal/report"
	"github.com/KaramelBytes/rankedinc-cli/internal/source"
	"github.com/KaramelBytes/rankedinc-cli/internal/utils"
	"github.com/spf13/cobra"
)

// datasetFlags are the input and output flags shared by the analysis commands.
type datasetFlags struct {
	input      string
	sheetID    string
	sheetName  string
	sheetIndex int
	delimiter  string
	relaxed    bool
	format     string
	output     string
}

func (d *datasetFlags) register(c *cobra.Command, formats, defFormat string) {
	c.Flags().StringVarP(&d.input, "input", "i", "", "local .csv/.tsv/.xlsx file or http(s) CSV URL (default: Google Sheet from locator)")
	c.Flags().StringVar(&d.sheetID, "sheet-id", "", "Google Sheet ID (overrides config and .env)")
	c.Flags().StringVar(&d.sheetName, "sheet-name", "", "worksheet name (Google Sheet or XLSX)")
	c.Flags().IntVar(&d.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().StringVar(&d.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	c.Flags().BoolVar(&d.relaxed, "relaxed", false, "keep rows whose PER or margins are missing")
	c.Flags().StringVarP(&d.format, "format", "f", defFormat, "output format: "+formats)
	c.Flags().StringVarP(&d.output, "output", "o", "", "optional path to write the report")
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// load acquires and normalizes the dataset. The returned label names the
// source for report headers.
func (d *datasetFlags) load(ctx context.Context) (*pipeline.Dataset, string, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, "", err
	}
	delim, err := parseDelimiter(d.delimiter)
	if err != nil {
		return nil, "", err
	}
	in := source.Input{
		Path:       d.input,
		SheetID:    c.SheetID,
		SheetName:  c.SheetName,
		SheetIndex: d.sheetIndex,
		Delimiter:  delim,
	}
	if d.sheetID != "" {
		in.SheetID = d.sheetID
	}
	if d.sheetName != "" {
		in.SheetName = d.sheetName
	} else if strings.HasSuffix(strings.ToLower(d.input), ".xlsx") {
		in.SheetName = ""
	}
	label := in.Path
	if label == "" {
		label = "google-sheet"
		if in.SheetID != "" {
			label += ":" + in.SheetID
		}
	}

	log := logger.WithComponent("cmd")
	log.Debug("loading dataset", "source", label, "sheet", in.SheetName)
	raw, err := source.Load(ctx, in, c.Fetcher(), source.EnvLocator(c.DotenvPath))
	if err != nil {
		return nil, "", err
	}

	opt := c.NormalizeOptions()
	if d.relaxed {
		opt.Filter.RequireGuards = false
	}
	p, err := pipeline.New(c.Metrics, opt)
	if err != nil {
		return nil, "", err
	}
	ds, err := p.Load(raw)
	if err != nil {
		return nil, "", err
	}
	st := ds.Stats()
	log.Info("dataset loaded", "rows", st.Rows, "kept", st.Kept, "dropped", st.Dropped(),
		"no_sector", st.NoSector, "non_positive_per", st.NonPositivePE, "margin_range", st.MarginRange, "missing_guard", st.MissingGuard)
	return ds, label, nil
}

func (d *datasetFlags) formatter() (report.Formatter, error) {
	c, err := requireConfig()
	if err != nil {
		return report.Formatter{}, err
	}
	return report.NewFormatter(c.Locale)
}

// emit writes the rendered report to --output (atomically) or to the
// command's stdout.
func (d *datasetFlags) emit(cmd *cobra.Command, render func(w io.Writer) error) error {
	if d.output == "" {
		return render(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(d.output, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", d.output)
	return nil
}
