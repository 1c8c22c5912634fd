package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/csrlens/internal/api"
	"github.com/ppiankov/csrlens/internal/chart"
	"github.com/ppiankov/csrlens/internal/dashboard"
	"github.com/ppiankov/csrlens/internal/export"
	"github.com/ppiankov/csrlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchItem is one "company,year" line of a batch file
type batchItem struct {
	Company string `csv:"company"`
	Year    int    `csv:"year"`
}

type batchResult struct {
	Item    batchItem
	CSVPath string
	PNGPath string
	Points  int
	Err     error
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Search many company/year pairs in parallel",
	Long: `Read "company,year" lines from a file and search them concurrently.
For every line a CSV of the data points and a PNG bar chart are written
to the output directory. Lines starting with '#' are ignored.

Example:
  csrlens batch pairs.csv
  csrlens batch pairs.csv --concurrency 8 --output-dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default: output.dir)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	items, err := parseBatch(f)
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	dir := outputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "batch: create output directory")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	zap.L().Info("batch: starting", zap.Int("items", len(items)), zap.Int("workers", workers), zap.String("output", dir))

	client := newClient()
	size := chartSize()
	results := worker.Map(ctx, workers, items, func(ctx context.Context, it batchItem) batchResult {
		return processBatchItem(ctx, client, dir, size, it)
	})

	out := cmd.OutOrStdout()
	failures := 0
	for i, r := range results {
		if r.Item.Company == "" {
			// skipped after cancellation
			r = batchResult{Item: items[i], Err: ctx.Err()}
		}
		if r.Err != nil {
			failures++
			fmt.Fprintf(out, "%s %s %d: %v\n", styles.Error.Render("✗"), r.Item.Company, r.Item.Year, r.Err)
			continue
		}
		line := fmt.Sprintf("%s %s %d: %d points -> %s", styles.Accent.Render("✓"), r.Item.Company, r.Item.Year, r.Points, r.CSVPath)
		if r.PNGPath != "" {
			line += ", " + r.PNGPath
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\n%d succeeded, %d failed\n", len(items)-failures, failures)

	if failures == len(items) && len(items) > 0 {
		return eris.New("batch: every item failed")
	}
	return nil
}

// batchRows feeds pre-read records to csvutil
type batchRows struct {
	rows [][]string
}

func (b *batchRows) Read() ([]string, error) {
	if len(b.rows) == 0 {
		return nil, io.EOF
	}
	row := b.rows[0]
	b.rows = b.rows[1:]
	return row, nil
}

// parseBatch reads "company,year" records; the header line is optional.
// Errors name the line in the input file.
func parseBatch(r io.Reader) ([]batchItem, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows [][]string
	var lines []int
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read input")
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "company") {
				continue
			}
		}
		rows = append(rows, row)
		lines = append(lines, line)
	}
	if len(rows) == 0 {
		return nil, eris.New("batch: input is empty")
	}

	dec, err := csvutil.NewDecoder(&batchRows{rows: rows}, "company", "year")
	if err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}

	items := make([]batchItem, 0, len(rows))
	for i := 0; ; i++ {
		var it batchItem
		if err := dec.Decode(&it); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "batch: line %d", lines[i])
		}
		it.Company = strings.TrimSpace(it.Company)
		if it.Company == "" || it.Year <= 0 {
			return nil, eris.Errorf("batch: line %d: need company and year", lines[i])
		}
		items = append(items, it)
	}
	return items, nil
}

func processBatchItem(ctx context.Context, client api.Client, dir string, size chart.Size, it batchItem) batchResult {
	res := batchResult{Item: it}

	points, err := client.SearchData(ctx, api.DataQuery{Security: it.Company, Year: it.Year})
	if err != nil {
		res.Err = err
		return res
	}
	points = dashboard.FilterDataPoints(points, it.Company)
	res.Points = len(points)

	base := strings.TrimSuffix(export.Filename(it.Company, it.Year), ".csv")

	data, err := export.EncodeDataPoints(points)
	if err != nil {
		res.Err = err
		return res
	}
	res.CSVPath = filepath.Join(dir, base+".csv")
	if err := os.WriteFile(res.CSVPath, data, 0o644); err != nil {
		res.Err = eris.Wrapf(err, "batch: write %s", res.CSVPath)
		return res
	}

	bars, _ := dashboard.Partition(points)
	if len(bars) == 0 {
		return res
	}
	png, err := chart.IndicatorBars(fmt.Sprintf("%s %d", it.Company, it.Year), bars, size)
	if err != nil {
		res.Err = err
		return res
	}
	res.PNGPath = filepath.Join(dir, base+".png")
	if err := os.WriteFile(res.PNGPath, png, 0o644); err != nil {
		res.Err = eris.Wrapf(err, "batch: write %s", res.PNGPath)
	}
	return res
}
