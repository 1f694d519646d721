// Package dataset turns a labelled URL list into a feature table for
// offline model training.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"phishing-detector/features"
)

const DefaultWorkers = 8

var ErrMissingColumn = errors.New("dataset: header needs url and label columns")

// Extractor is the part of features.Extractor the export needs.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) features.Vector
}

type row struct {
	url, label string
}

// Header returns the output column names.
func Header() []string {
	h := make([]string, 0, len(features.FieldNames)+2)
	h = append(h, "url")
	h = append(h, features.FieldNames...)
	return append(h, "label")
}

// Export reads `url,label` rows from r and writes `url,<features>,label` rows
// to w in input order. Rows with a blank url are dropped. It returns the
// number of data rows written.
func Export(ctx context.Context, ex Extractor, r io.Reader, w io.Writer, workers int) (int, error) {
	rows, err := readRows(r)
	if err != nil {
		return 0, err
	}
	if workers < 1 {
		workers = DefaultWorkers
	}

	vectors := make([]features.Vector, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rw := range rows {
		if gctx.Err() != nil {
			break
		}
		i, rw := i, rw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i] = ex.Extract(gctx, rw.url)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, 0, len(features.FieldNames)+2)
	for i, rw := range rows {
		rec = rec[:0]
		rec = append(rec, rw.url)
		for _, v := range vectors[i].Values() {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rec = append(rec, rw.label)
		if err := cw.Write(rec); err != nil {
			return i, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rows), fmt.Errorf("flush: %w", err)
	}
	return len(rows), nil
}

func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	urlCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "url":
			urlCol = i
		case "label":
			labelCol = i
		}
	}
	if urlCol < 0 || labelCol < 0 {
		return nil, ErrMissingColumn
	}

	var rows []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if urlCol >= len(rec) || labelCol >= len(rec) {
			return nil, fmt.Errorf("line %d: %d fields, need url and label", line, len(rec))
		}
		u := strings.TrimSpace(rec[urlCol])
		if u == "" {
			continue
		}
		rows = append(rows, row{url: u, label: strings.TrimSpace(rec[labelCol])})
	}
}
