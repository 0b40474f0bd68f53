// Package drawsource loads historical draw files into memory at
// startup. The on-disk format is CSV with a header row:
// date,n1,n2,n3,n4,n5,pb. Dates use 2006-01-02.
package drawsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/pkg/logger"
)

const recordFields = 7

// Load reads every draw from the CSV file at path. An empty path means
// no history and returns a nil slice. A malformed record fails the
// whole load; a partially read history would silently skew the
// frequency criteria downstream.
func Load(ctx context.Context, path string) ([]model.HistoricalDraw, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	draws, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Get().Named("drawsource").Info(ctx, "loaded historical draws",
		logger.String("path", path),
		logger.Int("count", len(draws)),
	)
	return draws, nil
}

// Parse reads draws from r. The first row is treated as a header when
// its first field is not a date.
func Parse(ctx context.Context, r io.Reader) ([]model.HistoricalDraw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = recordFields
	cr.TrimLeadingSpace = true

	var draws []model.HistoricalDraw
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRecord, err)
		}
		line++

		// Skip a header row, but only the first one.
		if line == 1 {
			if _, dateErr := time.Parse("2006-01-02", record[0]); dateErr != nil {
				continue
			}
		}

		draw, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadRecord, line, err)
		}
		draws = append(draws, draw)
	}

	return draws, nil
}

func parseRecord(record []string) (model.HistoricalDraw, error) {
	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return model.HistoricalDraw{}, fmt.Errorf("date %q: %w", record[0], err)
	}

	var draw model.HistoricalDraw
	draw.Date = date
	for i := 0; i < model.WhiteBallCount; i++ {
		n, err := strconv.Atoi(record[i+1])
		if err != nil {
			return model.HistoricalDraw{}, fmt.Errorf("white ball %q: %w", record[i+1], err)
		}
		if n < 1 || n > model.WhiteBallMax {
			return model.HistoricalDraw{}, fmt.Errorf("white ball %d out of range", n)
		}
		draw.WhiteBalls[i] = n
	}

	pb, err := strconv.Atoi(record[6])
	if err != nil {
		return model.HistoricalDraw{}, fmt.Errorf("powerball %q: %w", record[6], err)
	}
	if pb < 1 || pb > model.PowerballMax {
		return model.HistoricalDraw{}, fmt.Errorf("powerball %d out of range", pb)
	}
	draw.Powerball = pb

	return draw, nil
}
