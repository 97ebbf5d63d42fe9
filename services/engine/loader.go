package engine

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadCSV reads OHLCV bars from a CSV file with columns
// timestamp,open,high,low,close[,volume]. Timestamps are unix
// milliseconds. A header row is skipped if present, UTF-16 files with a
// BOM are decoded transparently, rows are sorted by timestamp and
// duplicate timestamps keep the last row.
func LoadCSV(filename string) ([]Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var reader io.Reader = br
	if head, _ := br.Peek(2); len(head) >= 2 &&
		((head[0] == 0xFF && head[1] == 0xFE) || (head[0] == 0xFE && head[1] == 0xFF)) {
		reader = transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	}

	r := csv.NewReader(reader)
	r.ReuseRecord = false
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	bars := make([]Bar, 0, 1_000)
	lineIndex := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are skipped, but an underlying reader
			// failure would repeat forever, so bail out on it.
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("failed to read %s: %w", filename, err)
			}
			lineIndex++
			continue
		}
		if len(rec) < 5 {
			lineIndex++
			continue
		}

		// Skip header if present
		if lineIndex == 0 && (strings.EqualFold(rec[0], "timestamp") || strings.EqualFold(rec[0], "timestamp_ms")) {
			lineIndex++
			continue
		}

		tsStr := strings.TrimSpace(rec[0])
		tsStr = strings.TrimPrefix(tsStr, "\ufeff")
		timestamp, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			lineIndex++
			continue
		}

		open, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
		if err != nil {
			lineIndex++
			continue
		}
		high, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil {
			lineIndex++
			continue
		}
		low, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil {
			lineIndex++
			continue
		}
		cls, err := decimal.NewFromString(strings.TrimSpace(rec[4]))
		if err != nil {
			lineIndex++
			continue
		}
		volume := decimal.Zero
		if len(rec) >= 6 {
			if v, err := decimal.NewFromString(strings.TrimSpace(rec[5])); err == nil {
				volume = v
			}
		}

		bars = append(bars, Bar{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     cls,
			Volume:    volume,
		})
		lineIndex++
	}

	// Sort by timestamp and deduplicate identical timestamps (keep last)
	if len(bars) > 1 {
		sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
		uniq := make([]Bar, 0, len(bars))
		var lastTs int64 = -1
		for _, b := range bars {
			if b.Timestamp == lastTs {
				uniq[len(uniq)-1] = b
				continue
			}
			uniq = append(uniq, b)
			lastTs = b.Timestamp
		}
		bars = uniq
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no parsable bars in %s", filename)
	}
	return bars, nil
}
