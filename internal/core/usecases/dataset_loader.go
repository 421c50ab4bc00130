package usecases

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/core/ports"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/geospatial"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/metrics"
)

// Column names of the upstream municipality table.
const (
	ColumnName       = "nome"
	ColumnLatitude   = "latitude"
	ColumnLongitude  = "longitude"
	ColumnRegionCode = "codigo_uf"
)

var requiredColumns = []string{ColumnName, ColumnLatitude, ColumnLongitude, ColumnRegionCode}

// LoadDataset fetches the municipality table from provider and builds the
// immutable snapshot. On failure it returns an empty, non-nil dataset along
// with an error wrapping domain.ErrDownloadFailed or domain.ErrSchemaMismatch,
// so callers can keep serving with the dataset reported as unavailable.
func LoadDataset(ctx context.Context, provider ports.DatasetProvider) (*domain.Dataset, error) {
	ctx, span := otel.Tracer("jobbmapper/usecases").Start(ctx, "dataset.load")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	}()

	raw, err := provider.Fetch(ctx)
	if err != nil {
		metrics.DatasetLoadErrors.WithLabelValues("download").Inc()
		span.RecordError(err)
		if !errors.Is(err, domain.ErrDownloadFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
		}
		return domain.EmptyDataset(), err
	}

	rows, dropped, err := ParseMunicipalities(bytes.NewReader(raw))
	if err != nil {
		metrics.DatasetLoadErrors.WithLabelValues("schema").Inc()
		span.RecordError(err)
		return domain.EmptyDataset(), err
	}

	points := make([]geospatial.Point, len(rows))
	for i, m := range rows {
		points[i] = geospatial.Point{Ordinal: i, Lat: m.Latitude, Lon: m.Longitude}
	}
	ds := domain.NewDataset(rows, geospatial.NewIndex(points))

	metrics.DatasetRows.Set(float64(ds.Len()))
	span.SetAttributes(attribute.Int("dataset.rows", ds.Len()), attribute.Int("dataset.dropped", dropped))
	slog.InfoContext(ctx, "municipality dataset loaded", "rows", ds.Len(), "dropped", dropped)

	return ds, nil
}

// ParseMunicipalities reads a CSV municipality table. It projects the four
// required columns and drops rows with a missing or unparsable value in any
// of them, returning how many rows were dropped. A missing required column
// yields domain.ErrSchemaMismatch.
func ParseMunicipalities(r io.Reader) ([]domain.Municipality, int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read header: %v", domain.ErrSchemaMismatch, err)
	}
	cols := indexColumns(header)

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: missing columns %s (found %s)",
			domain.ErrSchemaMismatch, strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	var (
		rows    []domain.Municipality
		dropped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		m, ok := parseRow(record, cols)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, m)
	}

	return rows, dropped, nil
}

func parseRow(record []string, cols map[string]int) (domain.Municipality, bool) {
	name := getField(record, cols, ColumnName)
	if name == "" {
		return domain.Municipality{}, false
	}
	lat, ok := parseCoordinate(getField(record, cols, ColumnLatitude))
	if !ok {
		return domain.Municipality{}, false
	}
	lon, ok := parseCoordinate(getField(record, cols, ColumnLongitude))
	if !ok {
		return domain.Municipality{}, false
	}
	code, ok := parseRegionCode(getField(record, cols, ColumnRegionCode))
	if !ok {
		return domain.Municipality{}, false
	}

	return domain.Municipality{Name: name, RegionCode: code, Latitude: lat, Longitude: lon}, true
}

func parseCoordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseRegionCode accepts integers and integral floats ("26", "26.0").
func parseRegionCode(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
