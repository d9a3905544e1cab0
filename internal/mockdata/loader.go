// Package mockdata loads the static dashboard dataset served in file mode.
package mockdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

var ErrInvalidDataset = errors.New("invalid mock dataset")

var schemaLoader = gojsonschema.NewStringLoader(datasetSchema)

// Dataset is a mock data file read once at startup. The raw bytes are kept
// untouched so they can be served exactly as stored.
type Dataset struct {
	path   string
	raw    []byte
	record models.EnvironmentData
}

// Load reads and validates the dataset at path.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read mock dataset: %w", err)
	}

	ds, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	ds.path = path
	return ds, nil
}

// Parse validates raw against the dataset schema.
func Parse(raw []byte) (*Dataset, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidDataset)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(problems, "; "))
	}

	var record models.EnvironmentData
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if record.AirQuality == nil {
		record.AirQuality = map[string]float64{}
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)

	return &Dataset{raw: buf, record: record}, nil
}

func (d *Dataset) Path() string { return d.path }

// Raw returns the file contents as read. Callers must not modify the slice.
func (d *Dataset) Raw() []byte { return d.raw }

// Record returns the decoded dataset.
func (d *Dataset) Record() models.EnvironmentData {
	rec := d.record
	rec.AirQuality = make(map[string]float64, len(d.record.AirQuality))
	for k, v := range d.record.AirQuality {
		rec.AirQuality[k] = v
	}
	return rec
}
