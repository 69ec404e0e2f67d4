// Package loader reads restriction data from files and keeps the active query current.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tradegate/internal/restrictions"
)

var ErrUnsupportedFormat = errors.New("unsupported restrictions file format")

// Source is the parsed content of a restrictions file.
type Source struct {
	Static  []restrictions.Asset
	Records []restrictions.Record
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid effective date %q", v)
}

// ReadCSV parses rows of asset,effective_date,state. A row with only an asset marks it
// statically restricted. A leading header row is skipped.
func ReadCSV(r io.Reader) (Source, error) {
	var src Source
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Source{}, fmt.Errorf("csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "asset") {
				continue
			}
		}
		switch len(rec) {
		case 1:
			if a := strings.TrimSpace(rec[0]); a != "" {
				src.Static = append(src.Static, restrictions.Asset(a))
			}
		case 3:
			r, err := record(rec[0], rec[1], rec[2])
			if err != nil {
				return Source{}, fmt.Errorf("csv line %d: %w", line, err)
			}
			src.Records = append(src.Records, r)
		default:
			return Source{}, fmt.Errorf("csv line %d: expected 1 or 3 fields, got %d", line, len(rec))
		}
	}
	return src, nil
}

type yamlDoc struct {
	Static  []string `yaml:"static"`
	Records []struct {
		Asset         string `yaml:"asset"`
		EffectiveDate string `yaml:"effective_date"`
		State         string `yaml:"state"`
	} `yaml:"records"`
}

// ReadYAML parses a document of the form {static: [...], records: [{asset, effective_date, state}]}.
func ReadYAML(r io.Reader) (Source, error) {
	var doc yamlDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Source{}, fmt.Errorf("decode yaml: %w", err)
	}
	var src Source
	for _, a := range doc.Static {
		if a = strings.TrimSpace(a); a != "" {
			src.Static = append(src.Static, restrictions.Asset(a))
		}
	}
	for i, d := range doc.Records {
		r, err := record(d.Asset, d.EffectiveDate, d.State)
		if err != nil {
			return Source{}, fmt.Errorf("records[%d]: %w", i, err)
		}
		src.Records = append(src.Records, r)
	}
	return src, nil
}

func record(asset, date, state string) (restrictions.Record, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return restrictions.Record{}, errors.New("empty asset")
	}
	dt, err := parseDate(date)
	if err != nil {
		return restrictions.Record{}, err
	}
	st, err := restrictions.ParseState(state)
	if err != nil {
		return restrictions.Record{}, err
	}
	return restrictions.Record{Asset: restrictions.Asset(asset), EffectiveDate: dt, State: st}, nil
}

// LoadFile reads path, choosing the parser from its extension.
func LoadFile(path string) (Source, error) {
	var read func(io.Reader) (Source, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		read = ReadCSV
	case ".yaml", ".yml":
		read = ReadYAML
	default:
		return Source{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open restrictions: %w", err)
	}
	defer f.Close()
	src, err := read(f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}
