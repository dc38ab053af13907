package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	blobcore "nemastocks/internal/blob/core"
	"nemastocks/internal/legacy"
)

// LoadExport decodes the legacy spreadsheet export. The export carries one
// placeholder row ("WJA 0000") that held the spreadsheet's column notes; it
// is dropped here, before any record hits the pipeline.
func LoadExport(r io.Reader) ([]legacy.Record, error) {
	var raw []legacy.Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	out := raw[:0]
	for _, rec := range raw {
		if wja, err := rec.StrainNumber(); err == nil && wja == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadExportFile reads the export from a local file.
func LoadExportFile(path string) ([]legacy.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadExport(f)
}

// LoadExportBlob reads the export from the blob store.
func LoadExportBlob(ctx context.Context, store blobcore.Store, key string) ([]legacy.Record, error) {
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetching export %s: %w", key, err)
	}
	defer rc.Close()
	return LoadExport(rc)
}
