package migrate

import (
	"bytes"
	"context"
	"strings"
	"testing"

	blobcore "nemastocks/internal/blob/core"
	blobmem "nemastocks/internal/infra/blob/memory"
)

const exportJSON = `[
  {"WJA_NUMBER": "WJA 0000", "DESCRIPTION": "column notes placeholder"},
  {"WJA_NUMBER": "WJA 0042", "DESCRIPTION": "unc-54", "DATE_FROZEN": "11/22/2017"},
  {"WJA_NUMBER": "WJA 0100", "DESCRIPTION": "ret-1"}
]`

func TestLoadExportDropsPlaceholder(t *testing.T) {
	records, err := LoadExport(strings.NewReader(exportJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d", len(records))
	}
	if records[0].WJANumber != "WJA 0042" || records[0].DateFrozen != "11/22/2017" {
		t.Fatalf("records=%+v", records[0])
	}
}

func TestLoadExportRejectsGarbage(t *testing.T) {
	if _, err := LoadExport(strings.NewReader("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadExportBlob(t *testing.T) {
	store := blobmem.New()
	ctx := context.Background()
	if _, err := store.Put(ctx, "exports/strains.json", bytes.NewReader([]byte(exportJSON)), blobcore.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	records, err := LoadExportBlob(ctx, store, "exports/strains.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d", len(records))
	}
	if _, err := LoadExportBlob(ctx, store, "exports/missing.json"); err == nil {
		t.Fatalf("expected missing key error")
	}
}
