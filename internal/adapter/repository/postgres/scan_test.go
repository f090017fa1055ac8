package postgres

import (
	"testing"
)

// stubEntryRow satisfies pgx.Row for scanEntry. Only the metadata column is
// populated; every other destination keeps its zero value.
type stubEntryRow struct {
	metadata []byte
}

func (r stubEntryRow) Scan(dest ...any) error {
	*(dest[11].(*[]byte)) = r.metadata
	return nil
}

type stubAlertRow struct {
	metadata []byte
}

func (r stubAlertRow) Scan(dest ...any) error {
	*(dest[5].(*[]byte)) = r.metadata
	return nil
}

func TestScanEntryMetadata(t *testing.T) {
	entry, err := scanEntry(stubEntryRow{metadata: []byte(`{"plan":"pro"}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Metadata["plan"] != "pro" {
		t.Fatalf("expected metadata to round-trip, got %v", entry.Metadata)
	}
}

func TestScanEntryRejectsCorruptMetadata(t *testing.T) {
	entry, err := scanEntry(stubEntryRow{metadata: []byte(`{"plan":`)})
	if err == nil {
		t.Fatalf("expected error for corrupt metadata, got entry %+v", entry)
	}
}

func TestScanAlertRejectsCorruptMetadata(t *testing.T) {
	alert, err := scanAlert(stubAlertRow{metadata: []byte(`not json`)})
	if err == nil {
		t.Fatalf("expected error for corrupt metadata, got alert %+v", alert)
	}
}
