package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nemastocks/pkg/domain"
)

func seedStrain(t *testing.T, store *Store, wja int) {
	t.Helper()
	err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, _, err := tx.EnsureStrain(domain.Strain{WJA: wja, Description: "test strain"})
		return err
	})
	if err != nil {
		t.Fatalf("seed strain: %v", err)
	}
}

func TestStoreTransactionCommitAndRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindStrain(42); ok {
			t.Fatalf("expected missing strain")
		}
		_, created, err := tx.EnsureStrain(domain.Strain{WJA: 42})
		if err != nil || !created {
			t.Fatalf("ensure: created=%v err=%v", created, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.ListStrains()) != 1 {
		t.Fatalf("expected committed strain")
	}

	boom := fmt.Errorf("boom")
	err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, _, err := tx.EnsureStrain(domain.Strain{WJA: 43}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(store.ListStrains()) != 1 {
		t.Fatalf("expected rollback")
	}
}

func TestEnsureOperationsAreCreateOrFetch(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedStrain(t, store, 42)
	date := time.Date(2017, 10, 12, 0, 0, 0, 0, time.UTC)

	err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, _, err := tx.EnsureBox(domain.Box{Dewar: 1, Rack: 1, Box: 2, Capacity: 81}); err != nil {
			return err
		}
		fg, created, err := tx.EnsureFreezeGroup(domain.FreezeGroup{StrainWJA: 42, DateStored: date})
		if err != nil || !created {
			return fmt.Errorf("freeze: created=%v err=%v", created, err)
		}
		again, created, err := tx.EnsureFreezeGroup(domain.FreezeGroup{StrainWJA: 42, DateStored: date})
		if err != nil || created || again.ID != fg.ID {
			return fmt.Errorf("refetch: created=%v id=%s err=%v", created, again.ID, err)
		}
		tube, created, err := tx.EnsureTube(domain.Tube{
			StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02", SetNumber: 0, CapColor: "blue",
		})
		if err != nil || !created || tube.ID == "" {
			return fmt.Errorf("tube: created=%v err=%v", created, err)
		}
		_, created, err = tx.EnsureTube(domain.Tube{
			StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02", SetNumber: 0,
		})
		if err != nil || created {
			return fmt.Errorf("tube refetch: created=%v err=%v", created, err)
		}
		if got := len(tx.TubesForFreezeGroup(fg.ID)); got != 1 {
			return fmt.Errorf("tubes for freeze=%d", got)
		}
		if got := len(tx.TubesInBox(42, "JA01-R01-B02")); got != 1 {
			return fmt.Errorf("tubes in box=%d", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestEnsureTubeConstraints(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedStrain(t, store, 42)
	date := time.Date(2017, 10, 12, 0, 0, 0, 0, time.UTC)

	err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, _, err := tx.EnsureBox(domain.Box{Dewar: 1, Rack: 1, Box: 2, Capacity: 1}); err != nil {
			return err
		}
		fg, _, err := tx.EnsureFreezeGroup(domain.FreezeGroup{StrainWJA: 42, DateStored: date})
		if err != nil {
			return err
		}
		if _, _, err := tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: "missing", BoxID: "JA01-R01-B02"}); err == nil {
			return fmt.Errorf("expected unknown freeze group error")
		}
		if _, _, err := tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA09-R01-B02"}); err == nil {
			return fmt.Errorf("expected unknown box error")
		}
		if _, _, err := tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02", SetNumber: 0}); err != nil {
			return err
		}
		if _, _, err := tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02", SetNumber: 1}); !errors.Is(err, domain.ErrBoxFull) {
			return fmt.Errorf("expected ErrBoxFull, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestMarkTubeThawedIdempotence(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedStrain(t, store, 42)
	date := time.Date(2017, 10, 12, 0, 0, 0, 0, time.UTC)
	thawDate := time.Date(2019, 5, 17, 0, 0, 0, 0, time.UTC)

	var tubeID string
	err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, _, err := tx.EnsureBox(domain.Box{Dewar: 1, Rack: 1, Box: 2, Capacity: 81}); err != nil {
			return err
		}
		fg, _, err := tx.EnsureFreezeGroup(domain.FreezeGroup{StrainWJA: 42, DateStored: date})
		if err != nil {
			return err
		}
		tube, _, err := tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02"})
		if err != nil {
			return err
		}
		tubeID = tube.ID

		if _, err := tx.MarkTubeThawed(tubeID, thawDate, "AC"); err != nil {
			return err
		}
		// Same details: no-op.
		if _, err := tx.MarkTubeThawed(tubeID, thawDate, "AC"); err != nil {
			return fmt.Errorf("re-mark: %v", err)
		}
		// Different details: conflict.
		if _, err := tx.MarkTubeThawed(tubeID, thawDate, "MNP"); err == nil {
			return fmt.Errorf("expected conflict")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedStrain(t, store, 42)
	date := time.Date(2017, 10, 12, 0, 0, 0, 0, time.UTC)
	err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, _, err := tx.EnsureBox(domain.Box{Dewar: 1, Rack: 1, Box: 2, Capacity: 81}); err != nil {
			return err
		}
		fg, _, err := tx.EnsureFreezeGroup(domain.FreezeGroup{StrainWJA: 42, DateStored: date})
		if err != nil {
			return err
		}
		_, _, err = tx.EnsureTube(domain.Tube{StrainWJA: 42, FreezeGroupID: fg.ID, BoxID: "JA01-R01-B02"})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap := store.ExportState()
	restored := NewStore()
	restored.ImportState(snap)
	if len(restored.ListStrains()) != 1 || len(restored.ListFreezeGroups()) != 1 || len(restored.ListTubes()) != 1 {
		t.Fatalf("restored: strains=%d freezes=%d tubes=%d",
			len(restored.ListStrains()), len(restored.ListFreezeGroups()), len(restored.ListTubes()))
	}

	// Snapshots without a tube sequence rebuild it from sorted ids.
	snap.TubeSeq = nil
	restored.ImportState(snap)
	if len(restored.ListTubes()) != 1 {
		t.Fatalf("tubes=%d", len(restored.ListTubes()))
	}
}

func TestViewIsReadOnlySnapshot(t *testing.T) {
	store := NewStore()
	seedStrain(t, store, 42)
	err := store.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindStrain(42); !ok {
			t.Fatalf("expected strain in view")
		}
		if len(v.ListStrains()) != 1 {
			t.Fatalf("strains=%d", len(v.ListStrains()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
