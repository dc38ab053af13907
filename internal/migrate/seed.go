package migrate

import (
	"context"

	"nemastocks/pkg/domain"
)

// The lab's liquid-nitrogen storage: two dewars, six racks each, eight boxes
// per rack, 81 slots (9x9) per box.
const (
	dewarCount  = 2
	racksPer    = 6
	boxesPer    = 8
	boxCapacity = 81
)

// SeedBoxes creates the full physical box grid. It runs before every
// migration and is a no-op once the boxes exist.
func SeedBoxes(ctx context.Context, store domain.RecordStore) error {
	return store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for d := 1; d <= dewarCount; d++ {
			for r := 1; r <= racksPer; r++ {
				for b := 1; b <= boxesPer; b++ {
					box := domain.Box{Dewar: d, Rack: r, Box: b, Capacity: boxCapacity}
					if _, _, err := tx.EnsureBox(box); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}
