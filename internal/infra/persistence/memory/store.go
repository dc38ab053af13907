// Package memory provides an in-memory implementation of the record store
// used for tests and ephemeral migration runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nemastocks/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RecordStore = (*Store)(nil)

type state struct {
	strains map[int]domain.Strain
	freezes map[string]domain.FreezeGroup
	tubes   map[string]domain.Tube
	boxes   map[string]domain.Box
	// tubeSeq preserves creation order so thaw resolution is deterministic.
	tubeSeq []string
}

// Snapshot captures a point-in-time clone of the store state for durable
// backends to persist and reload.
type Snapshot struct {
	Strains map[int]domain.Strain         `json:"strains"`
	Freezes map[string]domain.FreezeGroup `json:"freeze_groups"`
	Tubes   map[string]domain.Tube        `json:"tubes"`
	Boxes   map[string]domain.Box         `json:"boxes"`
	TubeSeq []string                      `json:"tube_seq"`
}

func newState() state {
	return state{
		strains: make(map[int]domain.Strain),
		freezes: make(map[string]domain.FreezeGroup),
		tubes:   make(map[string]domain.Tube),
		boxes:   make(map[string]domain.Box),
	}
}

func (s state) clone() state {
	out := state{
		strains: make(map[int]domain.Strain, len(s.strains)),
		freezes: make(map[string]domain.FreezeGroup, len(s.freezes)),
		tubes:   make(map[string]domain.Tube, len(s.tubes)),
		boxes:   make(map[string]domain.Box, len(s.boxes)),
		tubeSeq: append([]string(nil), s.tubeSeq...),
	}
	for k, v := range s.strains {
		out.strains[k] = v
	}
	for k, v := range s.freezes {
		out.freezes[k] = cloneFreeze(v)
	}
	for k, v := range s.tubes {
		out.tubes[k] = cloneTube(v)
	}
	for k, v := range s.boxes {
		out.boxes[k] = v
	}
	return out
}

func cloneFreeze(f domain.FreezeGroup) domain.FreezeGroup {
	f.Tester = clonePtr(f.Tester)
	f.TesterComments = clonePtr(f.TesterComments)
	f.TestCheckDate = clonePtr(f.TestCheckDate)
	return f
}

func cloneTube(t domain.Tube) domain.Tube {
	t.DateThawed = clonePtr(t.DateThawed)
	t.ThawRequester = clonePtr(t.ThawRequester)
	return t
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store is the in-memory record store. Transactions run against a cloned
// state and commit by swapping it in, so a failed transaction leaves
// committed state untouched.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(&view{state: &snapshot})
}

// ExportState returns a deep copy of committed state for snapshotting.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state.clone()
	return Snapshot{
		Strains: st.strains,
		Freezes: st.freezes,
		Tubes:   st.tubes,
		Boxes:   st.boxes,
		TubeSeq: st.tubeSeq,
	}
}

// ImportState replaces committed state with the supplied snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := newState()
	for k, v := range snap.Strains {
		st.strains[k] = v
	}
	for k, v := range snap.Freezes {
		st.freezes[k] = cloneFreeze(v)
	}
	for k, v := range snap.Tubes {
		st.tubes[k] = cloneTube(v)
	}
	for k, v := range snap.Boxes {
		st.boxes[k] = v
	}
	st.tubeSeq = append([]string(nil), snap.TubeSeq...)
	if len(st.tubeSeq) == 0 && len(st.tubes) > 0 {
		// Old snapshots predate the sequence; fall back to sorted ids.
		for id := range st.tubes {
			st.tubeSeq = append(st.tubeSeq, id)
		}
		sort.Strings(st.tubeSeq)
	}
	s.state = st
}

// ListStrains returns all strains ordered by WJA number.
func (s *Store) ListStrains() []domain.Strain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listStrains(&s.state)
}

// ListFreezeGroups returns all freeze groups ordered by id.
func (s *Store) ListFreezeGroups() []domain.FreezeGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listFreezes(&s.state)
}

// ListTubes returns all tubes in creation order.
func (s *Store) ListTubes() []domain.Tube {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTubes(&s.state)
}

// ListBoxes returns all boxes ordered by id.
func (s *Store) ListBoxes() []domain.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBoxes(&s.state)
}

func listStrains(st *state) []domain.Strain {
	out := make([]domain.Strain, 0, len(st.strains))
	for _, v := range st.strains {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WJA < out[j].WJA })
	return out
}

func listFreezes(st *state) []domain.FreezeGroup {
	out := make([]domain.FreezeGroup, 0, len(st.freezes))
	for _, v := range st.freezes {
		out = append(out, cloneFreeze(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func listTubes(st *state) []domain.Tube {
	out := make([]domain.Tube, 0, len(st.tubeSeq))
	for _, id := range st.tubeSeq {
		if t, ok := st.tubes[id]; ok {
			out = append(out, cloneTube(t))
		}
	}
	return out
}

func listBoxes(st *state) []domain.Box {
	out := make([]domain.Box, 0, len(st.boxes))
	for _, v := range st.boxes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type view struct {
	state *state
}

func (v *view) ListStrains() []domain.Strain           { return listStrains(v.state) }
func (v *view) ListFreezeGroups() []domain.FreezeGroup { return listFreezes(v.state) }
func (v *view) ListTubes() []domain.Tube               { return listTubes(v.state) }
func (v *view) ListBoxes() []domain.Box                { return listBoxes(v.state) }

func (v *view) FindStrain(wja int) (domain.Strain, bool) {
	st, ok := v.state.strains[wja]
	return st, ok
}

type transaction struct {
	state state
}

var _ domain.Transaction = (*transaction)(nil)

func freezeGroupID(wja int, dateStored time.Time) string {
	return fmt.Sprintf("frz-%04d-%s", wja, dateStored.Format("20060102"))
}

func tubeID(freezeGroupID, boxID string, setNumber int) string {
	return fmt.Sprintf("tube-%s-%s-%d", freezeGroupID, boxID, setNumber)
}

// EnsureStrain creates the strain unless a record with the same WJA number
// already exists. Existing records win; re-runs never clobber them.
func (tx *transaction) EnsureStrain(in domain.Strain) (domain.Strain, bool, error) {
	if existing, ok := tx.state.strains[in.WJA]; ok {
		return existing, false, nil
	}
	tx.state.strains[in.WJA] = in
	return in, true, nil
}

// EnsureFreezeGroup looks a freeze group up by (strain, stored date) before
// creating it. Ids are deterministic over that key.
func (tx *transaction) EnsureFreezeGroup(in domain.FreezeGroup) (domain.FreezeGroup, bool, error) {
	id := freezeGroupID(in.StrainWJA, in.DateStored)
	if existing, ok := tx.state.freezes[id]; ok {
		return cloneFreeze(existing), false, nil
	}
	if _, ok := tx.state.strains[in.StrainWJA]; !ok {
		return domain.FreezeGroup{}, false, fmt.Errorf("freeze group references unknown strain %s", domain.FormatWJA(in.StrainWJA))
	}
	in.ID = id
	tx.state.freezes[id] = cloneFreeze(in)
	return in, true, nil
}

// EnsureTube looks a tube up by (strain, freeze group, box, set number)
// before creating it, and enforces box capacity atomically within the
// transaction so concurrent strains cannot overbook a box.
func (tx *transaction) EnsureTube(in domain.Tube) (domain.Tube, bool, error) {
	id := tubeID(in.FreezeGroupID, in.BoxID, in.SetNumber)
	if existing, ok := tx.state.tubes[id]; ok {
		return cloneTube(existing), false, nil
	}
	if _, ok := tx.state.freezes[in.FreezeGroupID]; !ok {
		return domain.Tube{}, false, fmt.Errorf("tube references unknown freeze group %s", in.FreezeGroupID)
	}
	box, ok := tx.state.boxes[in.BoxID]
	if !ok {
		return domain.Tube{}, false, fmt.Errorf("tube references unknown box %s", in.BoxID)
	}
	if box.Capacity > 0 {
		occupied := 0
		for _, t := range tx.state.tubes {
			if t.BoxID == in.BoxID {
				occupied++
			}
		}
		if occupied >= box.Capacity {
			return domain.Tube{}, false, fmt.Errorf("box %s (%d slots): %w", in.BoxID, box.Capacity, domain.ErrBoxFull)
		}
	}
	in.ID = id
	tx.state.tubes[id] = cloneTube(in)
	tx.state.tubeSeq = append(tx.state.tubeSeq, id)
	return in, true, nil
}

// EnsureBox creates the box unless one exists at the same location.
func (tx *transaction) EnsureBox(in domain.Box) (domain.Box, bool, error) {
	id := domain.BoxID(in.Dewar, in.Rack, in.Box)
	if existing, ok := tx.state.boxes[id]; ok {
		return existing, false, nil
	}
	in.ID = id
	tx.state.boxes[id] = in
	return in, true, nil
}

// MarkTubeThawed transitions a tube to thawed. Re-marking with the same date
// and requester is a no-op; a conflicting re-mark is an error.
func (tx *transaction) MarkTubeThawed(tubeID string, date time.Time, requester string) (domain.Tube, error) {
	t, ok := tx.state.tubes[tubeID]
	if !ok {
		return domain.Tube{}, fmt.Errorf("unknown tube %s", tubeID)
	}
	if t.Thawed {
		if t.DateThawed != nil && t.DateThawed.Equal(date) && t.ThawRequester != nil && *t.ThawRequester == requester {
			return cloneTube(t), nil
		}
		return domain.Tube{}, fmt.Errorf("tube %s already thawed with different details", tubeID)
	}
	t.Thawed = true
	t.DateThawed = &date
	t.ThawRequester = &requester
	tx.state.tubes[tubeID] = cloneTube(t)
	return t, nil
}

func (tx *transaction) FindStrain(wja int) (domain.Strain, bool) {
	st, ok := tx.state.strains[wja]
	return st, ok
}

func (tx *transaction) FindFreezeGroup(wja int, dateStored time.Time) (domain.FreezeGroup, bool) {
	f, ok := tx.state.freezes[freezeGroupID(wja, dateStored)]
	if !ok {
		return domain.FreezeGroup{}, false
	}
	return cloneFreeze(f), true
}

func (tx *transaction) FindBox(dewar, rack, box int) (domain.Box, bool) {
	b, ok := tx.state.boxes[domain.BoxID(dewar, rack, box)]
	return b, ok
}

// TubesForFreezeGroup returns the freeze group's tubes in creation order.
func (tx *transaction) TubesForFreezeGroup(freezeGroupID string) []domain.Tube {
	var out []domain.Tube
	for _, id := range tx.state.tubeSeq {
		t, ok := tx.state.tubes[id]
		if ok && t.FreezeGroupID == freezeGroupID {
			out = append(out, cloneTube(t))
		}
	}
	return out
}

// TubesInBox returns the strain's tubes in the given box in creation order,
// thawed or not.
func (tx *transaction) TubesInBox(wja int, boxID string) []domain.Tube {
	var out []domain.Tube
	for _, id := range tx.state.tubeSeq {
		t, ok := tx.state.tubes[id]
		if ok && t.StrainWJA == wja && t.BoxID == boxID {
			out = append(out, cloneTube(t))
		}
	}
	return out
}
