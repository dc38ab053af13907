// Package domain defines the persistent entities and store interfaces for the
// worm-stock record system, along with the reason codes used by the legacy
// migration to classify per-strain failures.
package domain

import (
	"fmt"
	"time"
)

// Strain is one worm strain identified by its WJA number.
type Strain struct {
	WJA                int       `json:"wja"`
	Description        string    `json:"description"`
	Phenotype          string    `json:"phenotype"`
	DateCreated        time.Time `json:"date_created"`
	AdditionalComments string    `json:"additional_comments"`
}

// FormattedWJA returns the canonical zero-padded strain identifier.
func (s Strain) FormattedWJA() string {
	return FormatWJA(s.WJA)
}

// FormatWJA renders a WJA number the way the lab writes it ("WJA 0042").
func FormatWJA(wja int) string {
	return fmt.Sprintf("WJA %04d", wja)
}

// FreezeGroup is one occasion on which tubes of a strain were frozen and
// placed in storage. A strain has at most one freeze group per stored date.
type FreezeGroup struct {
	ID             string     `json:"id"`
	StrainWJA      int        `json:"strain_wja"`
	DateCreated    time.Time  `json:"date_created"`
	DateStored     time.Time  `json:"date_stored"`
	Freezer        string     `json:"freezer"`
	StartedTest    bool       `json:"started_test"`
	CompletedTest  bool       `json:"completed_test"`
	PassedTest     bool       `json:"passed_test"`
	Tester         *string    `json:"tester"`
	TesterComments *string    `json:"tester_comments"`
	TestCheckDate  *time.Time `json:"test_check_date"`
	Stored         bool       `json:"stored"`
}

// Annotated reports whether the freeze group carries a test annotation.
func (f FreezeGroup) Annotated() bool {
	return f.TesterComments != nil
}

// Tube is one physical storage tube belonging to exactly one freeze group.
// (StrainWJA, FreezeGroupID, BoxID, SetNumber) is unique.
type Tube struct {
	ID            string     `json:"id"`
	StrainWJA     int        `json:"strain_wja"`
	FreezeGroupID string     `json:"freeze_group_id"`
	BoxID         string     `json:"box_id"`
	SetNumber     int        `json:"set_number"`
	CapColor      string     `json:"cap_color"`
	DateCreated   time.Time  `json:"date_created"`
	Thawed        bool       `json:"thawed"`
	DateThawed    *time.Time `json:"date_thawed"`
	ThawRequester *string    `json:"thaw_requester"`
}

// Box is one physical storage box located by dewar/rack/box number.
type Box struct {
	ID       string `json:"id"`
	Dewar    int    `json:"dewar"`
	Rack     int    `json:"rack"`
	Box      int    `json:"box"`
	Capacity int    `json:"capacity"`
}

// BoxID renders the canonical box identifier for a dewar/rack/box triple.
func BoxID(dewar, rack, box int) string {
	return fmt.Sprintf("JA%02d-R%02d-B%02d", dewar, rack, box)
}

// Location returns the box's canonical identifier.
func (b Box) Location() string {
	return BoxID(b.Dewar, b.Rack, b.Box)
}
