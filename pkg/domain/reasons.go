package domain

// ReasonCode classifies why a strain failed (or was skipped) during the
// legacy migration. Codes are machine-distinguishable so the batch report
// can aggregate failures into a triage histogram.
type ReasonCode string

const (
	// ReasonCardinalityMismatch marks an irreconcilable cap-color /
	// freeze-date cardinality that needs a manual correction entry.
	ReasonCardinalityMismatch ReasonCode = "cardinality_mismatch"
	// ReasonLengthMismatch marks parallel per-tube lists of different lengths.
	ReasonLengthMismatch ReasonCode = "length_mismatch"
	// ReasonCommentGapExceeded marks a dated comment too far from any freeze.
	ReasonCommentGapExceeded ReasonCode = "comment_gap_exceeded"
	// ReasonAnnotationCollision marks a freeze group that would receive a
	// second, different annotation.
	ReasonAnnotationCollision ReasonCode = "annotation_collision"
	// ReasonMultiTubeThaw marks a thaw record claiming more than one tube.
	ReasonMultiTubeThaw ReasonCode = "multi_tube_thaw"
	// ReasonBoxNotFound marks a thaw or placement referencing an unknown box.
	ReasonBoxNotFound ReasonCode = "box_not_found"
	// ReasonBoxOverflow marks a placement that would exceed box capacity.
	ReasonBoxOverflow ReasonCode = "box_overflow"
	// ReasonBadRecord marks a record field that could not be parsed at all.
	ReasonBadRecord ReasonCode = "bad_record"
	// ReasonStoreError marks a persistence failure or state conflict.
	ReasonStoreError ReasonCode = "store_error"
)
