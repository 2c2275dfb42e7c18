package solver

// Reason classifies the outcome of a Solve call. Infeasibility is encoded
// here rather than as an error: the solver is a total function and every
// well-formed input maps to exactly one reason code.
type Reason string

const (
	// ReasonPair means two adjacent-priority materials split the volume.
	ReasonPair Reason = "SUCCESS_PAIR"
	// ReasonSingle means one material fills the whole cavity exactly.
	ReasonSingle Reason = "SUCCESS_SINGLE"
	// ReasonFrameExceedsTarget means the frame alone already weighs as much
	// as (or more than) the requested total, leaving no weight for fill.
	ReasonFrameExceedsTarget Reason = "FRAME_EXCEEDS_TARGET"
	// ReasonTargetTooLow means even the lightest material at full volume
	// would overshoot the required fill weight.
	ReasonTargetTooLow Reason = "TARGET_TOO_LOW"
	// ReasonTargetTooHigh means even the densest material at full volume
	// cannot reach the required fill weight.
	ReasonTargetTooHigh Reason = "TARGET_TOO_HIGH"
	// ReasonNoMaterials means the candidate list was empty, so no fill
	// bounds exist to diagnose against.
	ReasonNoMaterials Reason = "NO_MATERIALS"
	// ReasonNoSplit means the target lies within the achievable weight
	// range but no adjacent-priority pair or single material produced an
	// exact fit. Adjacent pairs cover the whole range for well-formed
	// inputs, so this only surfaces through floating-point edge cases.
	ReasonNoSplit Reason = "NO_FEASIBLE_SPLIT"
	// ReasonInvalidInput means a dimension, weight, or density was NaN or
	// infinite. Reported explicitly instead of letting NaN propagate
	// through the arithmetic.
	ReasonInvalidInput Reason = "INVALID_INPUT"
)
