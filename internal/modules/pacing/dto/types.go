package dto

type StartInput struct {
	OnUpdate   func(ProgressOutput)
	OnSegment  func(SegmentChange)
	OnComplete func()
}

type ProgressOutput struct {
	ElapsedMs        float64
	TotalMs          float64
	Fraction         float64
	Degrees          float64
	SegmentIndex     int
	SegmentLabel     string
	RemainingSeconds float64
}

// SegmentChange is emitted when a run enters a new segment, including the
// first segment on the first frame.
type SegmentChange struct {
	Index int
	Label string
}

type PaceOutput struct {
	UnitSeconds    float64
	MinUnitSeconds float64
	CycleSeconds   float64
}

type SegmentOutput struct {
	Index        int
	Label        string
	Weight       float64
	Color        string
	StartSeconds float64
	EndSeconds   float64
}

type ArcOutput struct {
	Segment  int
	Label    string
	Color    string
	StartDeg float64
	EndDeg   float64
}
