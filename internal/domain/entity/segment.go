package entity

import "fmt"

// Segment addresses one fixed-duration window of the media timeline. A
// segment spans Duration/Timescale seconds; Index selects which window.
type Segment struct {
	Index     int64
	Duration  int64
	Timescale int64
}

func (s Segment) Validate() error {
	if s.Index < 0 {
		return fmt.Errorf("segment index must be >= 0, got %d", s.Index)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %d", s.Duration)
	}
	if s.Timescale <= 0 {
		return fmt.Errorf("timescale must be > 0, got %d", s.Timescale)
	}
	return nil
}

// Bounds returns the segment's start and end timestamps in GlobalTimeBase
// ticks. The end timestamp is the start of segment Index+1, so consecutive
// segments tile the timeline without gaps or overlap.
//
// Segment length in seconds is Duration/Timescale. Keeping the rational in
// that order matters: the inverse ordering silently swaps a 5-second segment
// for a 0.2-second one.
func (s Segment) Bounds() (start, end int64) {
	start = Rescale(s.Index, s.Duration*GlobalTimeBase, s.Timescale)
	end = Rescale(s.Index+1, s.Duration*GlobalTimeBase, s.Timescale)
	return start, end
}
