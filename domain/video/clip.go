package video

import "fmt"

// ClipRange selects a [start, end] window of a video. End is an absolute
// timestamp; the transcoder receives start plus end-start as a duration.
type ClipRange struct {
	Start Timestamp
	End   Timestamp
}

// NewClipRange creates a ClipRange from raw timestamp strings and validates it.
// An empty start defaults to 00:00:00. End is required.
func NewClipRange(start, end string) (*ClipRange, error) {
	r := &ClipRange{}

	if start != "" {
		parsed, err := ParseTimestamp(start)
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		r.Start = parsed
	}

	parsed, err := ParseTimestamp(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}
	r.End = parsed

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate checks that the range is well-formed
func (r *ClipRange) Validate() error {
	if !r.End.After(r.Start) {
		return fmt.Errorf("end time %s must be after start time %s", r.End, r.Start)
	}
	return nil
}

// StartSeconds returns the start offset in whole seconds
func (r *ClipRange) StartSeconds() int {
	return r.Start.TotalSeconds()
}

// DurationSeconds returns the clip length (end - start) in whole seconds
func (r *ClipRange) DurationSeconds() int {
	return r.End.TotalSeconds() - r.Start.TotalSeconds()
}
