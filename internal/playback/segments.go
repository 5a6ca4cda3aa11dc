package playback

import "unicode"

// WordSegment locates one word inside the summary text by absolute
// character (rune) offsets. Segments are derived data, computed once per
// summary and never mutated.
type WordSegment struct {
	Text  string
	Start int
	End   int
}

// ComputeSegments tokenizes text into runs of non-whitespace characters,
// each tagged with its rune start/end offset in the source.
func ComputeSegments(text string) []WordSegment {
	var segments []WordSegment

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		segments = append(segments, WordSegment{
			Text:  string(runes[start:i]),
			Start: start,
			End:   i,
		})
	}

	return segments
}

// SegmentAt returns the index of the segment whose bounds contain the
// given character offset, or -1 when no segment matches (the caller
// leaves the highlight unchanged).
func SegmentAt(segments []WordSegment, charIndex int) int {
	for i, s := range segments {
		if charIndex >= s.Start && charIndex < s.End {
			return i
		}
	}
	return -1
}
