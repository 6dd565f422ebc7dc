package analyze

import (
	"time"

	"github.com/dgallion1/meetnotes/internal/transcript"
)

// SpeakerStats aggregates one source's contribution.
type SpeakerStats struct {
	Segments int `json:"segment_count"`
	Words    int `json:"word_count"`
	Turns    int `json:"turn_count"`
}

// TranscriptMetrics summarises merged turns.
type TranscriptMetrics struct {
	SegmentCount    int                                `json:"segment_count"`
	TurnCount       int                                `json:"turn_count"`
	DurationSeconds int                                `json:"duration_seconds"`
	PerSpeaker      map[transcript.Source]SpeakerStats `json:"per_speaker"`
}

// Duration is the span from the first turn's start to the last turn's end.
func (m TranscriptMetrics) Duration() time.Duration {
	return time.Duration(m.DurationSeconds) * time.Second
}

// AnalyzeTranscript sums segment and word counts per source.
func AnalyzeTranscript(turns []transcript.Turn) TranscriptMetrics {
	m := TranscriptMetrics{
		TurnCount:  len(turns),
		PerSpeaker: make(map[transcript.Source]SpeakerStats),
	}
	for _, t := range turns {
		s := m.PerSpeaker[t.Source]
		s.Segments += t.Segments
		s.Words += CountWords(t.Text)
		s.Turns++
		m.PerSpeaker[t.Source] = s
		m.SegmentCount += t.Segments
	}
	if len(turns) > 0 {
		span := turns[len(turns)-1].End.Sub(turns[0].Start)
		if span > 0 {
			m.DurationSeconds = int(span / time.Second)
		}
	}
	return m
}
