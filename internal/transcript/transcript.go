package transcript

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies which audio channel produced a segment.
type Source string

const (
	SourceMicrophone Source = "microphone"
	SourceSystem     Source = "system"
)

// Label is the speaker name printed in turn headers.
func (s Source) Label() string {
	switch s {
	case SourceMicrophone:
		return "Me"
	case SourceSystem:
		return "Them"
	default:
		return string(s)
	}
}

// Segment is one transcribed utterance. Only final segments are rendered.
type Segment struct {
	ID         string    `json:"id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Source     Source    `json:"source"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Text       string    `json:"text"`
	Final      bool      `json:"final"`
}

// Turn is a maximal run of consecutive final segments from one source.
type Turn struct {
	Source   Source    `json:"source"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Text     string    `json:"text"`
	Segments int       `json:"segments"`
}

// Merge filters out provisional segments and coalesces adjacent segments
// from the same source into turns, in arrival order. Adjacent same-source
// segments always merge, whatever the time gap between them.
func Merge(segments []Segment) []Turn {
	turns := make([]Turn, 0)
	var parts []string

	flush := func() {
		if n := len(turns); n > 0 {
			turns[n-1].Text = strings.Join(parts, " ")
		}
		parts = parts[:0]
	}

	for _, seg := range segments {
		if !seg.Final {
			continue
		}
		text := strings.TrimSpace(seg.Text)

		if n := len(turns); n > 0 && turns[n-1].Source == seg.Source {
			cur := &turns[n-1]
			cur.End = seg.End
			cur.Segments++
			if text != "" {
				parts = append(parts, text)
			}
			continue
		}

		flush()
		turns = append(turns, Turn{
			Source:   seg.Source,
			Start:    seg.Start,
			End:      seg.End,
			Segments: 1,
		})
		if text != "" {
			parts = append(parts, text)
		}
	}
	flush()
	return turns
}

// Render prints each turn as a speaker header with its time range relative
// to the first turn, followed by the text. Turns are separated by a blank line.
func Render(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	origin := turns[0].Start
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		header := fmt.Sprintf("**%s** [%s - %s]", t.Source.Label(), clock(t.Start.Sub(origin)), clock(t.End.Sub(origin)))
		if t.Text == "" {
			blocks = append(blocks, header)
			continue
		}
		blocks = append(blocks, header+"\n"+t.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// RenderSegments merges and renders in one step.
func RenderSegments(segments []Segment) string {
	return Render(Merge(segments))
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
