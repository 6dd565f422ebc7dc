package transcript

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

var t0 = time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)

func seg(src Source, startSec, endSec int, text string, final bool) Segment {
	return Segment{
		Source: src,
		Start:  t0.Add(time.Duration(startSec) * time.Second),
		End:    t0.Add(time.Duration(endSec) * time.Second),
		Text:   text,
		Final:  final,
	}
}

func TestMerge_SpeakerScenario(t *testing.T) {
	turns := Merge([]Segment{
		seg(SourceMicrophone, 0, 2, "Hi", true),
		seg(SourceMicrophone, 2, 4, "there", true),
		seg(SourceSystem, 4, 6, "Hello", true),
	})

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Source != SourceMicrophone || turns[0].Text != "Hi there" {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[0].Segments != 2 {
		t.Errorf("expected 2 segments in first turn, got %d", turns[0].Segments)
	}
	if !turns[0].Start.Equal(t0) || !turns[0].End.Equal(t0.Add(4*time.Second)) {
		t.Errorf("unexpected first turn range: %v - %v", turns[0].Start, turns[0].End)
	}
	if turns[1].Source != SourceSystem || turns[1].Text != "Hello" {
		t.Errorf("unexpected second turn: %+v", turns[1])
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	turns := Merge(nil)
	if turns == nil || len(turns) != 0 {
		t.Errorf("expected empty non-nil turns, got %#v", turns)
	}
	if out := Render(turns); out != "" {
		t.Errorf("expected empty render, got %q", out)
	}
}

func TestMerge_ExcludesProvisionalSegments(t *testing.T) {
	turns := Merge([]Segment{
		seg(SourceMicrophone, 0, 1, "draft words", false),
		seg(SourceMicrophone, 0, 2, "final words", true),
		seg(SourceSystem, 2, 3, "maybe", false),
		seg(SourceMicrophone, 3, 4, "more", true),
	})
	// The provisional system segment must not split the microphone run.
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d: %+v", len(turns), turns)
	}
	if turns[0].Text != "final words more" {
		t.Errorf("unexpected text %q", turns[0].Text)
	}
}

func TestMerge_IgnoresTimeGaps(t *testing.T) {
	turns := Merge([]Segment{
		seg(SourceSystem, 0, 1, "before", true),
		seg(SourceSystem, 3600, 3601, "after an hour", true),
	})
	if len(turns) != 1 {
		t.Fatalf("expected gap to be ignored, got %d turns", len(turns))
	}
}

func TestMerge_AdjacencyInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sources := []Source{SourceMicrophone, SourceSystem}

	for round := 0; round < 200; round++ {
		n := rng.IntN(30)
		segs := make([]Segment, 0, n)
		for i := 0; i < n; i++ {
			final := rng.IntN(4) != 0
			word := fmt.Sprintf("w%d", i)
			if !final {
				word = fmt.Sprintf("provisional%d", i)
			}
			segs = append(segs, seg(sources[rng.IntN(2)], i, i+1, word, final))
		}

		wantRuns := 0
		var prev Source
		for _, s := range segs {
			if !s.Final {
				continue
			}
			if wantRuns == 0 || s.Source != prev {
				wantRuns++
			}
			prev = s.Source
		}

		turns := Merge(segs)
		if len(turns) != wantRuns {
			t.Fatalf("round %d: expected %d turns, got %d", round, wantRuns, len(turns))
		}
		for _, turn := range turns {
			if strings.Contains(turn.Text, "provisional") {
				t.Fatalf("round %d: provisional text leaked into %q", round, turn.Text)
			}
		}
	}
}

func TestRender_Turns(t *testing.T) {
	out := RenderSegments([]Segment{
		seg(SourceMicrophone, 0, 2, "Hi", true),
		seg(SourceMicrophone, 2, 4, " there ", true),
		seg(SourceSystem, 4, 3725, "Hello", true),
	})
	want := "**Me** [00:00:00 - 00:00:04]\nHi there\n\n**Them** [00:00:04 - 01:02:05]\nHello"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRender_EmptyTurnText(t *testing.T) {
	out := Render([]Turn{{Source: SourceSystem, Start: t0, End: t0, Segments: 1}})
	if out != "**Them** [00:00:00 - 00:00:00]" {
		t.Errorf("got %q", out)
	}
}

func TestDecode(t *testing.T) {
	input := `[
		{"document_id":"d1","id":"s1","start_timestamp":"2025-03-04T15:00:00.000Z","end_timestamp":"2025-03-04T15:00:02.500Z","text":"Hi","source":"microphone","is_final":true},
		{"document_id":"d1","id":"s2","start_timestamp":"2025-03-04T15:00:02.500Z","end_timestamp":"2025-03-04T15:00:04Z","text":"Hey","source":"system","is_final":false}
	]`
	segs, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Source != SourceMicrophone || !segs[0].Final || segs[0].End.Sub(segs[0].Start) != 2500*time.Millisecond {
		t.Errorf("unexpected first segment: %+v", segs[0])
	}
	if segs[1].Final {
		t.Error("expected second segment to be provisional")
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unknown source", `[{"start_timestamp":"2025-03-04T15:00:00Z","end_timestamp":"2025-03-04T15:00:01Z","source":"speaker","is_final":true}]`, "oneof"},
		{"missing final flag", `[{"start_timestamp":"2025-03-04T15:00:00Z","end_timestamp":"2025-03-04T15:00:01Z","source":"system"}]`, "IsFinal"},
		{"missing start", `[{"end_timestamp":"2025-03-04T15:00:01Z","source":"system","is_final":true}]`, "StartTimestamp"},
		{"bad timestamp", `[{"start_timestamp":"yesterday","end_timestamp":"2025-03-04T15:00:01Z","source":"system","is_final":true}]`, "bad start_timestamp"},
		{"end before start", `[{"start_timestamp":"2025-03-04T15:00:05Z","end_timestamp":"2025-03-04T15:00:01Z","source":"system","is_final":true}]`, "precedes"},
		{"not an array", `{"segments":[]}`, "invalid transcript json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			var se *doctree.StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %v", err)
			}
			if !strings.Contains(se.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, se.Error())
			}
		})
	}
}

func TestSourceLabel(t *testing.T) {
	if SourceMicrophone.Label() != "Me" || SourceSystem.Label() != "Them" {
		t.Error("unexpected speaker labels")
	}
}
