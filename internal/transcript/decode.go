package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

// RawSegment is the wire shape returned by the transcript endpoint.
type RawSegment struct {
	DocumentID     string `json:"document_id"`
	ID             string `json:"id"`
	StartTimestamp string `json:"start_timestamp" validate:"required"`
	EndTimestamp   string `json:"end_timestamp" validate:"required"`
	Text           string `json:"text"`
	Source         string `json:"source" validate:"required,oneof=microphone system"`
	IsFinal        *bool  `json:"is_final" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates a JSON array of raw segments.
func Decode(data []byte) ([]Segment, error) {
	var raws []RawSegment
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &doctree.StructuralError{Kind: "segment", Reason: fmt.Sprintf("invalid transcript json: %v", err)}
	}
	return FromRaw(raws)
}

// FromRaw validates raw segments and converts them to Segments. The first
// invalid segment aborts the conversion.
func FromRaw(raws []RawSegment) ([]Segment, error) {
	out := make([]Segment, 0, len(raws))
	for i := range raws {
		seg, err := fromRaw(&raws[i], fmt.Sprintf("segments[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func fromRaw(raw *RawSegment, path string) (Segment, error) {
	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Segment{}, doctree.Structuralf("segment", path, "field %s failed %s validation", fe.Field(), fe.Tag())
		}
		return Segment{}, doctree.Structuralf("segment", path, "%v", err)
	}

	start, err := time.Parse(time.RFC3339Nano, raw.StartTimestamp)
	if err != nil {
		return Segment{}, doctree.Structuralf("segment", path, "bad start_timestamp %q", raw.StartTimestamp)
	}
	end, err := time.Parse(time.RFC3339Nano, raw.EndTimestamp)
	if err != nil {
		return Segment{}, doctree.Structuralf("segment", path, "bad end_timestamp %q", raw.EndTimestamp)
	}
	if end.Before(start) {
		return Segment{}, doctree.Structuralf("segment", path, "end_timestamp precedes start_timestamp")
	}

	return Segment{
		ID:         raw.ID,
		DocumentID: raw.DocumentID,
		Source:     Source(raw.Source),
		Start:      start,
		End:        end,
		Text:       raw.Text,
		Final:      *raw.IsFinal,
	}, nil
}
