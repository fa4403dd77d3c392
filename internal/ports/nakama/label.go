package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	labelKeyOpenSeats = "open"
	labelKeyGame      = "game"
	labelKeyPhase     = "phase"
	labelKeyPrivate   = "private"
)

// MatchLabel is the searchable summary Nakama stores for a match.
type MatchLabel struct {
	Open    int
	Phase   string
	Private bool
}

// Encode renders the label as the JSON object Nakama indexes.
func (l MatchLabel) Encode() (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		labelKeyOpenSeats: l.Open,
		labelKeyGame:      GameName,
		labelKeyPhase:     l.Phase,
		labelKeyPrivate:   l.Private,
	})
	if err != nil {
		return "", fmt.Errorf("build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	return string(b), nil
}
