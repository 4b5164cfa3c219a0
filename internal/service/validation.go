package service

import (
	"fmt"
	"strings"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
)

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// present returns the trimmed value of an optional string when it is neither null nor blank.
func present(o model.Optional[string]) (string, bool) {
	v, ok := o.Get()
	if !ok || isBlank(v) {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func parseRole(raw string, ferrs *[]FieldError) model.PlayerRole {
	v, ok := model.ParsePlayerRole(raw)
	if !ok {
		*ferrs = append(*ferrs, FieldError{Field: "role", Message: "must be one of " + model.EnumValues(model.PlayerRoles())})
	}
	return v
}

func parseBatting(raw string, ferrs *[]FieldError) model.BattingStyle {
	v, ok := model.ParseBattingStyle(raw)
	if !ok {
		*ferrs = append(*ferrs, FieldError{Field: "battingStyle", Message: "must be one of " + model.EnumValues(model.BattingStyles())})
	}
	return v
}

func parseBowling(raw string, ferrs *[]FieldError) *model.BowlingStyle {
	v, ok := model.ParseBowlingStyle(raw)
	if !ok {
		*ferrs = append(*ferrs, FieldError{Field: "bowlingStyle", Message: "must be one of " + model.EnumValues(model.BowlingStyles())})
		return nil
	}
	return &v
}

func parseStatus(raw string, ferrs *[]FieldError) model.MatchStatus {
	v, ok := model.ParseMatchStatus(raw)
	if !ok {
		*ferrs = append(*ferrs, FieldError{Field: "status", Message: "must be one of " + model.EnumValues(model.MatchStatuses())})
	}
	return v
}

// checkStats rejects negative counters.
func checkStats(in *StatsInput, ferrs *[]FieldError) {
	if in == nil {
		return
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"matchesPlayed", in.MatchesPlayed},
		{"runsScored", in.RunsScored},
		{"wicketsTaken", in.WicketsTaken},
		{"catchesTaken", in.CatchesTaken},
	} {
		if f.v != nil && *f.v < 0 {
			*ferrs = append(*ferrs, FieldError{Field: "stats." + f.name, Message: "must be >= 0"})
		}
	}
}

// mergeStats overlays the supplied counters onto base; nil base starts from zero.
func mergeStats(base *model.Stats, in StatsInput) *model.Stats {
	out := model.Stats{}
	if base != nil {
		out = *base
	}
	if in.MatchesPlayed != nil {
		out.MatchesPlayed = *in.MatchesPlayed
	}
	if in.RunsScored != nil {
		out.RunsScored = *in.RunsScored
	}
	if in.WicketsTaken != nil {
		out.WicketsTaken = *in.WicketsTaken
	}
	if in.CatchesTaken != nil {
		out.CatchesTaken = *in.CatchesTaken
	}
	return &out
}

func validID(field string, id int64) error {
	if id <= 0 {
		return newInvalidInput([]FieldError{{Field: field, Message: "must be > 0"}})
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
