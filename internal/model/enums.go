package model

import (
	"slices"
	"strings"
)

type PlayerRole string

const (
	RoleBatsman      PlayerRole = "BATSMAN"
	RoleBowler       PlayerRole = "BOWLER"
	RoleAllRounder   PlayerRole = "ALL_ROUNDER"
	RoleWicketKeeper PlayerRole = "WICKET_KEEPER"
)

var playerRoles = []PlayerRole{RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper}

type BattingStyle string

const (
	BattingRightHanded BattingStyle = "RIGHT_HANDED"
	BattingLeftHanded  BattingStyle = "LEFT_HANDED"
)

var battingStyles = []BattingStyle{BattingRightHanded, BattingLeftHanded}

type BowlingStyle string

const (
	BowlingRightArmFast     BowlingStyle = "RIGHT_ARM_FAST"
	BowlingRightArmMedium   BowlingStyle = "RIGHT_ARM_MEDIUM"
	BowlingRightArmOffSpin  BowlingStyle = "RIGHT_ARM_OFF_SPIN"
	BowlingRightArmLegSpin  BowlingStyle = "RIGHT_ARM_LEG_SPIN"
	BowlingLeftArmFast      BowlingStyle = "LEFT_ARM_FAST"
	BowlingLeftArmMedium    BowlingStyle = "LEFT_ARM_MEDIUM"
	BowlingLeftArmOrthodox  BowlingStyle = "LEFT_ARM_ORTHODOX"
	BowlingLeftArmWristSpin BowlingStyle = "LEFT_ARM_WRIST_SPIN"
)

var bowlingStyles = []BowlingStyle{
	BowlingRightArmFast, BowlingRightArmMedium, BowlingRightArmOffSpin, BowlingRightArmLegSpin,
	BowlingLeftArmFast, BowlingLeftArmMedium, BowlingLeftArmOrthodox, BowlingLeftArmWristSpin,
}

// MatchStatus has two states; COMPLETED iff a Result is present.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusCompleted MatchStatus = "COMPLETED"
)

var matchStatuses = []MatchStatus{StatusScheduled, StatusCompleted}

// ParsePlayerRole accepts any casing and surrounding whitespace.
func ParsePlayerRole(s string) (PlayerRole, bool) { return parseEnum(s, playerRoles) }

func ParseBattingStyle(s string) (BattingStyle, bool) { return parseEnum(s, battingStyles) }

func ParseBowlingStyle(s string) (BowlingStyle, bool) { return parseEnum(s, bowlingStyles) }

func ParseMatchStatus(s string) (MatchStatus, bool) { return parseEnum(s, matchStatuses) }

func parseEnum[T ~string](s string, allowed []T) (T, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range allowed {
		if string(v) == norm {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// EnumValues joins allowed values with "|" for validation messages.
func EnumValues[T ~string](allowed []T) string {
	parts := make([]string, len(allowed))
	for i, v := range allowed {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}

// PlayerRoles and its siblings return copies; the package-level lists stay fixed.
func PlayerRoles() []PlayerRole     { return slices.Clone(playerRoles) }
func BattingStyles() []BattingStyle { return slices.Clone(battingStyles) }
func BowlingStyles() []BowlingStyle { return slices.Clone(bowlingStyles) }
func MatchStatuses() []MatchStatus  { return slices.Clone(matchStatuses) }
