package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
)

func TestEnumLists_AreCopies(t *testing.T) {
	roles := model.PlayerRoles()
	roles[0] = "CHEERLEADER"
	assert.Equal(t, model.RoleBatsman, model.PlayerRoles()[0])
	_, ok := model.ParsePlayerRole("cheerleader")
	assert.False(t, ok)

	statuses := model.MatchStatuses()
	statuses[1] = "ABANDONED"
	assert.Equal(t, "SCHEDULED|COMPLETED", model.EnumValues(model.MatchStatuses()))

	batting := model.BattingStyles()
	batting[0] = "AMBIDEXTROUS"
	assert.Equal(t, model.BattingRightHanded, model.BattingStyles()[0])

	bowling := model.BowlingStyles()
	bowling[0] = "UNDERARM"
	got, ok := model.ParseBowlingStyle("right_arm_fast")
	assert.True(t, ok)
	assert.Equal(t, model.BowlingRightArmFast, got)
}
