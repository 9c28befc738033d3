package progression

import (
	"errors"
	"testing"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestExperienceCurve(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 282},
		{3, 519},
		{4, 800},
		{10, 3162},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExperienceForLevel(tt.level), "level %d", tt.level)
	}
}

func TestAddExperienceLevelsUp(t *testing.T) {
	s := New()
	var levels []int
	s.OnLevelUp = func(l int) { levels = append(levels, l) }

	s.AddExperience(100)
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, 282, s.ExperienceToNext())

	// несколько уровней за раз
	s.AddExperience(900)
	assert.Equal(t, 3, s.Level())
	assert.Equal(t, 199, s.Experience())
	assert.Equal(t, 800, s.ExperienceToNext())
	assert.Equal(t, 4, s.SkillPoints())
	assert.Equal(t, []int{2, 3}, levels)

	s.AddExperience(-50)
	assert.Equal(t, 199, s.Experience())
}

func TestUpgradeSkill(t *testing.T) {
	s := New()
	var attrs Attributes
	s.OnSkillsChanged = func(a Attributes) { attrs = a }

	err := s.UpgradeSkill(SkillJumpHeight)
	assert.True(t, errors.Is(err, entity.ErrResourceExhausted))
	assert.True(t, errors.Is(s.UpgradeSkill("flying"), entity.ErrNotFound))

	s.AddExperience(1000)
	require.Equal(t, 4, s.SkillPoints())

	require.NoError(t, s.UpgradeSkill(SkillJumpHeight))
	require.NoError(t, s.UpgradeSkill(SkillJumpHeight))
	err = s.UpgradeSkill(SkillJumpHeight)
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation), "max level 3")
	assert.Equal(t, 3, s.SkillLevel(SkillJumpHeight))
	assert.InDelta(t, 1.3, attrs.JumpMultiplier, 1e-9)

	require.NoError(t, s.UpgradeSkill(SkillHealth))
	assert.Equal(t, 120.0, s.Attributes().MaxHealth)
	assert.Equal(t, 1, s.SkillPoints(), "отклонённое улучшение очко не тратит")

	require.NoError(t, s.UpgradeSkill(SkillHealth))
	assert.Equal(t, 0, s.SkillPoints())
	err = s.UpgradeSkill(SkillHealth)
	assert.True(t, errors.Is(err, entity.ErrResourceExhausted))

	assert.Equal(t, 1.0, s.SkillValue("unknown"))
	assert.Equal(t, "Saúde (Nível 3/10): Aumenta a saúde máxima", s.SkillDescription(SkillHealth))
}

func TestDefaultAttributes(t *testing.T) {
	a := New().Attributes()
	assert.Equal(t, Attributes{
		MaxHealth:       100,
		MaxStamina:      100,
		SpeedMultiplier: 1,
		RegenMultiplier: 1,
		JumpMultiplier:  1,
	}, a)
	assert.Len(t, New().Skills(), 18)
	assert.Len(t, New().Achievements(), 7)
}

func TestAchievementFromStat(t *testing.T) {
	s := New()
	var got []string
	s.OnAchievement = func(a Achievement) { got = append(got, a.Key) }

	assert.True(t, s.UpdateStat(StatZombiesKilled, 99))
	assert.Empty(t, got)
	assert.True(t, s.UpdateStat(StatZombiesKilled, 1))
	assert.Equal(t, []string{AchievementZombieKiller}, got)

	// награда 500 XP
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 218, s.Experience())

	// повторно не выдаётся
	s.UpdateStat(StatZombiesKilled, 100)
	assert.Len(t, got, 1)

	assert.False(t, s.UpdateStat("nonsense", 1))
}

func TestSurvivorCheckedEveryTenSeconds(t *testing.T) {
	s := New()
	s.Update(3599)
	a, _ := s.Achievement(AchievementSurvivor)
	assert.False(t, a.Completed)
	assert.Equal(t, 3599.0, a.Progress)

	s.Update(0.5)
	a, _ = s.Achievement(AchievementSurvivor)
	assert.False(t, a.Completed, "no check inside the same 10s window")

	s.Update(0.6)
	a, _ = s.Achievement(AchievementSurvivor)
	assert.True(t, a.Completed)
	assert.Equal(t, 3, s.Level())
}

func TestExplorerCountsDistinctAreas(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		s.VisitArea("0:0")
	}
	assert.Equal(t, []string{"0:0"}, s.VisitedAreas())

	for _, area := range []string{"0:1", "0:2", "0:3", "0:4", "1:0", "1:1", "1:2", "1:3", "1:4"} {
		s.VisitArea(area)
	}
	a, _ := s.Achievement(AchievementExplorer)
	assert.True(t, a.Completed)
}

func TestResetKeepsProgress(t *testing.T) {
	s := New()
	s.AddExperience(300)
	s.Reset()
	s.Reset()
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 2.0, s.Stat(StatDeaths))
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	s.AddExperience(1000)
	require.NoError(t, s.UpgradeSkill(SkillSpeed))
	s.UpdateStat(StatVehiclesRepaired, 3)
	s.VisitArea("2:2")

	data, err := msgpack.Marshal(s.Save())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, msgpack.Unmarshal(data, &snap))

	restored := New()
	var attrs Attributes
	restored.OnSkillsChanged = func(a Attributes) { attrs = a }
	require.NoError(t, restored.Load(snap))

	assert.Equal(t, 3, restored.Level())
	assert.Equal(t, 199, restored.Experience())
	assert.Equal(t, 800, restored.ExperienceToNext())
	assert.Equal(t, 3, restored.SkillPoints())
	assert.Equal(t, 2, restored.SkillLevel(SkillSpeed))
	assert.InDelta(t, 1.1, attrs.SpeedMultiplier, 1e-9)
	assert.Equal(t, 3.0, restored.Stat(StatVehiclesRepaired))
	assert.Equal(t, []string{"2:2"}, restored.VisitedAreas())

	a, _ := restored.Achievement(AchievementMechanic)
	assert.Equal(t, 3.0, a.Progress)

	assert.Error(t, restored.Load(Snapshot{Level: 0}))
}
