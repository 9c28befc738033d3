package progression

import (
	"fmt"

	"github.com/annel0/deadcity/internal/entity"
)

// SkillState сохраняемая часть навыка
type SkillState struct {
	Level int     `json:"level" msgpack:"level"`
	Value float64 `json:"value" msgpack:"value"`
}

// AchievementState сохраняемая часть достижения
type AchievementState struct {
	Progress  float64 `json:"progress" msgpack:"progress"`
	Completed bool    `json:"completed" msgpack:"completed"`
}

// Snapshot плоский снимок прогресса для сохранения
type Snapshot struct {
	Level        int                         `json:"level" msgpack:"level"`
	Experience   int                         `json:"experience" msgpack:"experience"`
	SkillPoints  int                         `json:"skillPoints" msgpack:"skill_points"`
	Skills       map[string]SkillState       `json:"skills" msgpack:"skills"`
	Achievements map[string]AchievementState `json:"achievements" msgpack:"achievements"`
	Stats        map[string]float64          `json:"stats" msgpack:"stats"`
	Visited      []string                    `json:"visited,omitempty" msgpack:"visited,omitempty"`
}

// Save снимает текущее состояние
func (s *System) Save() Snapshot {
	snap := Snapshot{
		Level:        s.level,
		Experience:   s.experience,
		SkillPoints:  s.skillPoints,
		Skills:       make(map[string]SkillState, len(s.skills)),
		Achievements: make(map[string]AchievementState, len(s.achievements)),
		Stats:        s.Stats(),
		Visited:      s.VisitedAreas(),
	}
	for k, sk := range s.skills {
		snap.Skills[k] = SkillState{Level: sk.Level, Value: sk.Value}
	}
	for k, a := range s.achievements {
		snap.Achievements[k] = AchievementState{Progress: a.Progress, Completed: a.Completed}
	}
	return snap
}

// Load восстанавливает состояние из снимка. Неизвестные ключи пропускаются,
// отсутствующие остаются как есть. Порог следующего уровня пересчитывается.
func (s *System) Load(snap Snapshot) error {
	if snap.Level < 1 || snap.Experience < 0 || snap.SkillPoints < 0 {
		return fmt.Errorf("%w: corrupt progression snapshot (level %d, xp %d, points %d)",
			entity.ErrInvalidOperation, snap.Level, snap.Experience, snap.SkillPoints)
	}

	s.level = snap.Level
	s.experience = snap.Experience
	s.skillPoints = snap.SkillPoints
	s.toNext = ExperienceForLevel(s.level + 1)

	for k, st := range snap.Skills {
		if sk, ok := s.skills[k]; ok {
			sk.Level = st.Level
			sk.Value = st.Value
		}
	}
	for k, st := range snap.Achievements {
		if a, ok := s.achievements[k]; ok {
			a.Progress = st.Progress
			a.Completed = st.Completed
		}
	}
	for k, v := range snap.Stats {
		if _, ok := s.stats[k]; ok {
			s.stats[k] = v
		}
	}
	s.visited = make(map[string]struct{}, len(snap.Visited))
	for _, a := range snap.Visited {
		s.visited[a] = struct{}{}
	}

	s.logger.Info("📂 Прогресс загружен: уровень %d, %d XP", s.level, s.experience)
	s.notifySkills()
	return nil
}
