package profile

import (
	"time"

	"github.com/pkg/errors"
)

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      string `json:"earned,omitempty"`
	Color       string `json:"color"`
	Completed   bool   `json:"completed"`
}

type rule struct {
	notes int
	days  int
}

var rules = map[string]rule{
	"a1": {notes: 1},
	"a2": {notes: 5},
	"a3": {notes: 100},
	"a4": {days: 1},
	"a5": {days: 7},
}

func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: "a1", Name: "Note Beginnings", Description: "Create Your First Note", Icon: "brightness_7", Color: "warning"},
		{ID: "a2", Name: "Now You're Getting It", Description: "Create 5 Notes", Icon: "psychology", Color: "primary"},
		{ID: "a3", Name: "Now You're Thinking With Portals", Description: "Create 100 Notes", Icon: "local_fire_department", Color: "error"},
		{ID: "a4", Name: "Welcome!", Description: "Log Your First Day", Icon: "emoji_events", Color: "neutral"},
		{ID: "a5", Name: "You're A Regular!", Description: "Log 7 Days", Icon: "auto_awesome", Color: "neutral"},
	}
}

func (s *Service) Achievements() ([]Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAchievements()
}

// Complete marks id as earned on now's date. Completing an achievement twice
// keeps the first date; an unknown id leaves the list unchanged.
func (s *Service) Complete(id string, now time.Time) ([]Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadAchievements()
	if err != nil {
		return nil, err
	}
	changed := complete(list, id, now)
	if !changed {
		return list, nil
	}
	if err := s.saveAchievements(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Evaluate completes every achievement whose threshold the current stats meet
// and returns the ids completed by this call.
func (s *Service) Evaluate(now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadStats()
	if err != nil {
		return nil, err
	}
	list, err := s.loadAchievements()
	if err != nil {
		return nil, err
	}

	var earned []string
	for _, a := range list {
		r, ok := rules[a.ID]
		if !ok || a.Completed {
			continue
		}
		if r.notes > 0 && st.NumberOfNotes < r.notes {
			continue
		}
		if r.days > 0 && st.DaysLogged < r.days {
			continue
		}
		if complete(list, a.ID, now) {
			earned = append(earned, a.ID)
		}
	}

	if len(earned) == 0 {
		return nil, nil
	}
	if err := s.saveAchievements(list); err != nil {
		return nil, err
	}
	s.logger.Info("Profile", "achievements earned", map[string]interface{}{"ids": earned})
	return earned, nil
}

func complete(list []Achievement, id string, now time.Time) bool {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Completed {
			return false
		}
		list[i].Completed = true
		list[i].Earned = now.Format(dateLayout)
		return true
	}
	return false
}

func (s *Service) loadAchievements() ([]Achievement, error) {
	var list []Achievement
	if _, err := s.achievements.Get(AchievementsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) saveAchievements(list []Achievement) error {
	if err := s.achievements.Set(AchievementsKey, list); err != nil {
		return err
	}
	return errors.Wrap(s.achievements.Save(), "save achievements")
}
