// Package profile keeps the user's note statistics and achievements.
package profile

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"zettel/internal/logger"
	"zettel/internal/plugin/store"
)

const (
	UserStoreFile         = "user.json"
	UserStatsKey          = "userStats"
	AchievementsStoreFile = "achievements.json"
	AchievementsKey       = "achievements"

	DefaultUsername       = "New User"
	DefaultProfilePicture = "https://img.daisyui.com/images/stock/photo-1534528741775-53994a69daeb.webp"

	dateLayout = "2006-01-02"
)

type UserStats struct {
	NumberOfNotes  int    `json:"numberOfNotes"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	DaysLogged     int    `json:"daysLogged"`
	LastLogged     string `json:"lastLogged,omitempty"`
}

func DefaultStats() UserStats {
	return UserStats{
		Username:       DefaultUsername,
		ProfilePicture: DefaultProfilePicture,
	}
}

// Service reads and updates the profile stores. Every mutation is saved immediately.
type Service struct {
	mu           sync.Mutex
	user         *store.Store
	achievements *store.Store
	logger       logger.Logger
}

func NewService(stores *store.Plugin, log logger.Logger) (*Service, error) {
	user, err := stores.Load(UserStoreFile, store.Options{})
	if err != nil {
		return nil, err
	}
	achievements, err := stores.Load(AchievementsStoreFile, store.Options{})
	if err != nil {
		return nil, err
	}
	return &Service{user: user, achievements: achievements, logger: log}, nil
}

// Init seeds missing stats and achievements with the defaults.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.user.Has(UserStatsKey) {
		if err := s.saveStats(DefaultStats()); err != nil {
			return err
		}
		s.logger.Info("Profile", "user stats initialized", nil)
	}

	var list []Achievement
	if _, err := s.achievements.Get(AchievementsKey, &list); err != nil {
		return err
	}
	if len(list) == 0 {
		if err := s.saveAchievements(DefaultAchievements()); err != nil {
			return err
		}
		s.logger.Info("Profile", "achievements initialized", nil)
	}
	return nil
}

func (s *Service) Stats() (UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStats()
}

func (s *Service) SetUsername(name string) (UserStats, error) {
	if name == "" {
		return UserStats{}, errors.New("username is required")
	}
	return s.updateStats(func(st *UserStats) { st.Username = name })
}

func (s *Service) IncrementNotes() (UserStats, error) {
	return s.updateStats(func(st *UserStats) { st.NumberOfNotes++ })
}

// RecordLogin counts now's calendar day once.
func (s *Service) RecordLogin(now time.Time) (UserStats, error) {
	day := now.Format(dateLayout)
	return s.updateStats(func(st *UserStats) {
		if st.LastLogged == day {
			return
		}
		st.DaysLogged++
		st.LastLogged = day
	})
}

func (s *Service) updateStats(fn func(*UserStats)) (UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadStats()
	if err != nil {
		return UserStats{}, err
	}
	fn(&st)
	if err := s.saveStats(st); err != nil {
		return UserStats{}, err
	}
	return st, nil
}

func (s *Service) loadStats() (UserStats, error) {
	st := DefaultStats()
	if _, err := s.user.Get(UserStatsKey, &st); err != nil {
		return UserStats{}, err
	}
	return st, nil
}

func (s *Service) saveStats(st UserStats) error {
	if err := s.user.Set(UserStatsKey, st); err != nil {
		return err
	}
	return errors.Wrap(s.user.Save(), "save user stats")
}
