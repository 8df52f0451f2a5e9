package services

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"

	"quest-rewards-system/models"
)

// XP reward bounds for user-created quests (before golden doubling).
const (
	MinQuestXP = 1
	MaxQuestXP = 20
)

// QuestService owns the quest catalog. Quests are append-only: created by
// the admin seed or by users, never mutated or deleted afterwards.
type QuestService struct {
	clock  Clock
	mirror Mirror

	mu     sync.RWMutex
	quests map[string]*models.Quest
	order  []string
}

func NewQuestService(clock Clock, mirror Mirror) *QuestService {
	return &QuestService{
		clock:  clock,
		mirror: mirror,
		quests: make(map[string]*models.Quest),
	}
}

// Create validates and stores a new quest. Golden quests store a doubled
// XP reward — the doubling happens here, once, and is never reapplied on
// completion.
func (s *QuestService) Create(creatorID, title, description string, xpReward int, questType models.QuestType, isGolden bool) (*models.Quest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Errorf(ErrInvalidInput, "title cannot be empty")
	}
	if xpReward < MinQuestXP || xpReward > MaxQuestXP {
		return nil, Errorf(ErrInvalidInput, "xp_reward must be between %d and %d", MinQuestXP, MaxQuestXP)
	}
	if !questType.Valid() {
		return nil, Errorf(ErrInvalidInput, "unknown quest_type %q", questType)
	}

	if isGolden {
		xpReward *= 2
	}

	quest := &models.Quest{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        strings.TrimSpace(description),
		XPReward:           xpReward,
		QuestType:          questType,
		VerificationMethod: models.VerificationManual,
		CreatedBy:          creatorID,
		IsGolden:           isGolden,
		CreatedAt:          s.clock.Now().UTC(),
	}
	s.insert(quest)

	log.WithFields(log.Fields{
		"quest_id":  quest.ID,
		"creator":   creatorID,
		"xp_reward": quest.XPReward,
		"golden":    isGolden,
	}).Info("quest created")
	return quest, nil
}

// Get returns the quest or ErrNotFound.
func (s *QuestService) Get(questID string) (*models.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quest, ok := s.quests[questID]
	if !ok {
		return nil, Errorf(ErrNotFound, "quest %s not found", questID)
	}
	return quest, nil
}

// List returns quests in catalog insertion order, optionally filtered by
// type. Pure read.
func (s *QuestService) List(typeFilter models.QuestType) []*models.Quest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Quest, 0, len(s.order))
	for _, id := range s.order {
		quest := s.quests[id]
		if typeFilter != "" && quest.QuestType != typeFilter {
			continue
		}
		out = append(out, quest)
	}
	return out
}

type seedQuest struct {
	title        string
	description  string
	xpReward     int
	questType    models.QuestType
	verification models.VerificationMethod
	program      string
}

var defaultQuests = []seedQuest{
	{
		title:        "Plant a Tree",
		description:  "Plant a tree in your community or backyard to help the environment!",
		xpReward:     5,
		questType:    models.QuestTypeClimate,
		verification: models.VerificationManual,
		program:      "eco_hero",
	},
	{
		title:        "Reduce Plastic Use",
		description:  "Use a reusable water bottle instead of plastic bottles for a day",
		xpReward:     3,
		questType:    models.QuestTypeClimate,
		verification: models.VerificationManual,
	},
	{
		title:        "Recycle Electronics",
		description:  "Properly recycle old electronics or donate them",
		xpReward:     4,
		questType:    models.QuestTypeClimate,
		verification: models.VerificationManual,
	},
	{
		title:        "Help a Neighbor",
		description:  "Offer help to a neighbor or community member",
		xpReward:     3,
		questType:    models.QuestTypeSocial,
		verification: models.VerificationManual,
	},
	{
		title:        "Study for 2 Hours",
		description:  "Dedicate 2 hours to studying or learning something new",
		xpReward:     4,
		questType:    models.QuestTypePersonal,
		verification: models.VerificationManual,
	},
}

// SeedDefaults populates the built-in catalog. It only runs when the catalog
// is empty, so restarts never overwrite anything. Seeded IDs are stable
// slugs of the titles.
func (s *QuestService) SeedDefaults() {
	s.mu.Lock()
	if len(s.quests) > 0 {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now().UTC()
	seeded := make([]*models.Quest, 0, len(defaultQuests))
	for _, d := range defaultQuests {
		quest := &models.Quest{
			ID:                 slug.Make(d.title),
			Title:              d.title,
			Description:        d.description,
			XPReward:           d.xpReward,
			QuestType:          d.questType,
			VerificationMethod: d.verification,
			CreatedBy:          "admin",
			Program:            d.program,
			CreatedAt:          now,
		}
		s.quests[quest.ID] = quest
		s.order = append(s.order, quest.ID)
		seeded = append(seeded, quest)
	}
	s.mu.Unlock()

	for _, quest := range seeded {
		s.mirror.UpsertQuest(quest)
	}
	log.WithField("count", len(seeded)).Info("default quests seeded")
}

func (s *QuestService) insert(quest *models.Quest) {
	s.mu.Lock()
	s.quests[quest.ID] = quest
	s.order = append(s.order, quest.ID)
	s.mu.Unlock()
	s.mirror.UpsertQuest(quest)
}
