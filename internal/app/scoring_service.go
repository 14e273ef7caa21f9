package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/scoring"
)

// ScoringService persists score and tags for contacts. Ingestion code calls it right after a
// contact is created; it does not depend on the nurturing cycle.
type ScoringService struct {
	contacts contact.Repository
	logger   *logrus.Entry
}

func NewScoringService(cr contact.Repository, logger *logrus.Entry) *ScoringService {
	return &ScoringService{
		contacts: cr,
		logger:   logger.WithField("component", "scoring_service"),
	}
}

// Rescore recomputes and stores the score and tags of one contact.
func (s *ScoringService) Rescore(ctx context.Context, contactID uuid.UUID) (int, []string, error) {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to load contact %s: %w", contactID, err)
	}

	score, tags := scoring.ScoreAndTag(c)
	if err := s.contacts.UpdateScoreAndTags(ctx, contactID, score, tags); err != nil {
		return 0, nil, fmt.Errorf("failed to store score for contact %s: %w", contactID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"contact_id": contactID,
		"old_score":  c.Score,
		"score":      score,
		"tags":       tags,
	}).Info("Contact rescored")
	return score, tags, nil
}
