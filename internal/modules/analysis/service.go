package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

// ErrEmptyPortfolio is returned when the user holds nothing to analyse
var ErrEmptyPortfolio = errors.New("portfolio is empty or has no assets")

var subjects = map[domain.Language]string{
	domain.LanguagePT: "Sua Análise de Portfólio - Invest-AI",
	domain.LanguageEN: "Your Portfolio Analysis - Invest-AI",
}

// Subject returns the email subject for lang
func Subject(lang domain.Language) string {
	if s, ok := subjects[lang]; ok {
		return s
	}
	return subjects[domain.LanguagePT]
}

// HoldingsProvider values a user's open positions
type HoldingsProvider interface {
	HoldingValues(ctx context.Context, userID int64) ([]domain.HoldingValue, error)
}

// Service runs the analysis flow: value holdings, generate narrative,
// persist it, then archive and email it. Archive and email failures are
// logged and never undo the stored analysis.
type Service struct {
	holdings  HoldingsProvider
	generator domain.NarrativeGenerator
	repo      *Repository
	archiver  domain.Archiver
	notifier  domain.Notifier
	log       zerolog.Logger
}

// NewService creates a new analysis service
func NewService(
	holdings HoldingsProvider,
	generator domain.NarrativeGenerator,
	repo *Repository,
	archiver domain.Archiver,
	notifier domain.Notifier,
	log zerolog.Logger,
) *Service {
	return &Service{
		holdings:  holdings,
		generator: generator,
		repo:      repo,
		archiver:  archiver,
		notifier:  notifier,
		log:       log.With().Str("service", "analysis").Logger(),
	}
}

// Generate produces, stores and delivers a new analysis for user
func (s *Service) Generate(ctx context.Context, user *domain.User, lang domain.Language) (*domain.Analysis, error) {
	holdings, err := s.holdings.HoldingValues(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to value portfolio: %w", err)
	}
	if len(holdings) == 0 {
		return nil, ErrEmptyPortfolio
	}

	text := s.generator.Generate(ctx, holdings, lang)

	a := &domain.Analysis{
		UserID:   user.ID,
		Content:  text,
		Language: lang,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.archiver.Archive(ctx, *a); err != nil {
		s.log.Warn().Err(err).Str("uuid", a.UUID).Msg("Failed to archive analysis")
	}
	if err := s.notifier.Send(ctx, user.Email, Subject(lang), text); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to email analysis")
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Int("holdings", len(holdings)).
		Str("language", string(lang)).
		Msg("Analysis generated")
	return a, nil
}

// History returns the user's previous analyses, newest first
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]domain.Analysis, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
