// Package services contains application services for the portal CLI.
// This file defines the diet-advice service: consultation questions against
// an analyzed report, the general chatbot, and the locally persisted
// conversation history.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/client/repositories/chat"
	"github.com/dharitri-health/portal-cli/internal/common"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

type DietService struct {
	client  api.Client
	history chat.Repository
	logger  logging.Logger

	onAuthError func(context.Context)
}

func NewDietService(client api.Client, history chat.Repository, logger logging.Logger) *DietService {
	return &DietService{client: client, history: history, logger: logger}
}

// SetAuthErrorHandler installs the 401 escalation target.
func (s *DietService) SetAuthErrorHandler(fn func(context.Context)) {
	s.onAuthError = fn
}

// Ask sends a diet question, optionally with report text as context, and
// records the exchange in the local history. A history write failure is
// logged but does not fail the consultation.
func (s *DietService) Ask(ctx context.Context, question, reportText string) (string, error) {
	answer, err := s.client.DietConsult(ctx, models.DietQuestion{Question: question, ReportText: reportText})
	if err != nil {
		s.escalateAuth(ctx, err)
		return "", fmt.Errorf("diet consultation: %w", err)
	}

	s.record(ctx, chat.KindDiet, question, answer.Answer)
	return answer.Answer, nil
}

// Chat sends a free-form query to the portal chatbot.
func (s *DietService) Chat(ctx context.Context, query string) (string, error) {
	response, err := s.client.Chat(ctx, query)
	if err != nil {
		s.escalateAuth(ctx, err)
		return "", fmt.Errorf("chatbot: %w", err)
	}

	s.record(ctx, chat.KindChatbot, query, response)
	return response, nil
}

// History returns up to limit past exchanges, newest first.
func (s *DietService) History(ctx context.Context, limit int) ([]chat.Message, error) {
	messages, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}
	return messages, nil
}

// ClearHistory wipes the stored conversation. Wired to session logout so
// answers derived from one user's reports never leak into the next session.
func (s *DietService) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}

func (s *DietService) record(ctx context.Context, kind, question, answer string) {
	err := s.history.Add(ctx, &chat.Message{Kind: kind, Question: question, Answer: answer})
	if err != nil {
		s.logger.Warn(ctx, "could not save chat history", "error", err)
	}
}

func (s *DietService) escalateAuth(ctx context.Context, err error) {
	if errors.Is(err, common.ErrUnauthorized) && s.onAuthError != nil {
		s.onAuthError(ctx)
	}
}
