package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/locale"
	"loan4farm-api/internal/model"
)

// Fixed assistant replies
const (
	ReplySimulation = "Simulation Mode: API Key missing."
	ReplyConnection = "Connection error."
	ReplyEmpty      = "I didn't catch that."
)

// AssistantService answers short farmer questions from the voice widget
type AssistantService struct {
	generator TextGenerator
	logger    *logrus.Logger
}

func NewAssistantService(generator TextGenerator, logger *logrus.Logger) *AssistantService {
	return &AssistantService{generator: generator, logger: logger}
}

// Reply never fails; problems are turned into the fixed replies
func (s *AssistantService) Reply(ctx context.Context, transcript, language string) model.AssistantReply {
	reply := model.AssistantReply{Locale: locale.For(language)}

	if s.generator == nil {
		reply.Reply = ReplySimulation
		return reply
	}

	prompt := fmt.Sprintf(`You are an expert Indian agriculture assistant for farmers.
Answer briefly (max 2 sentences) in the language with locale %s.
Farmer says: %q`, reply.Locale, strings.TrimSpace(transcript))

	text, err := s.generator.GenerateText(ctx, prompt, false)
	switch {
	case errors.Is(err, ErrEmptyResponse):
		reply.Reply = ReplyEmpty
	case err != nil:
		s.logger.WithError(err).Warn("Assistant call failed")
		reply.Reply = ReplyConnection
	case strings.TrimSpace(text) == "":
		reply.Reply = ReplyEmpty
	default:
		reply.Reply = strings.TrimSpace(text)
	}
	return reply
}
