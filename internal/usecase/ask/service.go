// Package ask relays free-text questions to the remote API and turns the
// answer into display text.
package ask

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/payload"
)

const unknownError = "Unknown error"

// Answer is the outcome of one question.
type Answer struct {
	Text   string
	Failed bool
	// Invalid is set when the question was rejected before any request was sent.
	Invalid bool
}

// Display renders the answer the way it is shown to the asker.
func (a Answer) Display() string {
	return "Response: " + a.Text
}

// Service relays questions.
type Service struct {
	gateway Gateway
	logger  *zap.Logger
}

// New creates an ask service.
func New(gw Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gw, logger: logger}
}

// Ask forwards question and never fails: errors become answer text.
func (s *Service) Ask(ctx context.Context, question string) Answer {
	p := payload.Ask{Question: question}
	if err := p.Validate(); err != nil {
		return Answer{Text: errorText(err.Error()), Failed: true, Invalid: true}
	}

	resp, err := s.gateway.Ask(ctx, p)
	switch {
	case err != nil:
		s.logger.Warn("question not answered", zap.Error(err))
		if errors.Is(err, domain.ErrInvalidPayload) {
			return Answer{Text: errorText(err.Error()), Failed: true, Invalid: true}
		}
		return Answer{Text: errorText(unknownError), Failed: true}
	case resp.Response != nil:
		return Answer{Text: *resp.Response}
	case resp.Error != nil:
		s.logger.Warn("indexing API returned an error", zap.String("error", *resp.Error))
		return Answer{Text: errorText(*resp.Error), Failed: true}
	default:
		return Answer{Text: errorText(unknownError), Failed: true}
	}
}

func errorText(msg string) string {
	return "Error occurred: " + msg
}
