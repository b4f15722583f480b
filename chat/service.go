package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fabfab/cvchat/document"
	"github.com/fabfab/cvchat/language"
	"github.com/fabfab/cvchat/llm"
	"github.com/fabfab/cvchat/prompt"
)

type Config struct {
	Model       string
	Temperature float64
	// Timeout bounds one completion call; zero leaves it to the transport.
	Timeout time.Duration
}

type Service struct {
	doc       document.Document
	templates prompt.Templates
	llm       llm.Client
	cfg       Config
	logger    *log.Logger
	now       func() time.Time
}

func NewService(doc document.Document, templates prompt.Templates, llmClient llm.Client, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if templates == nil {
		templates = prompt.Default()
	}

	return &Service{
		doc:       doc,
		templates: templates,
		llm:       llmClient,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// DocumentLoaded reports whether the service has CV text to answer from.
func (s *Service) DocumentLoaded() bool {
	return s.doc.Loaded()
}

// Ask answers one question from the CV. It never returns a bare error: a
// failed call comes back as a Result carrying a Failure and the time spent.
func (s *Service) Ask(ctx context.Context, req Request) Result {
	start := s.now()
	result := s.ask(ctx, req)

	result.ProcessingTime = s.now().Sub(start)
	if result.ProcessingTime < 0 {
		result.ProcessingTime = 0
	}
	return result
}

func (s *Service) ask(ctx context.Context, req Request) Result {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Result{Failure: invalidRequest("message cannot be empty")}
	}

	temperature := s.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if !(temperature >= 0 && temperature <= 1) {
		return Result{Failure: invalidRequest("temperature must be within [0, 1], got %v", temperature)}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.cfg.Model
	}

	if s.llm == nil {
		return Result{Failure: &Failure{Kind: FailureCompletion, Message: "Error generating response: llm client is not configured"}}
	}

	lang := language.Detect(message)
	messages := BuildMessages(s.templates.For(lang), s.doc.Text, req.Message)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	raw, err := s.llm.Generate(ctx, llm.Request{
		Model:       model,
		Temperature: temperature,
		Messages:    messages,
	})
	if err != nil {
		s.logger.Printf("llm generate (model %s): %v", model, err)
		return Result{
			Language: lang,
			Failure: &Failure{
				Kind:    FailureCompletion,
				Message: fmt.Sprintf("Error generating response: %v", err),
				Err:     err,
			},
		}
	}

	thinking, answer, _ := SplitThinking(raw)
	return Result{Reply: answer, Thinking: thinking, Language: lang}
}

// BuildMessages lays out the fixed message sequence: instructions, the CV
// text, then the question.
func BuildMessages(instruction, documentText, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleSystem, Content: prompt.DocumentMessage(documentText)},
		{Role: llm.RoleUser, Content: question},
	}
}
