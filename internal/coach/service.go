package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/dislike-coach/internal/ai"
	"github.com/Vovarama1992/dislike-coach/internal/config"
	"github.com/Vovarama1992/dislike-coach/internal/logger"
)

type service struct {
	ai         ai.AI
	log        *slog.Logger
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*service)

// WithRetryDelay sets the pause before the strict pass. Zero retries at once.
func WithRetryDelay(d time.Duration) Option {
	return func(s *service) { s.retryDelay = d }
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *service) { s.sleep = fn }
}

func NewService(aiClient ai.AI, log *slog.Logger, opts ...Option) Service {
	s := &service{
		ai:         aiClient,
		log:        log.With("component", "coach"),
		retryDelay: config.DefaultRetryDelay,
		sleep:      sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type stage string

const (
	stageModel    stage = "model"
	stageRepair   stage = "repair"
	stageValidate stage = "validate"
)

// passResult is the outcome of one prompt -> model -> repair -> validate pass.
type passResult struct {
	result *AnalysisResult
	stage  stage
	err    error
}

// retryable reports whether a stricter instruction can fix the failure.
func (p passResult) retryable() bool {
	return p.err != nil && p.stage != stageModel
}

func (s *service) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	log := s.log.With("analysis_id", uuid.NewString())
	log.InfoContext(ctx, "analysis started",
		"messages", len(req.Messages),
		"chat_id", deref(req.ChatID),
		"model", deref(req.Model),
	)

	prompt := BuildPrompt(req.Messages, req.UserComment, req.TaskHint)

	first := s.runPass(ctx, log, LenientInstruction, prompt)
	if first.err == nil {
		log.InfoContext(ctx, "analysis succeeded", "passes", 1)
		return first.result, nil
	}
	if !first.retryable() {
		log.ErrorContext(ctx, "model call failed", "error", first.err)
		return nil, first.err
	}

	log.WarnContext(ctx, "first pass failed, retrying with strict instruction",
		"stage", first.stage,
		"error", first.err,
		"delay", s.retryDelay,
	)
	if s.retryDelay > 0 {
		if err := s.sleep(ctx, s.retryDelay); err != nil {
			return nil, err
		}
	}

	second := s.runPass(ctx, log, StrictInstruction, prompt)
	if second.err == nil {
		log.InfoContext(ctx, "analysis succeeded", "passes", 2)
		return second.result, nil
	}
	if !second.retryable() {
		log.ErrorContext(ctx, "model call failed on strict pass", "error", second.err)
		return nil, second.err
	}

	log.ErrorContext(ctx, "analysis failed after strict retry", "stage", second.stage, "error", second.err)
	return nil, fmt.Errorf("%w after strict retry: %w (first pass: %v)", ErrAnalysisFailed, second.err, first.err)
}

func (s *service) runPass(ctx context.Context, log *slog.Logger, instruction, prompt string) passResult {
	raw, err := s.ai.GetReply(ctx, instruction, prompt)
	if err != nil {
		return passResult{stage: stageModel, err: err}
	}

	v, err := Repair(raw)
	if err != nil {
		log.DebugContext(ctx, "unparsable model output", "preview", logger.Truncate(raw, 200))
		return passResult{stage: stageRepair, err: err}
	}

	res, err := ParseResult(v)
	if err != nil {
		var ove *OutputValidationError
		if errors.As(err, &ove) {
			log.DebugContext(ctx, "model output failed validation", "field", ove.Field)
		}
		return passResult{stage: stageValidate, err: err}
	}
	return passResult{result: res}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
