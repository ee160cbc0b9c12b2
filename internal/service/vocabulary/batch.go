package vocabulary

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/generation"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// Batch entry outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// BatchEntry reports what happened to one headword of a batch.
type BatchEntry struct {
	Headword string
	Outcome  string
	Item     *domain.VocabularyItem
	Err      error
}

// BatchResult collects the per-headword outcomes of AddBatch in input order.
type BatchResult struct {
	Entries []BatchEntry
}

// Count returns how many entries ended with outcome.
func (r *BatchResult) Count(outcome string) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// AddBatch implements Service.AddBatch. Once started, the batch runs to the
// end even if the caller's context is canceled.
func (s *serviceImpl) AddBatch(ctx context.Context, headwords []string) *BatchResult {
	ctx = context.WithoutCancel(ctx)
	log := s.log(ctx)
	result := &BatchResult{Entries: make([]BatchEntry, 0, len(headwords))}

	calls := 0
	for _, headword := range headwords {
		entry := BatchEntry{Headword: headword}

		if strings.TrimSpace(headword) == "" {
			entry.Outcome = OutcomeFailed
			entry.Err = generation.ErrEmptyHeadword
			result.Entries = append(result.Entries, entry)
			continue
		}

		if calls > 0 {
			s.pace(s.pacingDelay)
		}
		calls++

		item, err := s.Create(ctx, headword)
		switch {
		case err == nil:
			entry.Outcome = OutcomeCreated
			entry.Item = item
		case store.IsDuplicateError(err):
			entry.Outcome = OutcomeDuplicate
			entry.Err = err
		default:
			entry.Outcome = OutcomeFailed
			entry.Err = err
		}
		result.Entries = append(result.Entries, entry)

		if errors.Is(err, ErrGeneratorUnavailable) {
			log.WarnContext(ctx, "no content generator, abandoning batch", slog.Int("remaining", len(headwords)-len(result.Entries)))
			for _, rest := range headwords[len(result.Entries):] {
				result.Entries = append(result.Entries, BatchEntry{Headword: rest, Outcome: OutcomeFailed, Err: err})
			}
			break
		}
	}

	log.InfoContext(ctx, "batch add finished",
		slog.Int("total", len(headwords)),
		slog.Int("created", result.Count(OutcomeCreated)),
		slog.Int("duplicates", result.Count(OutcomeDuplicate)),
		slog.Int("failed", result.Count(OutcomeFailed)))
	return result
}

// BackfillResult summarizes a hint backfill run.
type BackfillResult struct {
	Candidates int
	Updated    int
	Skipped    int
	Failed     int
}

// BackfillHints implements Service.BackfillHints
//
// Once started, the run is not cancelled by ctx. Items already updated stay
// updated when a later item fails.
func (s *serviceImpl) BackfillHints(ctx context.Context) (*BackfillResult, error) {
	if s.generator == nil {
		return nil, NewServiceError("backfill_hints", "cannot generate hints", ErrGeneratorUnavailable)
	}

	select {
	case s.backfill <- struct{}{}:
		defer func() { <-s.backfill }()
	default:
		return nil, ErrBackfillInProgress
	}

	ctx = context.WithoutCancel(ctx)
	log := s.log(ctx)

	var candidates []*domain.VocabularyItem
	for _, item := range s.repo.Snapshot() {
		if len(item.Hints) == 0 {
			candidates = append(candidates, item)
		}
	}

	result := &BackfillResult{Candidates: len(candidates)}
	log.InfoContext(ctx, "hint backfill started", slog.Int("candidates", len(candidates)))

	for i, item := range candidates {
		if i > 0 {
			s.pace(s.pacingDelay)
		}

		content, err := s.generator.Generate(ctx, item.SourceText)
		if err != nil {
			result.Failed++
			log.WarnContext(ctx, "hint generation failed",
				slog.String("item_id", item.ID.String()),
				slog.String("error", err.Error()))
			continue
		}

		hints := make([]string, 0, domain.MaxHints)
		for _, hint := range content.Hints {
			if hint = strings.TrimSpace(hint); hint != "" && len(hints) < domain.MaxHints {
				hints = append(hints, hint)
			}
		}
		if len(hints) == 0 {
			result.Skipped++
			continue
		}

		if _, err := s.repo.Update(ctx, item.ID, store.ItemPatch{Hints: &hints}); err != nil {
			// The item may have been deleted while the batch was running.
			result.Failed++
			log.WarnContext(ctx, "failed to store hints",
				slog.String("item_id", item.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		result.Updated++
	}

	log.InfoContext(ctx, "hint backfill finished",
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}
