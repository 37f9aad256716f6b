package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
)

// ParseRecordID validates a form-supplied record id. Mutations with a
// missing or non-integer id are treated as no-ops rather than errors, so the
// boolean is the only failure signal.
func ParseRecordID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ThoughtsService exposes the dashboard operations over author thoughts.
// Handlers must have verified CSRF and session validity before calling any
// mutating method here.
type ThoughtsService struct {
	Store     store.Store
	Sanitizer *Sanitizer

	// Now is overridable for tests; defaults to time.Now().UTC.
	Now func() time.Time
}

func (s *ThoughtsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *ThoughtsService) List(ctx context.Context) ([]domain.Thought, error) {
	return s.Store.Thoughts().List(ctx)
}

// Add sanitizes and stores a new thought dated now.
func (s *ThoughtsService) Add(ctx context.Context, text string) error {
	cleaned := s.Sanitizer.Clean(text)
	if cleaned == "" {
		return validationErr("thought_text", "Thought text is required.")
	}

	_, err := s.Store.Thoughts().Create(ctx, domain.Thought{
		ThoughtDate: s.now(),
		ThoughtText: cleaned,
	})
	return err
}

// Update replaces the text of the thought identified by rawID. A missing or
// non-integer id is a no-op.
func (s *ThoughtsService) Update(ctx context.Context, rawID, text string) error {
	id, ok := ParseRecordID(rawID)
	if !ok {
		return nil
	}

	cleaned := s.Sanitizer.Clean(text)
	if cleaned == "" {
		return validationErr("edit_text", "Thought text is required.")
	}

	return s.Store.Thoughts().UpdateText(ctx, id, cleaned)
}

// Delete removes the thought identified by rawID; invalid ids are no-ops.
func (s *ThoughtsService) Delete(ctx context.Context, rawID string) error {
	id, ok := ParseRecordID(rawID)
	if !ok {
		return nil
	}
	return s.Store.Thoughts().Delete(ctx, id)
}

// FeedbackService exposes the dashboard operations over reader feedback.
// There is no creation path here: feedback arrives via the public site form.
type FeedbackService struct {
	Store store.Store
}

func (s *FeedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.Store.Feedbacks().List(ctx)
}

// MarkRead transitions pending feedback to read; invalid ids are no-ops.
func (s *FeedbackService) MarkRead(ctx context.Context, rawID string) error {
	id, ok := ParseRecordID(rawID)
	if !ok {
		return nil
	}
	return s.Store.Feedbacks().MarkRead(ctx, id)
}

// Delete removes feedback; invalid ids are no-ops.
func (s *FeedbackService) Delete(ctx context.Context, rawID string) error {
	id, ok := ParseRecordID(rawID)
	if !ok {
		return nil
	}
	return s.Store.Feedbacks().Delete(ctx, id)
}
