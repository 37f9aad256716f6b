package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
)

// utf8BOM makes spreadsheet software detect the export as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const csvDateLayout = "2006-01-02 15:04:05"

// NewsletterService exposes the dashboard operations over newsletter
// subscribers: list, delete and CSV export. Signups happen on the public
// site and are out of scope here.
type NewsletterService struct {
	Store store.Store
}

func (s *NewsletterService) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.Store.Subscribers().List(ctx)
}

// Delete removes a subscriber; invalid ids are no-ops.
func (s *NewsletterService) Delete(ctx context.Context, rawID string) error {
	id, ok := ParseRecordID(rawID)
	if !ok {
		return nil
	}
	return s.Store.Subscribers().Delete(ctx, id)
}

// ExportCSV produces the subscriber list as a UTF-8 (with BOM) CSV file with
// a header row, ordered by subscription date descending. An empty subscriber
// list refuses the export rather than producing an empty file.
func (s *NewsletterService) ExportCSV(ctx context.Context) ([]byte, error) {
	subscribers, err := s.Store.Subscribers().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		return nil, ErrNoSubscribers
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Email", "Date Subscribed"}); err != nil {
		return nil, err
	}
	for _, sub := range subscribers {
		record := []string{
			strconv.FormatInt(sub.ID, 10),
			sub.Email,
			sub.DateSubscribed.Format(csvDateLayout),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
