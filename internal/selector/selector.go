// Package selector derives read-only views from a snapshot of the
// vocabulary: filtered list views and the quiz due-queue. It never mutates
// the items it is given.
package selector

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/scry-lexicon/internal/domain"
	"github.com/phrazzld/scry-lexicon/internal/domain/srs"
)

var (
	// ErrInvalidView is returned when a view name is not recognized.
	ErrInvalidView = errors.New("invalid list view")

	// ErrInvalidQueueOrder is returned when a queue order name is not recognized.
	ErrInvalidQueueOrder = errors.New("invalid queue order")
)

// View selects which items a list shows.
type View string

// Available list views.
const (
	ViewAll        View = "all"
	ViewActive     View = "active"
	ViewReviewNow  View = "review_now"
	ViewCheckLater View = "check_later"
	ViewArchived   View = "archived"
)

// ParseView converts a view name into a View. An empty name means ViewAll.
func ParseView(raw string) (View, error) {
	switch v := View(raw); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewActive, ViewReviewNow, ViewCheckLater, ViewArchived:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidView, raw)
	}
}

func (v View) match(item *domain.VocabularyItem) bool {
	switch v {
	case ViewActive:
		return item.IsActive
	case ViewReviewNow:
		return item.Status == domain.StatusReviewNow
	case ViewCheckLater:
		return item.Status == domain.StatusCheckLater
	case ViewArchived:
		return item.Status == domain.StatusArchived
	default:
		return true
	}
}

// Filter is the list-view predicate: a view plus the optional review-only toggle.
type Filter struct {
	View View
	// ReviewOnly further restricts the list to items with review on that are not archived.
	ReviewOnly bool
}

// Match reports whether item belongs in the filtered list.
func (f Filter) Match(item *domain.VocabularyItem) bool {
	if !f.View.match(item) {
		return false
	}
	if f.ReviewOnly && (!item.Review || item.Status == domain.StatusArchived) {
		return false
	}
	return true
}

// List returns the items matching f, in the order given.
func List(items []*domain.VocabularyItem, f Filter) []*domain.VocabularyItem {
	out := make([]*domain.VocabularyItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// QueueOrder decides how the due-queue is ordered.
type QueueOrder string

// Available queue orders.
const (
	// OrderInsertion keeps repository insertion order.
	OrderInsertion QueueOrder = "insertion"
	// OrderDue sorts by nextReviewAt, oldest first, ties in insertion order.
	OrderDue QueueOrder = "due"
)

// ParseQueueOrder converts a name into a QueueOrder. An empty name means OrderInsertion.
func ParseQueueOrder(raw string) (QueueOrder, error) {
	switch o := QueueOrder(raw); o {
	case "":
		return OrderInsertion, nil
	case OrderInsertion, OrderDue:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidQueueOrder, raw)
	}
}

// InQueue reports whether item belongs in the due-queue at now.
func InQueue(item *domain.VocabularyItem, now time.Time) bool {
	return item.Review &&
		item.Status == domain.StatusReviewNow &&
		srs.IsDue(item.Mastery, now)
}

// DueQueue computes the quiz due-queue from scratch.
func DueQueue(items []*domain.VocabularyItem, now time.Time, order QueueOrder) []*domain.VocabularyItem {
	queue := make([]*domain.VocabularyItem, 0, len(items))
	for _, item := range items {
		if InQueue(item, now) {
			queue = append(queue, item)
		}
	}

	if order == OrderDue {
		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].Mastery.NextReviewAt.Before(queue[j].Mastery.NextReviewAt)
		})
	}

	return queue
}

// ClampPosition returns pos if it indexes a queue of the given length and 0
// otherwise. An empty queue also yields 0.
func ClampPosition(pos, length int) int {
	if pos < 0 || pos >= length {
		return 0
	}
	return pos
}
