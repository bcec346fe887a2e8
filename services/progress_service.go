// services/progress_service.go - Achievement mutations and views
package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"discjourney/progression"

	"go.uber.org/zap"
)

// SnapshotLoader reads a stored snapshot. *AchievementStore implements it.
type SnapshotLoader interface {
	Load(ctx context.Context, userID uint) (progression.Snapshot, error)
}

// ProgressService runs the progression engine for one user at a time.
// Mutations for the same user are serialised inside this process; there
// is no coordination across processes, so two servers writing the same
// user's document race at document granularity.
type ProgressService struct {
	catalog *progression.Catalog
	store   SnapshotLoader
	queue   *WriteQueue
	hub     *EventHub
	clock   progression.Clock
	log     *zap.Logger

	locks userLocks
}

func NewProgressService(catalog *progression.Catalog, store SnapshotLoader, queue *WriteQueue, hub *EventHub, clock progression.Clock, log *zap.Logger) *ProgressService {
	return &ProgressService{
		catalog: catalog,
		store:   store,
		queue:   queue,
		hub:     hub,
		clock:   clock,
		log:     log,
		locks:   userLocks{held: make(map[uint]*userLock)},
	}
}

// Catalog exposes the catalog the service evaluates against.
func (s *ProgressService) Catalog() *progression.Catalog {
	return s.catalog
}

// MutationOutcome is a mutation result plus the recomputed summary.
type MutationOutcome struct {
	Result  progression.Result
	Summary progression.Summary
}

// Toggle flips a toggle achievement for the user.
func (s *ProgressService) Toggle(ctx context.Context, userID uint, tab progression.Tab, id string) (*MutationOutcome, error) {
	return s.mutate(ctx, userID, func(snap progression.Snapshot, now time.Time) progression.Result {
		return progression.ApplyToggle(s.catalog, snap, tab, id, now)
	})
}

// Increment adds delta to a counter achievement for the user.
func (s *ProgressService) Increment(ctx context.Context, userID uint, tab progression.Tab, id string, delta int) (*MutationOutcome, error) {
	return s.mutate(ctx, userID, func(snap progression.Snapshot, now time.Time) progression.Result {
		return progression.ApplyIncrement(s.catalog, snap, tab, id, delta, now)
	})
}

func (s *ProgressService) mutate(ctx context.Context, userID uint, apply func(progression.Snapshot, time.Time) progression.Result) (*MutationOutcome, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	res := apply(snap, now)
	summary := progression.Summarize(s.catalog, res.Snapshot, now)

	if res.Applied {
		s.queue.Enqueue(userID, res.Snapshot)
		s.hub.PublishResult(userID, res)
		s.log.Debug("achievement updated",
			zap.Uint("user_id", userID),
			zap.String("achievement", res.Achievement.ID),
			zap.Bool("completed", res.Achievement.IsCompleted),
			zap.Int("progress", res.Achievement.Progress))
	} else {
		s.log.Debug("achievement mutation ignored",
			zap.Uint("user_id", userID),
			zap.String("reason", string(res.Reason)))
	}
	return &MutationOutcome{Result: res, Summary: summary}, nil
}

// snapshot returns the newest known state: queued but unwritten first,
// then the store, then an empty document.
func (s *ProgressService) snapshot(ctx context.Context, userID uint) (progression.Snapshot, error) {
	if snap, ok := s.queue.Pending(userID); ok {
		return progression.MergeWithCatalog(s.catalog, snap), nil
	}
	snap, err := s.store.Load(ctx, userID)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return progression.Snapshot{}, err
	}
	return progression.MergeWithCatalog(s.catalog, snap), nil
}

// Summary computes totals, rank and mastery for the user.
func (s *ProgressService) Summary(ctx context.Context, userID uint) (progression.Summary, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return progression.Summary{}, err
	}
	return progression.Summarize(s.catalog, snap, s.clock.Now()), nil
}

// AchievementItem is one visible achievement as the app renders it.
type AchievementItem struct {
	ID            string                  `json:"id"`
	Tab           progression.Tab         `json:"tab"`
	Kind          progression.Kind        `json:"kind"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Points        int                     `json:"points"`
	Target        int                     `json:"target,omitempty"`
	Progress      int                     `json:"progress"`
	IsCompleted   bool                    `json:"is_completed"`
	CompletedDate *time.Time              `json:"completed_date,omitempty"`
	ResetPolicy   progression.ResetPolicy `json:"reset_policy"`
	Unlocked      bool                    `json:"unlocked"`
	RequiresID    string                  `json:"requires_id,omitempty"`
	CategoryID    string                  `json:"category_id,omitempty"`
	TierIndex     int                     `json:"tier_index"`
}

// TierView is one rung of a category card.
type TierView struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	Members []string `json:"members"`
}

// CategoryView is a category card with the user's position on it.
type CategoryView struct {
	ID          string          `json:"id"`
	Tab         progression.Tab `json:"tab"`
	Title       string          `json:"title"`
	CurrentTier int             `json:"current_tier"`
	Tiers       []TierView      `json:"tiers"`
}

// AchievementView is everything the achievements screen needs.
type AchievementView struct {
	Achievements map[progression.Tab][]AchievementItem `json:"achievements"`
	Categories   []CategoryView                        `json:"categories"`
	Summary      progression.Summary                   `json:"summary"`
}

// View evaluates the user's achievements for display. Disabled and
// gate-hidden achievements are left out.
func (s *ProgressService) View(ctx context.Context, userID uint) (*AchievementView, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	eff := progression.EvaluateAll(s.catalog, snap.States, now.Year())

	view := &AchievementView{
		Achievements: make(map[progression.Tab][]AchievementItem, len(progression.Tabs)),
		Summary:      progression.Summarize(s.catalog, snap, now),
	}
	for _, tab := range progression.Tabs {
		items := []AchievementItem{}
		for _, def := range s.catalog.TabDefinitions(tab) {
			if s.catalog.IsDisabled(def.ID) || !progression.IsVisible(def, eff) {
				continue
			}
			e := eff[def.ID]
			items = append(items, AchievementItem{
				ID:            def.ID,
				Tab:           def.Tab,
				Kind:          def.Kind,
				Title:         def.Title,
				Description:   def.Description,
				Points:        def.Points,
				Target:        def.Target,
				Progress:      e.Progress,
				IsCompleted:   e.IsCompleted,
				CompletedDate: e.CompletedDate,
				ResetPolicy:   def.ResetPolicy,
				Unlocked:      progression.IsUnlocked(def, eff),
				RequiresID:    def.RequiresID,
				CategoryID:    def.CategoryID,
				TierIndex:     def.TierIndex,
			})
		}
		view.Achievements[tab] = items
	}

	for _, card := range s.catalog.Cards() {
		cv := CategoryView{
			ID:          card.ID,
			Tab:         card.Tab,
			Title:       card.Title,
			CurrentTier: snap.Tiers[card.ID],
		}
		for _, tier := range card.Tiers {
			members := []string{}
			for _, def := range s.catalog.TierMembers(card.ID, tier.Index) {
				if !s.catalog.IsDisabled(def.ID) && progression.IsVisible(def, eff) {
					members = append(members, def.ID)
				}
			}
			sort.Strings(members)
			cv.Tiers = append(cv.Tiers, TierView{Index: tier.Index, Label: s.catalog.TierLabelFor(card.ID, tier.Index), Members: members})
		}
		view.Categories = append(view.Categories, cv)
	}
	return view, nil
}

// userLocks is a mutex per user id, dropped once nobody holds it.
type userLocks struct {
	mu   sync.Mutex
	held map[uint]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	ul := l.held[userID]
	if ul == nil {
		ul = &userLock{}
		l.held[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.held, userID)
		}
		l.mu.Unlock()
	}
}
