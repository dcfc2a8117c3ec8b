package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const DefaultKeyPrefix = "subtrackr_"

type StoreOptions struct {
	// KeyPrefix namespaces the two persisted entries. Defaults to DefaultKeyPrefix.
	KeyPrefix string
	Logger    *zap.Logger
	// Now is used for demo renewal dates. Defaults to time.Now.
	Now func() time.Time
}

// Store owns the subscription records and the onboarded flag. Every
// mutation is applied in memory first and then persisted; the in-memory
// state stays authoritative when persisting fails.
//
// A Store is not safe for concurrent use.
type Store struct {
	storage Storage
	log     *zap.Logger
	now     func() time.Time

	subsKey      string
	onboardedKey string

	subs      []Subscription
	onboarded bool
}

func NewStore(storage Storage, opts StoreOptions) *Store {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		storage:      storage,
		log:          opts.Logger,
		now:          opts.Now,
		subsKey:      opts.KeyPrefix + "subscriptions",
		onboardedKey: opts.KeyPrefix + "onboarded",
	}
}

// LoadResult reports what Load restored. Warning is set when persisted
// state was unreadable and empty state was used instead.
type LoadResult struct {
	Count     int
	Onboarded bool
	Warning   *StorageReadError
}

// Load replaces the in-memory state with the persisted one. It never fails:
// missing or corrupt entries yield no records and onboarded=false.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.subs = nil
	s.onboarded = false

	entries, err := s.storage.Read(ctx, s.subsKey, s.onboardedKey)
	if err != nil {
		return s.loadFailed(&StorageReadError{Err: err})
	}

	if raw, ok := entries[s.subsKey]; ok && raw != "" {
		var subs []Subscription
		if err := json.Unmarshal([]byte(raw), &subs); err != nil {
			return s.loadFailed(&StorageReadError{Key: s.subsKey, Err: err})
		}
		s.subs = subs
	}

	if raw, ok := entries[s.onboardedKey]; ok {
		onboarded, err := strconv.ParseBool(raw)
		if err != nil {
			return s.loadFailed(&StorageReadError{Key: s.onboardedKey, Err: err})
		}
		s.onboarded = onboarded
	}

	s.log.Debug("state loaded", zap.Int("records", len(s.subs)), zap.Bool("onboarded", s.onboarded))
	return LoadResult{Count: len(s.subs), Onboarded: s.onboarded}
}

func (s *Store) loadFailed(readErr *StorageReadError) LoadResult {
	s.subs = nil
	s.onboarded = false
	s.log.Warn("stored state unreadable, starting empty", zap.Error(readErr))
	return LoadResult{Warning: readErr}
}

// Subscriptions returns a copy of the records in insertion order.
func (s *Store) Subscriptions() []Subscription {
	out := make([]Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *Store) Onboarded() bool {
	return s.onboarded
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Subscription, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.subs[i], true
	}
	return Subscription{}, false
}

func (s *Store) indexOf(id string) int {
	for i := range s.subs {
		if s.subs[i].ID == id {
			return i
		}
	}
	return -1
}

// AddMany appends records after the existing ones, keeping the order of
// both. Ids must already be assigned. The whole batch is rejected, and the
// store left untouched, when any record is invalid or its id is taken.
func (s *Store) AddMany(ctx context.Context, records []Subscription) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(s.subs)+len(records))
	for _, sub := range s.subs {
		seen[sub.ID] = true
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		if seen[rec.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = true
	}

	s.subs = append(s.subs, records...)
	s.log.Info("subscriptions added", zap.Int("added", len(records)), zap.Int("total", len(s.subs)))
	return s.persistSubscriptions(ctx)
}

// Add appends a single manually entered record.
func (s *Store) Add(ctx context.Context, record Subscription) error {
	return s.AddMany(ctx, []Subscription{record})
}

// Cancel marks the record as Canceled. Unknown ids are ignored. Records
// are never removed.
func (s *Store) Cancel(ctx context.Context, id string) error {
	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("cancel: unknown id", zap.String("id", id))
		return nil
	}
	s.subs[i].Status = StatusCanceled
	s.log.Info("subscription canceled", zap.String("id", id), zap.String("name", s.subs[i].Name))
	return s.persistSubscriptions(ctx)
}

// Recategorize sets a new category. Blank categories and unknown ids are
// ignored.
func (s *Store) Recategorize(ctx context.Context, id, category string) error {
	cat, err := NewCategory(category)
	if err != nil {
		return nil
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.subs[i].Category = cat
	s.log.Info("subscription recategorized", zap.String("id", id), zap.String("category", cat.String()))
	return s.persistSubscriptions(ctx)
}

// Reset drops every record and the onboarded flag. Both persisted entries
// are removed in one storage call so a reload never sees half of it.
func (s *Store) Reset(ctx context.Context) error {
	s.subs = nil
	s.onboarded = false
	s.log.Info("state reset")
	if err := s.storage.Remove(ctx, s.subsKey, s.onboardedKey); err != nil {
		return s.writeFailed(err)
	}
	return nil
}

// CompleteOnboarding marks the store onboarded. With loadDemo the records
// are replaced by the demo set.
func (s *Store) CompleteOnboarding(ctx context.Context, loadDemo bool) error {
	if loadDemo {
		s.subs = DemoSubscriptions(s.now())
	}
	s.onboarded = true
	s.log.Info("onboarding completed", zap.Bool("demo", loadDemo), zap.Int("records", len(s.subs)))

	entries, err := s.encodeSubscriptions()
	if err != nil {
		return s.writeFailed(err)
	}
	entries[s.onboardedKey] = strconv.FormatBool(true)
	if err := s.storage.Write(ctx, entries); err != nil {
		return s.writeFailed(err)
	}
	return nil
}

func (s *Store) encodeSubscriptions() (map[string]string, error) {
	subs := s.subs
	if subs == nil {
		subs = []Subscription{}
	}
	data, err := json.Marshal(subs)
	if err != nil {
		return nil, fmt.Errorf("marshaling subscriptions: %w", err)
	}
	return map[string]string{s.subsKey: string(data)}, nil
}

func (s *Store) persistSubscriptions(ctx context.Context) error {
	entries, err := s.encodeSubscriptions()
	if err != nil {
		return s.writeFailed(err)
	}
	if err := s.storage.Write(ctx, entries); err != nil {
		return s.writeFailed(err)
	}
	return nil
}

func (s *Store) writeFailed(err error) error {
	var we *StorageWriteError
	if !errors.As(err, &we) {
		we = &StorageWriteError{Err: err}
	}
	s.log.Warn("state not saved", zap.Error(we.Err))
	return we
}
