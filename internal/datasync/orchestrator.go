// Package datasync keeps the authoritative in-memory document and moves it
// through the ordered chain of storage tiers.
package datasync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
)

// Source names where the authoritative document came from. Remote tiers
// report their own name.
type Source string

const (
	SourceNone    Source = ""
	SourceDurable Source = "durable"
	SourceDefault Source = "default"
	SourceCache   Source = "cache"
)

// Save targets reported in Status.
const (
	SavedLocal = "local"
	SavedCache = "cache"
)

// DefaultTierTimeout bounds a single remote tier call.
const DefaultTierTimeout = 5 * time.Second

// Status describes the last load and save.
type Status struct {
	LoadedFrom  Source
	LastSavedTo string
	LastSave    time.Time
}

// LocalOnly reports whether the last save reached no remote tier.
func (s Status) LocalOnly() bool {
	return s.LastSavedTo == SavedLocal || s.LastSavedTo == SavedCache
}

// LoadedLocally reports whether the document did not come from a remote tier.
func (s Status) LoadedLocally() bool {
	switch s.LoadedFrom {
	case SourceDurable, SourceDefault, SourceCache:
		return true
	}
	return false
}

type Option func(*Orchestrator)

func WithTierTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tierTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator owns the authoritative document. Loads walk the remote tiers
// in order, then the durable store, then the default document. Saves go to
// the first remote tier that accepts them, fall back to the durable store,
// and always refresh the fast cache.
type Orchestrator struct {
	remotes     []model.RemoteTier
	durable     model.DurableStore
	cache       model.FastCache
	tierTimeout time.Duration
	now         func() time.Time
	logger      *logger.Logger

	mu      sync.RWMutex
	current *model.Document
	status  Status

	wg sync.WaitGroup
}

var _ model.Repository = (*Orchestrator)(nil)

func New(
	remotes []model.RemoteTier,
	durable model.DurableStore,
	cache model.FastCache,
	logger *logger.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		remotes:     remotes,
		durable:     durable,
		cache:       cache,
		tierTimeout: DefaultTierTimeout,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open prepares the durable store and runs the load protocol.
func (o *Orchestrator) Open(ctx context.Context) Source {
	if err := o.durable.Init(ctx); err != nil {
		o.logger.Error("Sync orchestrator: failed to initialize durable store",
			"error", err.Error())
	}
	return o.Load(ctx)
}

// Close waits for background mirroring to finish.
func (o *Orchestrator) Close() error {
	o.wg.Wait()
	return nil
}

// Load runs the load protocol and returns the source that won. It never
// fails: when every tier is empty or broken the default document is used.
func (o *Orchestrator) Load(ctx context.Context) Source {
	for _, tier := range o.remotes {
		doc, err := o.loadRemote(ctx, tier)
		if err != nil {
			o.logTierMiss(tier.Name(), err)
			continue
		}

		source := Source(tier.Name())
		o.adopt(doc, source)
		o.mirrorDurable(ctx, doc)
		o.mirrorCache(doc)

		o.logger.Info("Sync orchestrator: loaded document", "source", source)
		return source
	}

	doc, err := o.durable.Load(ctx)
	if err == nil {
		err = model.Validate(doc)
	}
	if err == nil {
		o.adopt(doc, SourceDurable)
		o.mirrorCache(doc)

		o.logger.Info("Sync orchestrator: loaded document", "source", SourceDurable)
		return SourceDurable
	}
	o.logTierMiss(string(SourceDurable), err)

	doc = model.NewDefaultDocument(o.now())
	o.adopt(doc, SourceDefault)
	o.mirrorDurable(ctx, doc)
	o.mirrorCache(doc)

	o.logger.Warn("Sync orchestrator: no stored document found, using defaults")
	return SourceDefault
}

func (o *Orchestrator) loadRemote(ctx context.Context, tier model.RemoteTier) (*model.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()

	doc, err := tier.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (o *Orchestrator) logTierMiss(tier string, err error) {
	if errors.Is(err, model.ErrNotFound) {
		o.logger.Info("Sync orchestrator: tier has no document", "tier", tier)
		return
	}
	o.logger.Warn("Sync orchestrator: tier load failed",
		"tier", tier,
		"error", err.Error())
}

func (o *Orchestrator) adopt(doc *model.Document, source Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = doc.Clone()
	o.status.LoadedFrom = source
}

func (o *Orchestrator) mirrorDurable(ctx context.Context, doc *model.Document) {
	if err := o.durable.Save(ctx, doc); err != nil {
		o.logger.Error("Sync orchestrator: failed to mirror into durable store",
			"error", err.Error())
	}
}

func (o *Orchestrator) mirrorCache(doc *model.Document) {
	if err := o.cache.Set(doc); err != nil {
		o.logger.Error("Sync orchestrator: failed to refresh fast cache",
			"error", err.Error())
	}
}

// Data returns a copy of the authoritative document without network I/O.
// Before any load it falls back to the fast cache, or to the default
// document when the cache is empty or corrupt, and mirrors the adopted
// document into the durable store in the background.
func (o *Orchestrator) Data() *model.Document {
	o.mu.RLock()
	if o.current != nil {
		doc := o.current.Clone()
		o.mu.RUnlock()
		return doc
	}
	o.mu.RUnlock()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		return o.current.Clone()
	}

	doc, ok := o.cache.Get()
	source := SourceCache
	if !ok {
		doc = model.NewDefaultDocument(o.now())
		source = SourceDefault
	}
	o.current = doc
	o.status.LoadedFrom = source

	mirror := doc.Clone()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.mirrorDurable(context.Background(), mirror)
	}()

	o.logger.Warn("Sync orchestrator: read before load, adopted local copy", "source", source)
	return doc.Clone()
}

// Save runs the write protocol. Only an invalid document is an error;
// storage failures are logged and the document stays authoritative.
func (o *Orchestrator) Save(ctx context.Context, doc *model.Document) error {
	if err := model.Validate(doc); err != nil {
		o.logger.Warn("Sync orchestrator: rejected invalid document", "error", err.Error())
		return err
	}

	stamped := doc.Clone()
	now := o.now()
	stamped.Stamp(now)

	o.mu.Lock()
	o.current = stamped.Clone()
	o.mu.Unlock()

	savedTo := ""
	for _, tier := range o.remotes {
		if err := o.saveRemote(ctx, tier, stamped); err != nil {
			o.logger.Warn("Sync orchestrator: tier save failed",
				"tier", tier.Name(),
				"error", err.Error())
			continue
		}
		savedTo = tier.Name()
		break
	}

	if savedTo == "" {
		savedTo = SavedLocal
		if err := o.durable.Save(ctx, stamped); err != nil {
			savedTo = SavedCache
			o.logger.Error("Sync orchestrator: failed to save into durable store",
				"error", err.Error())
		}
	}

	o.mirrorCache(stamped)

	o.mu.Lock()
	o.status.LastSavedTo = savedTo
	o.status.LastSave = now
	o.mu.Unlock()

	o.logger.Debug("Sync orchestrator: document saved",
		"saved_to", savedTo,
		"backup_count", stamped.Metadata.BackupCount)
	return nil
}

func (o *Orchestrator) saveRemote(ctx context.Context, tier model.RemoteTier, doc *model.Document) error {
	ctx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()
	return tier.Save(ctx, doc)
}

func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}
