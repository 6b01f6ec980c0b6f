package datasync

import (
	"context"
	"errors"
	"sync"

	"github.com/dtroode/starboard/internal/model"
)

var errUnreachable = errors.New("connection refused")

type fakeTier struct {
	name string

	mu      sync.Mutex
	doc     *model.Document
	loadErr error
	saveErr error
	block   bool
	loads   int
	saves   []*model.Document
}

func (t *fakeTier) Name() string { return t.name }

func (t *fakeTier) Load(ctx context.Context) (*model.Document, error) {
	t.mu.Lock()
	t.loads++
	block, doc, err := t.block, t.doc, t.loadErr
	t.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, model.ErrNotFound
	}
	return doc.Clone(), nil
}

func (t *fakeTier) Save(ctx context.Context, doc *model.Document) error {
	t.mu.Lock()
	block := t.block
	t.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saveErr != nil {
		return t.saveErr
	}
	t.saves = append(t.saves, doc.Clone())
	t.doc = doc.Clone()
	return nil
}

func (t *fakeTier) loadCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loads
}

func (t *fakeTier) saveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.saves)
}

type fakeDurable struct {
	mu      sync.Mutex
	doc     *model.Document
	initErr error
	saveErr error
	inits   int
	saves   int
}

func (d *fakeDurable) Init(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inits++
	return d.initErr
}

func (d *fakeDurable) Load(context.Context) (*model.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil, model.ErrNotFound
	}
	return d.doc.Clone(), nil
}

func (d *fakeDurable) Save(_ context.Context, doc *model.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saves++
	d.doc = doc.Clone()
	return nil
}

func (d *fakeDurable) stored() *model.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc
}

type fakeCache struct {
	mu   sync.Mutex
	doc  *model.Document
	sets int
}

func (c *fakeCache) Get() (*model.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil || !model.IsValid(c.doc) {
		return nil, false
	}
	return c.doc.Clone(), true
}

func (c *fakeCache) Set(doc *model.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.doc = doc.Clone()
	return nil
}
