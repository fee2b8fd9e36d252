package editable

import (
	"context"
	"sync"

	"github.com/pthm/editable/lib/dom"
)

// Record is one selectable entry of a dataset.
type Record struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Dataset is the payload delivered by a DataLoader.
type Dataset struct {
	ID   string
	Data []Record
}

// DataLoader resolves datasets by id. Load must call cb exactly once, from any
// goroutine; a failed load delivers an empty dataset.
type DataLoader interface {
	Load(ctx context.Context, id string, cb func(Dataset))
}

// StaticData is an in-memory DataLoader.
type StaticData struct {
	mu   sync.RWMutex
	sets map[string][]Record
}

// NewStaticData creates a loader serving the given datasets.
func NewStaticData(sets map[string][]Record) *StaticData {
	s := &StaticData{sets: make(map[string][]Record)}
	for id, recs := range sets {
		s.sets[id] = recs
	}
	return s
}

// Put replaces a dataset.
func (s *StaticData) Put(id string, recs []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[id] = recs
}

// Load implements DataLoader.
func (s *StaticData) Load(ctx context.Context, id string, cb func(Dataset)) {
	s.mu.RLock()
	recs := append([]Record(nil), s.sets[id]...)
	s.mu.RUnlock()
	cb(Dataset{ID: id, Data: recs})
}

// loadDataset requests a dataset; on arrival every live input whose field
// names that dataset is reloaded.
func (ed *Editor) loadDataset(id string) {
	if ed.data == nil || id == "" {
		return
	}
	ed.loop.begin()
	ed.data.Load(context.Background(), id, func(ds Dataset) {
		ed.loop.complete(func() { ed.datasetLoaded(ds) })
	})
}

func (ed *Editor) datasetLoaded(ds Dataset) {
	ed.log.Debug().Str("dataset", ds.ID).Int("records", len(ds.Data)).Msg("dataset loaded")
	for field, in := range ed.live {
		if ConfigOf(field).Dataset == ds.ID {
			in.Load(ds.Data)
		}
	}
}

// preloadDatasets requests every dataset named by fields owned by owner.
func (ed *Editor) preloadDatasets(owner *dom.Node) {
	seen := map[string]bool{}
	for _, f := range ed.ownedFields(owner) {
		id := ConfigOf(f).Dataset
		if id != "" && !seen[id] {
			seen[id] = true
			ed.loadDataset(id)
		}
	}
}
