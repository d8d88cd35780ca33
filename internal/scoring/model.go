package scoring

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultModelVersion is the version tag of the bundled heuristic.
const DefaultModelVersion = "1.0-tabular"

var (
	// ErrModelUnavailable is returned while no model has been published.
	ErrModelUnavailable = errors.New("model not loaded")
	// ErrModelAlreadyLoaded is returned by a second ModelHolder.Set.
	ErrModelAlreadyLoaded = errors.New("model already loaded")
)

// ScoringModel is the read-only handle shared by every request.
type ScoringModel struct {
	version  string
	loadedAt time.Time
}

// LoadModel builds the scoring model for the given version tag.
func LoadModel(version string) (*ScoringModel, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, fmt.Errorf("load model: empty version")
	}
	return &ScoringModel{version: version, loadedAt: time.Now().UTC()}, nil
}

func (m *ScoringModel) Version() string     { return m.version }
func (m *ScoringModel) LoadedAt() time.Time { return m.loadedAt }

// ModelProvider hands out the current model or ErrModelUnavailable.
type ModelProvider interface {
	Model() (*ScoringModel, error)
}

// ModelHolder publishes a ScoringModel exactly once. Reads are lock-free.
type ModelHolder struct {
	model atomic.Pointer[ScoringModel]
}

func NewModelHolder() *ModelHolder {
	return &ModelHolder{}
}

// Set publishes m. Only the first call succeeds.
func (h *ModelHolder) Set(m *ScoringModel) error {
	if m == nil {
		return fmt.Errorf("set model: nil model")
	}
	if !h.model.CompareAndSwap(nil, m) {
		return ErrModelAlreadyLoaded
	}
	return nil
}

func (h *ModelHolder) Model() (*ScoringModel, error) {
	m := h.model.Load()
	if m == nil {
		return nil, ErrModelUnavailable
	}
	return m, nil
}

func (h *ModelHolder) Ready() bool {
	return h.model.Load() != nil
}
