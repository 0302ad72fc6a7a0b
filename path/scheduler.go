package path

import (
	"sort"
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/nyxerrors"
)

// Scheduler is a registry of paths plus a selected policy. Selection always
// restricts to paths that are available and not failed.
type Scheduler struct {
	mu     sync.RWMutex
	paths  map[ID]*Path
	policy Policy

	hybridWeights HybridWeights

	rrCounter  uint64
	wrrCounter uint64
	wrrSlots   []ID
	wrrDirty   bool
}

// NewScheduler constructs an empty registry using the given policy.
func NewScheduler(policy Policy) *Scheduler {
	return &Scheduler{
		paths:         make(map[ID]*Path),
		policy:        policy,
		hybridWeights: HybridWeights{Latency: 1.0 / 3, Loss: 1.0 / 3, Bandwidth: 1.0 / 3},
	}
}

// SetPolicy changes the active selection policy.
func (s *Scheduler) SetPolicy(p Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// SetHybridWeights configures the convex-combination weights Hybrid (and
// Adaptive, when it falls through to Hybrid) uses.
func (s *Scheduler) SetHybridWeights(w HybridWeights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hybridWeights = w
}

// RegisterPath adds a new path with the given base weight.
func (s *Scheduler) RegisterPath(id ID, baseWeight float64) *Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := NewPath(id, baseWeight)
	s.paths[id] = p
	s.wrrDirty = true
	return p
}

// RemovePath unregisters a path.
func (s *Scheduler) RemovePath(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, id)
	s.wrrDirty = true
}

// Len reports the number of registered paths.
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}

func (s *Scheduler) get(id ID) (*Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[id]
	return p, ok
}

// ObserveRTT feeds a fresh RTT sample for id. Unknown path ids are silently
// ignored, per spec.md's "observations silently skip unknown paths".
func (s *Scheduler) ObserveRTT(id ID, rtt time.Duration) {
	if p, ok := s.get(id); ok {
		p.observeRTT(rtt)
		s.markWRRDirty()
	}
}

// ObserveLoss records a lost packet on id.
func (s *Scheduler) ObserveLoss(id ID) {
	if p, ok := s.get(id); ok {
		p.observeLoss()
		s.markWRRDirty()
	}
}

// ObserveSuccess records a successfully delivered packet on id.
func (s *Scheduler) ObserveSuccess(id ID) {
	if p, ok := s.get(id); ok {
		p.observeSuccess()
		s.markWRRDirty()
	}
}

// ObserveBandwidth updates id's bandwidth estimate and congestion level.
func (s *Scheduler) ObserveBandwidth(id ID, bytesPerSec, congestion float64) {
	if p, ok := s.get(id); ok {
		p.observeBandwidth(bytesPerSec, congestion)
		s.markWRRDirty()
	}
}

// MarkFailed marks id failed, which removes it from selection. The
// scheduler has no telemetry sink, and no failover event is emitted.
func (s *Scheduler) MarkFailed(id ID) {
	if p, ok := s.get(id); ok {
		p.markFailed()
		s.markWRRDirty()
	}
}

// MarkRecovered clears id's failed flag.
func (s *Scheduler) MarkRecovered(id ID) {
	if p, ok := s.get(id); ok {
		p.markRecovered()
		s.markWRRDirty()
	}
}

// SetAvailable toggles whether id currently participates in selection.
func (s *Scheduler) SetAvailable(id ID, available bool) {
	if p, ok := s.get(id); ok {
		p.setAvailable(available)
		s.markWRRDirty()
	}
}

func (s *Scheduler) markWRRDirty() {
	s.mu.Lock()
	s.wrrDirty = true
	s.mu.Unlock()
}

func (s *Scheduler) availableSnapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.paths))
	for _, p := range s.paths {
		snap := p.Snapshot()
		if snap.Available {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Select picks a path id using the active policy. It returns
// nyxerrors.CodeNoPaths if no path is currently available.
func (s *Scheduler) Select() (ID, error) {
	candidates := s.availableSnapshots()
	if len(candidates) == 0 {
		return 0, nyxerrors.Wrap(nyxerrors.ComponentPath, nyxerrors.CodeNoPaths, nil)
	}

	s.mu.RLock()
	policy := s.policy
	weights := s.hybridWeights
	s.mu.RUnlock()

	var (
		id    ID
		found bool
	)
	switch policy {
	case RoundRobin:
		s.mu.Lock()
		id, found = selectRoundRobin(candidates, &s.rrCounter)
		s.mu.Unlock()
	case WeightedRoundRobin:
		slots := s.weightedSlots(candidates)
		s.mu.Lock()
		id, found = selectWeightedRoundRobin(slots, &s.wrrCounter)
		s.mu.Unlock()
	case LatencyFirst:
		id, found = selectLatencyFirst(candidates)
	case LossAware:
		id, found = selectLossAware(candidates)
	case BandwidthFirst:
		id, found = selectBandwidthFirst(candidates)
	case Hybrid:
		id, found = selectHybrid(candidates, weights)
	case Adaptive:
		id, found = selectAdaptive(candidates, weights)
	default:
		id, found = selectRoundRobin(candidates, &s.rrCounter)
	}
	if !found {
		return 0, nyxerrors.Wrap(nyxerrors.ComponentPath, nyxerrors.CodeNoPaths, nil)
	}
	return id, nil
}

// weightedSlots returns the cached weighted-round-robin slot list,
// rebuilding it if any observation has touched a path's weight since the
// last build.
func (s *Scheduler) weightedSlots(candidates []Snapshot) []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wrrDirty || s.wrrSlots == nil {
		s.wrrSlots = buildWeightedSlots(candidates)
		s.wrrDirty = false
	}
	return s.wrrSlots
}
