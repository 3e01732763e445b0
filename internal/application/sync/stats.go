package sync

import "sync"

// StatsSnapshot es la foto de contadores que expone el endpoint de estado.
type StatsSnapshot struct {
	TotalSyncs       int `json:"total_syncs"`
	SuccessfulSyncs  int `json:"successful_syncs"`
	FailedSyncs      int `json:"failed_syncs"`
	RetriedSyncs     int `json:"retried_syncs"`
	UnsupportedSyncs int `json:"unsupported_syncs"`
}

// SuccessRate es la proporción de intentos exitosos, entre 0 y 1.
func (s StatsSnapshot) SuccessRate() float64 {
	if s.TotalSyncs == 0 {
		return 0
	}
	return float64(s.SuccessfulSyncs) / float64(s.TotalSyncs)
}

// stats acumula contadores del orquestador. Seguro para uso concurrente.
type stats struct {
	mu sync.Mutex
	s  StatsSnapshot
}

func (st *stats) recordAttempt() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.TotalSyncs++
}

func (st *stats) recordSuccess() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.SuccessfulSyncs++
}

func (st *stats) recordFailure() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.FailedSyncs++
}

func (st *stats) recordRetry() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.RetriedSyncs++
}

func (st *stats) recordUnsupported() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.UnsupportedSyncs++
}

func (st *stats) snapshot() StatsSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

func (st *stats) reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = StatsSnapshot{}
}
