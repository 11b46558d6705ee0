package solver

import "go.uber.org/zap"

// NewWinPIBT builds PIBT with SoftMode enabled (see PIBT.SoftMode). It
// plans one step at a time exactly like PIBT; it does not plan a window of
// several steps ahead.
func NewWinPIBT(log *zap.SugaredLogger, seed int64) *PIBT {
	p := NewPIBT(log, seed)
	p.SoftMode = true
	return p
}
