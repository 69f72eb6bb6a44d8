package kanjisim

// Close marks the engine closed. Subsequent lookups and queries fail with
// ErrClosed. The dataset is fully in memory once Open returns, so Close holds
// no resources beyond that and is safe to call more than once.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	if e.closed.Swap(true) {
		return nil
	}
	e.logger.Debug("engine closed")
	return nil
}
