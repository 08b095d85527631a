package portal

// Metrics receives flow outcomes.
type Metrics interface {
	FlowCompleted(op, outcome string)
	BookkeepingFailed(kind string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) FlowCompleted(string, string) {}
func (NopMetrics) BookkeepingFailed(string)     {}
