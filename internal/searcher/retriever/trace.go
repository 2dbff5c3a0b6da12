package retriever

// Retrieval stage names, used as metric labels.
const (
	StagePeriod   = "period"
	StageNames    = "names"
	StageMetadata = "metadata"
	StageTerms    = "terms"
	StageCombined = "combined"
)

// StageCount is the number of candidates left after a stage.
type StageCount struct {
	Stage string
	Count int
}

// Trace records how many candidates survived each evaluated stage, in
// evaluation order.
type Trace struct {
	Stages   []StageCount
	Fallback bool
}

func (t *Trace) record(stage string, n int) {
	t.Stages = append(t.Stages, StageCount{Stage: stage, Count: n})
}

// Evaluated reports whether stage ran.
func (t *Trace) Evaluated(stage string) bool {
	for _, s := range t.Stages {
		if s.Stage == stage {
			return true
		}
	}
	return false
}
