package filter

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/cluster"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

// Clustered returns every sentence assigned to the cluster the query vector
// falls into.
type Clustered struct {
	model *cluster.Model
}

func NewClustered(model *cluster.Model) *Clustered {
	return &Clustered{model: model}
}

func (f *Clustered) Filter(a *query.Analysis) ([]uint32, error) {
	if a.Vector == nil {
		return nil, fmt.Errorf("%w: clustered filter needs a query vector", apperrors.ErrInvalidInput)
	}
	label, err := f.model.Predict(a.Vector)
	if err != nil {
		return nil, fmt.Errorf("predicting query cluster: %w", err)
	}
	return f.model.Members(label), nil
}

func (f *Clustered) Granularity() query.Granularity {
	return query.Sentences
}
