// Package variant describes the retrieval pipelines an engine can serve. A
// Variant names the preprocessing, representation, term filters, summarizer
// and threshold of one (dataset, pipeline) pair; Resolve turns it into
// concrete components once at startup.
package variant

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/vectorizer"
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

// Default similarity thresholds per representation family.
const (
	ThresholdSparse = 0.25
	ThresholdDense  = 0.45
	ThresholdCount  = 0.0
)

// DefaultOccurredThreshold is the share of single query terms a document
// must contain to pass the occurrence filter.
const DefaultOccurredThreshold = 0.5

// FilterKind names a term filter strategy.
type FilterKind string

const (
	FilterOccurred  FilterKind = "occurred"
	FilterWeighted  FilterKind = "weighted"
	FilterBM25      FilterKind = "bm25"
	FilterClustered FilterKind = "clustered"
	FilterANN       FilterKind = "ann"
)

// Summarizer kinds.
const (
	SummarizerNaive      = "naive"
	SummarizerSimilarity = "similarity"
)

// Variant is one retrieval configuration.
type Variant struct {
	Name    string `yaml:"name" json:"name"`
	Dataset string `yaml:"dataset" json:"dataset"`
	// Preprocess is the tokenizer mode for query and index terms.
	Preprocess tokenizer.Mode `yaml:"preprocess" json:"preprocess"`
	TwoGrams   bool           `yaml:"twograms" json:"twograms"`
	// Representation is "count" or "tfidf" for sparse vectors, otherwise
	// the embedding family ("glove", "jina", "bert", ...).
	Representation    string       `yaml:"representation" json:"representation"`
	Filters           []FilterKind `yaml:"filters" json:"filters"`
	Summarizer        string       `yaml:"summarizer" json:"summarizer"`
	Threshold         float64      `yaml:"threshold" json:"threshold"`
	OccurredThreshold float64      `yaml:"occurredThreshold" json:"occurredThreshold"`
	// Metadata enables author and publication-date filtering.
	Metadata bool `yaml:"metadata" json:"metadata"`
}

// Sparse reports whether the variant ranks with vectorizer output.
func (v Variant) Sparse() bool {
	return v.Representation == string(vectorizer.WeightingCount) || v.Representation == string(vectorizer.WeightingTFIDF)
}

// Granularity of the variant's term filters.
func (v Variant) Granularity() query.Granularity {
	for _, f := range v.Filters {
		if f == FilterOccurred || f == FilterWeighted {
			return query.Documents
		}
	}
	return query.Sentences
}

// Validate checks the variant is internally consistent.
func (v Variant) Validate() error {
	if v.Name == "" || v.Dataset == "" {
		return fmt.Errorf("variant needs a name and a dataset")
	}
	switch v.Preprocess {
	case tokenizer.ModeNaive, tokenizer.ModeStem, tokenizer.ModePorter:
	default:
		return fmt.Errorf("variant %s: unknown preprocess mode %q", v.Name, v.Preprocess)
	}
	if v.Representation == "" {
		return fmt.Errorf("variant %s: representation is required", v.Name)
	}
	if len(v.Filters) == 0 {
		return fmt.Errorf("variant %s: at least one term filter is required", v.Name)
	}
	docLevel, sentLevel := 0, 0
	for _, f := range v.Filters {
		switch f {
		case FilterOccurred, FilterWeighted:
			docLevel++
		case FilterBM25, FilterClustered, FilterANN:
			sentLevel++
		default:
			return fmt.Errorf("variant %s: unknown filter %q", v.Name, f)
		}
	}
	if docLevel > 0 && sentLevel > 0 {
		return fmt.Errorf("variant %s: cannot mix document and sentence filters", v.Name)
	}
	if docLevel > 0 && !v.Sparse() {
		return fmt.Errorf("variant %s: document filters need a count or tfidf representation", v.Name)
	}
	if sentLevel > 0 && v.Sparse() {
		return fmt.Errorf("variant %s: sentence filters need an embedding representation", v.Name)
	}
	switch v.Summarizer {
	case SummarizerNaive:
	case SummarizerSimilarity:
		if v.Sparse() {
			return fmt.Errorf("variant %s: similarity summaries need sentence embeddings", v.Name)
		}
	default:
		return fmt.Errorf("variant %s: unknown summarizer %q", v.Name, v.Summarizer)
	}
	if v.Threshold < 0 || v.Threshold > 1 {
		return fmt.Errorf("variant %s: threshold %v outside [0,1]", v.Name, v.Threshold)
	}
	return nil
}

func (v Variant) termsName() string {
	grams := "single"
	if v.TwoGrams {
		grams = "2gram"
	}
	return string(v.Preprocess) + "-" + grams
}

// IndexKey is the document-level inverted index.
func (v Variant) IndexKey() string {
	return artifact.Key(v.Dataset, artifact.KindIndex, v.termsName())
}

// VectorizerKey is the fitted count or tf-idf vectorizer.
func (v Variant) VectorizerKey() string {
	return artifact.Key(v.Dataset, artifact.KindVectorizer, v.termsName()+"-"+v.Representation)
}

// DocVectorsKey is the per-document sparse matrix.
func (v Variant) DocVectorsKey() string {
	return artifact.Key(v.Dataset, artifact.KindVectors, v.termsName()+"-"+v.Representation)
}

// SentencesKey is the sentence store embedded with the variant's family.
func (v Variant) SentencesKey() string {
	return artifact.Key(v.Dataset, artifact.KindSentences, v.Representation)
}

// BM25Key is the sentence-level index over naive single-word tokens.
func (v Variant) BM25Key() string {
	return BM25Key(v.Dataset)
}

// ClustersKey is the k-means model over the sentence embeddings.
func (v Variant) ClustersKey() string {
	return artifact.Key(v.Dataset, artifact.KindClusters, v.Representation+"-kmeans")
}

// BM25Key is shared by every variant of a dataset.
func BM25Key(dataset string) string {
	return artifact.Key(dataset, artifact.KindIndex, "sentences-naive")
}

// Has reports whether the variant uses filter f.
func (v Variant) Has(f FilterKind) bool {
	for _, x := range v.Filters {
		if x == f {
			return true
		}
	}
	return false
}
