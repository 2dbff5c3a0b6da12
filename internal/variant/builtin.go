package variant

import (
	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
)

// Builtin returns the stock variants for the arxiv and medical datasets.
// Arxiv variants honour author and date constraints; medical records carry
// no usable metadata, so those variants are terms-only with no threshold.
func Builtin() []Variant {
	var out []Variant
	for _, ds := range []string{"arxiv", "medical"} {
		arxiv := ds == "arxiv"
		threshold := func(t float64) float64 {
			if !arxiv {
				return 0
			}
			return t
		}
		summary := func(s string) string {
			if !arxiv {
				return SummarizerNaive
			}
			return s
		}
		termFilters := []FilterKind{FilterOccurred, FilterWeighted}

		out = append(out,
			Variant{
				Name: ds + "-stemm-single-count", Dataset: ds,
				Preprocess: tokenizer.ModeStem, Representation: "count",
				Filters: termFilters, Summarizer: SummarizerNaive,
				Threshold: ThresholdCount, Metadata: arxiv,
			},
			Variant{
				Name: ds + "-lemm-single-tfidf", Dataset: ds,
				Preprocess: tokenizer.ModePorter, Representation: "tfidf",
				Filters: termFilters, Summarizer: SummarizerNaive,
				Threshold: threshold(ThresholdSparse), Metadata: arxiv,
			},
			Variant{
				Name: ds + "-lemm-2gram-tfidf", Dataset: ds,
				Preprocess: tokenizer.ModePorter, TwoGrams: true, Representation: "tfidf",
				Filters: termFilters, Summarizer: SummarizerNaive,
				Threshold: threshold(ThresholdSparse), Metadata: arxiv,
			},
		)

		sentence := []sentenceVariant{
			{"glove", FilterBM25, SummarizerNaive},
			{"glove-retrained", FilterBM25, SummarizerSimilarity},
			{"jina", FilterBM25, SummarizerSimilarity},
			{"jina", FilterClustered, SummarizerSimilarity},
			{"jina", FilterANN, SummarizerSimilarity},
			{"bert", FilterANN, SummarizerSimilarity},
		}
		if !arxiv {
			sentence = append(sentence, sentenceVariant{"bert-retrained", FilterANN, SummarizerNaive})
		}
		for _, s := range sentence {
			out = append(out, Variant{
				Name:           ds + "-sentences-" + s.family + "-" + filterSuffix(s.filter),
				Dataset:        ds,
				Preprocess:     tokenizer.ModeNaive,
				Representation: s.family,
				Filters:        []FilterKind{s.filter},
				Summarizer:     summary(s.summarizer),
				Threshold:      threshold(ThresholdDense),
				Metadata:       arxiv,
			})
		}
	}
	return out
}

type sentenceVariant struct {
	family     string
	filter     FilterKind
	summarizer string
}

func filterSuffix(f FilterKind) string {
	switch f {
	case FilterClustered:
		return "kmeans"
	case FilterANN:
		return "faiss"
	default:
		return string(f)
	}
}
