package index

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/indexer/tokenizer"
)

func benchIndex(docs int) *Index {
	tk := tokenizer.MustNew(tokenizer.ModeNaive, true)
	x := New(nil)
	for i := 0; i < docs; i++ {
		x.Add(uint32(i), tk.Tokenize(fmt.Sprintf("retrieval model %d over sparse vectors and dense embeddings", i%50)))
	}
	return x
}

func BenchmarkAdd(b *testing.B) {
	tk := tokenizer.MustNew(tokenizer.ModeNaive, true)
	tokens := tk.Tokenize("a benchmark abstract with several terms for measuring index insertion throughput")
	x := New(nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Add(uint32(i), tokens)
	}
}

func BenchmarkPostings(b *testing.B) {
	x := benchIndex(10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = x.Postings("sparse vectors")
	}
}

func BenchmarkSnapshot(b *testing.B) {
	x := benchIndex(10000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.Snapshot()
	}
}
