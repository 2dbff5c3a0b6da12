package tokenizer

import (
	"fmt"
	"strings"
	"testing"
)

var benchTexts = map[string]string{
	"title": "Deep Residual Learning for Image Recognition",
	"abstract": `Deeper neural networks are more difficult to train. We present a
        residual learning framework to ease the training of networks that are
        substantially deeper than those used previously. We explicitly reformulate
        the layers as learning residual functions with reference to the layer inputs,
        instead of learning unreferenced functions.`,
	"long": strings.Repeat(`Information retrieval systems combine tokenization, stemming
        and stop word removal to normalise text into searchable terms. The inverted
        index maps each term to the documents containing it. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for _, mode := range []Mode{ModeNaive, ModeStem, ModePorter} {
		for _, twograms := range []bool{false, true} {
			tk := MustNew(mode, twograms)
			for name, text := range benchTexts {
				b.Run(fmt.Sprintf("%s/2gram=%t/%s", mode, twograms, name), func(b *testing.B) {
					b.ReportAllocs()
					b.SetBytes(int64(len(text)))
					for i := 0; i < b.N; i++ {
						_ = tk.Tokenize(text)
					}
				})
			}
		}
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	tk := MustNew(ModePorter, true)
	text := benchTexts["abstract"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tk.Tokenize(text)
		}
	})
}
