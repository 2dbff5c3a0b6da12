package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"app error wins":     {New(ErrInvalidInput, http.StatusTeapot, "no"), http.StatusTeapot},
		"wrapped invalid":    {fmt.Errorf("analyzing: %w", ErrInvalidInput), http.StatusBadRequest},
		"shape mismatch":     {fmt.Errorf("ann: %w", ErrShapeMismatch), http.StatusUnprocessableEntity},
		"timeout":            {fmt.Errorf("embed: %w: %w", ErrTimeout, context.DeadlineExceeded), http.StatusServiceUnavailable},
		"missing artifact":   {fmt.Errorf("loading: %w", ErrArtifactMissing), http.StatusInternalServerError},
		"unrelated":          {context.Canceled, http.StatusInternalServerError},
		"embedder down":      {ErrUnavailable, http.StatusServiceUnavailable},
		"document not found": {ErrNotFound, http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("search: %w", New(ErrInvalidInput, http.StatusBadRequest, "query required"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "search: invalid input: query required", err.Error())
}
