package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveWrite(t *testing.T) {
	// Counters cannot be reset, so compare against the starting value.
	okBefore := testutil.ToFloat64(ArticleWrites.WithLabelValues("create", "success"))
	errBefore := testutil.ToFloat64(ArticleWrites.WithLabelValues("create", "error"))

	ObserveWrite("create", nil)
	ObserveWrite("create", errors.New("boom"))
	ObserveWrite("create", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ArticleWrites.WithLabelValues("create", "success")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ArticleWrites.WithLabelValues("create", "error")))
}
