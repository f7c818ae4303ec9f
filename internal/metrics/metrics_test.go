package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrash_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTrash(reg)

	m.RecordThrow(nil)
	m.RecordThrow(nil)
	m.RecordThrow(errors.New("denied"))
	m.RecordRestore(nil)
	m.RecordVeto()
	m.RecordPurge(3, 0.01, nil)
	m.RecordPurge(1, 0.02, errors.New("disk"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("throw", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("throw", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("restore", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.vetoes))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.purged))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.purgeRuns.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.purgeDuration))
}

func TestTrash_NilIsNoop(t *testing.T) {
	var m *Trash
	assert.NotPanics(t, func() {
		m.RecordThrow(nil)
		m.RecordRestore(nil)
		m.RecordVeto()
		m.RecordPurge(1, 0, nil)
	})
}

func TestNewTrash_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewTrash(reg)
	assert.Panics(t, func() { NewTrash(reg) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTrash(reg)
	m.RecordThrow(nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recyclebin_operations_total{operation="throw",result="ok"} 1`)
}
