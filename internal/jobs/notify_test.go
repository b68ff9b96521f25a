package jobs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	tr, _ := newTestTracker(time.Now())
	tr.Subscribe(LogObserver(logger))

	ok, _ := tr.Start(models.JobKindUpload, "Good", "g.pdf")
	tr.Update(ok.ID, models.JobStatusUploading, 10)
	tr.Complete(ok.ID)

	bad, _ := tr.Start(models.JobKindDelete, "Bad", "b.pdf")
	tr.Fail(bad.ID, "bridge unreachable")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "completed", first["status"])
	assert.Equal(t, ok.ID.String(), first["job_id"])

	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "job failed", second["msg"])
	assert.Equal(t, "delete", second["kind"])
	assert.Equal(t, "bridge unreachable", second["error"])
}
