package csvfile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LabSOIL/sensor-toolbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReaderStreamsLinesWithNumbers(t *testing.T) {
	path := writeTempInput(t,
		"0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;\n"+
			"1;2023.05.30 07:00;4;21.875;22;22.25;352;202;0;\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	first, err := r.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Contains(t, first.Text, "06:45")

	second, err := r.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)

	_, err = r.Extract(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSkipsBlankLines(t *testing.T) {
	path := writeTempInput(t,
		"0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;\n"+
			"\n"+
			"2;2023.05.30 07:15;4;21.625;21.75;22;1229;202;0;\n"+
			"\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	first, err := r.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)

	// The blank line still advances the reported line number so parser
	// errors cite positions an editor agrees with.
	second, err := r.Extract(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Number)

	_, err = r.Extract(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestReaderHonorsContextCancellation(t *testing.T) {
	path := writeTempInput(t, "0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriterCommitProducesTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.csv")

	w, err := NewWriter(out)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Load(ctx, domain.VWCRecord{
		Timestamp:   time.Date(2023, 5, 30, 6, 45, 0, 0, time.UTC),
		RawMoisture: 354,
		Temperature: 22.25,
		VWC:         0,
	}))
	require.NoError(t, w.Load(ctx, domain.VWCRecord{
		Timestamp:   time.Date(2023, 5, 30, 7, 45, 0, 0, time.UTC),
		RawMoisture: 1978,
		Temperature: 21.5,
		VWC:         0.285638,
	}))
	assert.Equal(t, 2, w.Rows())
	require.NoError(t, w.Commit())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"datetime,raw,temp,VWC_moisture\n"+
			"2023-05-30 06:45:00,354,22.25,0.000000\n"+
			"2023-05-30 07:45:00,1978,21.5,0.285638\n",
		string(data))
}

func TestWriterMaskedRowSerializesNA(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.csv")

	w, err := NewWriter(out)
	require.NoError(t, err)

	require.NoError(t, w.Load(context.Background(), domain.VWCRecord{
		Timestamp:   time.Date(2023, 12, 1, 9, 15, 0, 0, time.UTC),
		RawMoisture: 1456,
		Temperature: -1.5,
		Masked:      true,
	}))
	require.NoError(t, w.Commit())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2023-12-01 09:15:00,1456,-1.5,NA\n")
}

func TestWriterAbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.csv")

	w, err := NewWriter(out)
	require.NoError(t, err)
	require.NoError(t, w.Load(context.Background(), domain.VWCRecord{
		Timestamp:   time.Date(2023, 5, 30, 6, 45, 0, 0, time.UTC),
		RawMoisture: 354,
		Temperature: 22.25,
	}))

	w.Abort()

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no final output after abort")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp file left behind")
}

func TestWriterUncreatableDirectory(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "output.csv"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output")
}
