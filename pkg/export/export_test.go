package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	data := Dataset{
		Headers: []string{"Name", "Email"},
		Rows: [][]string{
			{"Amina", "amina@example.com"},
			{"Bilal"},
		},
	}
	out, err := RenderCSV(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Name", "Email"}, records[0])
	assert.Equal(t, []string{"Amina", "amina@example.com"}, records[1])
	// Short rows are padded to the header width.
	assert.Equal(t, []string{"Bilal", ""}, records[2])
}

func TestRenderCSVRequiresHeaders(t *testing.T) {
	_, err := RenderCSV(Dataset{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	data := Dataset{
		Headers: []string{"Subject", "Present %"},
		Rows:    [][]string{{"stu-1", "87.50"}},
	}
	out, err := RenderPDF(data, "Attendance Summary")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
