package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

func primitiva(t *testing.T) draw.Game {
	t.Helper()
	g, err := draw.GameByKey("primitiva")
	require.NoError(t, err)
	return g
}

func TestRead_BasicArchive(t *testing.T) {
	csv := `fecha,n1,n2,n3,n4,n5,n6,reintegro
2024-03-09,3,17,22,31,40,47,5
2024-03-07,1,9,14,28,36,44,2
2024-03-05,6,11,19,25,33,48,0
`
	hist, err := Read(strings.NewReader(csv), primitiva(t))
	require.NoError(t, err)
	require.Len(t, hist, 3)

	latest, ok := hist.Latest()
	require.True(t, ok)
	assert.Equal(t, []int{3, 17, 22, 31, 40, 47}, latest.Numbers)
	assert.Equal(t, []int{5}, latest.Supplementary)
	assert.Equal(t, "2024-03-09", latest.Date.Format("2006-01-02"))
}

func TestRead_OldestFirstGetsReversed(t *testing.T) {
	csv := `fecha,n1,n2,n3,n4,n5,n6,reintegro
2024-03-05,6,11,19,25,33,48,0
2024-03-07,1,9,14,28,36,44,2
2024-03-09,3,17,22,31,40,47,5
`
	hist, err := Read(strings.NewReader(csv), primitiva(t))
	require.NoError(t, err)
	require.Len(t, hist, 3)

	latest, _ := hist.Latest()
	assert.Equal(t, "2024-03-09", latest.Date.Format("2006-01-02"))
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	csv := `fecha,n1,n2,n3,n4,n5,n6,reintegro
2024-03-09,3,17,22,31,40,47,5
not-a-date,1,9,14,28,36,44,2
2024-03-07,1,9,14,28,36,99,2
2024-03-06,1,9,14,28,36
2024-03-05,6,11,19,25,33,48,0
`
	hist, err := Read(strings.NewReader(csv), primitiva(t))
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestRead_ScrambledColumnOrder(t *testing.T) {
	csv := `reintegro,fecha,n6,n5,n4,n3,n2,n1
5,2024-03-09,47,40,31,22,17,3
`
	hist, err := Read(strings.NewReader(csv), primitiva(t))
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, []int{3, 17, 22, 31, 40, 47}, hist[0].Numbers)
	assert.Equal(t, []int{5}, hist[0].Supplementary)
}

func TestRead_MissingHeaderColumn(t *testing.T) {
	csv := `fecha,n1,n2,n3,n4,n5
2024-03-09,3,17,22,31,40
`
	_, err := Read(strings.NewReader(csv), primitiva(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n6")
}

func TestRead_NoValidRows(t *testing.T) {
	csv := `fecha,n1,n2,n3,n4,n5,n6,reintegro
bad,1,2,3,4,5,6,0
`
	_, err := Read(strings.NewReader(csv), primitiva(t))
	require.Error(t, err)
}

func TestRead_SupplementaryOptional(t *testing.T) {
	game, err := draw.GameByKey("euromillones")
	require.NoError(t, err)

	csv := `fecha,n1,n2,n3,n4,n5
2024-03-09,3,17,22,31,50
`
	hist, err := Read(strings.NewReader(csv), game)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Empty(t, hist[0].Supplementary)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primitiva.csv")
	content := "fecha,n1,n2,n3,n4,n5,n6,reintegro\n2024-03-09,3,17,22,31,40,47,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	hist, err := Load(path, primitiva(t))
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), primitiva(t))
	require.Error(t, err)
}
