package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colormaker/internal/config"
)

func TestExportWritesSwatch(t *testing.T) {
	dir := setupCLI(t, config.BackendFile)
	t.Cleanup(func() { exportSize = 256 })

	_, err := run(t, runDisable, "green")
	require.NoError(t, err)

	path := filepath.Join(dir, "swatch.png")
	exportSize = 64
	out, err := run(t, runExport, path)
	require.NoError(t, err)
	assert.Contains(t, out, "#ff00ff")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	r, g, b, a := img.At(32, 16).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
}

func TestExportRejectsTinySize(t *testing.T) {
	setupCLI(t, config.BackendMemory)
	t.Cleanup(func() { exportSize = 256 })

	exportSize = 4
	_, err := run(t, runExport, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}
