package main

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"colormaker/internal/channel"
)

var exportSize int

// exportCmd renders the current mix to a PNG swatch
var exportCmd = &cobra.Command{
	Use:   "export [file.png]",
	Short: "Write the composed color to a PNG swatch",
	Long: `Renders the composed color as a square PNG with one level bar per
channel along the bottom edge. Disabled channels draw an empty bar.

Example:
  colormaker export swatch.png --size 256`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportSize, "size", 256, "Swatch width and height in pixels")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportSize < 16 {
		return fmt.Errorf("size %d too small (minimum 16)", exportSize)
	}

	store, closeStore, err := openStore(commandContext(cmd))
	if err != nil {
		return err
	}
	state := store.Snapshot()
	if err := closeStore(); err != nil {
		return err
	}

	if err := renderSwatch(state, exportSize, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", args[0], state.Hex())
	return nil
}

// renderSwatch fills the top of the image with the effective color and
// draws the three channel levels as bars underneath.
func renderSwatch(state channel.ColorState, size int, path string) error {
	dc := gg.NewContext(size, size)
	defer dc.Close()

	r, g, b := state.Effective()
	dc.ClearWithColor(gg.RGB(r, g, b))

	barHeight := float64(size) / 16
	top := float64(size) - 3*barHeight
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawRectangle(0, top, float64(size), 3*barHeight)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("failed to draw bar track: %w", err)
	}

	for i, id := range channel.IDs {
		level := state.Get(id).Effective()
		if level == 0 {
			continue
		}
		var cr, cg, cb float64
		switch id {
		case channel.Red:
			cr = 1
		case channel.Green:
			cg = 1
		case channel.Blue:
			cb = 1
		}
		dc.SetRGB(cr, cg, cb)
		dc.DrawRectangle(0, top+float64(i)*barHeight, level*float64(size), barHeight)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("failed to draw %s bar: %w", id, err)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
