package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-mrc/mrc"
)

// headerJSON is the machine-readable header view emitted by --json.
type headerJSON struct {
	Dimensions [3]int32   `json:"dimensions"`
	Mode       int32      `json:"mode"`
	Format     string     `json:"format"`
	Start      [3]int32   `json:"start"`
	Intervals  [3]int32   `json:"intervals"`
	CellLength [3]float32 `json:"cell_length"`
	CellAngles [3]float32 `json:"cell_angles"`
	AxisOrder  [3]int32   `json:"axis_order"`
	Min        float32    `json:"min"`
	Max        float32    `json:"max"`
	Mean       float32    `json:"mean"`
	RMS        float32    `json:"rms"`
	SpaceGroup int32      `json:"space_group"`
	Origin     [3]float32 `json:"origin"`
	ByteOrder  string     `json:"byte_order"`
	ExtType    string     `json:"ext_type,omitempty"`
	NVersion   int32      `json:"nversion,omitempty"`
	ExtBytes   int        `json:"extended_header_bytes"`
	Labels     []string   `json:"labels"`
}

func headerCmd() *cli.Command {
	var (
		configPath string
		logLevel   string
		asJSON     bool
	)

	cmd := &cli.Command{
		Name:      "header",
		Usage:     "Print the parsed header of an MRC file",
		ArgsUsage: "<file.mrc>",
		Flags: append(commonFlags(&configPath, &logLevel),
			&cli.BoolFlag{Name: "json", Usage: "emit JSON", Destination: &asJSON},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() < 1 {
				return errors.New("missing file argument")
			}
			log := newLogger(logLevel)

			d, err := openDecoder(c.Args().First(), configPath, log)
			if err != nil {
				return err
			}
			defer d.Close()

			h := d.Header()
			if asJSON {
				out, err := json.MarshalIndent(headerView(d), "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			printHeader(d, h)
			return nil
		},
	}
	return cmd
}

func openDecoder(path, configPath string, log *slog.Logger) (*mrc.Decoder, error) {
	limits, err := loadLimits(configPath)
	if err != nil {
		return nil, err
	}
	log.Debug("opening file", "path", path,
		"decoding_buffer_size", limits.DecodingBufferSize)

	d, err := mrc.Open(path, mrc.WithLimits(limits))
	if err != nil {
		return nil, err
	}
	nx, ny, nz := d.Dimensions()
	log.Debug("parsed header", "nx", nx, "ny", ny, "nz", nz,
		"format", d.PixelFormat().String())
	return d, nil
}

func headerView(d *mrc.Decoder) headerJSON {
	h := d.Header()
	return headerJSON{
		Dimensions: [3]int32{h.NX, h.NY, h.NZ},
		Mode:       h.Mode,
		Format:     d.PixelFormat().String(),
		Start:      [3]int32{h.NXStart, h.NYStart, h.NZStart},
		Intervals:  [3]int32{h.MX, h.MY, h.MZ},
		CellLength: [3]float32{h.XLen, h.YLen, h.ZLen},
		CellAngles: [3]float32{h.Alpha, h.Beta, h.Gamma},
		AxisOrder:  [3]int32{h.MapC, h.MapR, h.MapS},
		Min:        h.AMin,
		Max:        h.AMax,
		Mean:       h.AMean,
		RMS:        h.RMS,
		SpaceGroup: h.ISpg,
		Origin:     [3]float32{h.OriginX, h.OriginY, h.OriginZ},
		ByteOrder:  fmt.Sprintf("%v", h.ByteOrder),
		ExtType:    string(h.ExtType),
		NVersion:   h.NVersion,
		ExtBytes:   len(h.Extended),
		Labels:     h.Labels,
	}
}

func printHeader(d *mrc.Decoder, h *mrc.Header) {
	fmt.Printf("Dimensions:   %d x %d x %d\n", h.NX, h.NY, h.NZ)
	fmt.Printf("Pixel format: %s\n", d.PixelFormat())
	fmt.Printf("Byte order:   %s\n", h.ByteOrder)
	fmt.Printf("Space group:  %d (%s)\n", h.ISpg, classify(h))

	vx, vy, vz := h.VoxelSize()
	fmt.Printf("Voxel size:   %.4f x %.4f x %.4f A\n", vx, vy, vz)
	fmt.Printf("Cell angles:  %.2f %.2f %.2f\n", h.Alpha, h.Beta, h.Gamma)
	fmt.Printf("Axis order:   %d %d %d\n", h.MapC, h.MapR, h.MapS)
	fmt.Printf("Origin:       %.2f %.2f %.2f\n", h.OriginX, h.OriginY, h.OriginZ)

	fmt.Printf("Density:      min=%g max=%g mean=%g rms=%g\n",
		h.AMin, h.AMax, h.AMean, h.RMS)
	if !h.DensityRangeDetermined() || !h.MeanDetermined() || !h.RMSDetermined() {
		fmt.Println("              (some statistics are flagged as undetermined)")
	}

	if h.ExtType != "" {
		fmt.Printf("Ext header:   %s v%d, %d bytes\n", h.ExtType, h.NVersion, len(h.Extended))
	} else if len(h.Extended) > 0 {
		fmt.Printf("Ext header:   %d opaque bytes\n", len(h.Extended))
	}
	for i, label := range h.Labels {
		fmt.Printf("Label %d:      %s\n", i, label)
	}
}

func classify(h *mrc.Header) string {
	switch {
	case h.IsImage():
		return "2D image or image stack"
	case h.IsVolumeStack():
		return "volume stack"
	default:
		return "volume"
	}
}
