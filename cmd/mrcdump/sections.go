package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-mrc/mrc"
)

func sectionsCmd() *cli.Command {
	var (
		configPath string
		logLevel   string
		limit      int
	)

	return &cli.Command{
		Name:      "sections",
		Usage:     "Decode all sections sequentially and print density statistics",
		ArgsUsage: "<file.mrc>",
		Flags: append(commonFlags(&configPath, &logLevel),
			&cli.IntFlag{Name: "limit", Usage: "stop after N sections (0 = all)", Destination: &limit},
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

			for i := 0; ; i++ {
				if limit > 0 && i >= limit {
					break
				}
				buf, err := d.DecodeNextSection()
				if errors.Is(err, mrc.ErrEndOfVolume) {
					break
				}
				if err != nil {
					return err
				}
				lo, hi, mean := bufferStats(buf)
				fmt.Printf("section %4d: elements=%d min=%g max=%g mean=%g\n",
					i, buf.Len(), lo, hi, mean)
			}
			return nil
		},
	}
}

func sectionCmd() *cli.Command {
	var (
		configPath string
		logLevel   string
		index      int
	)

	return &cli.Command{
		Name:      "section",
		Usage:     "Decode a single section by index (random access)",
		ArgsUsage: "<file.mrc>",
		Flags: append(commonFlags(&configPath, &logLevel),
			&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Usage: "section index", Destination: &index},
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

			buf, err := d.DecodeSection(index)
			if err != nil {
				return err
			}
			lo, hi, mean := bufferStats(buf)
			fmt.Printf("section %d: elements=%d min=%g max=%g mean=%g\n",
				index, buf.Len(), lo, hi, mean)
			return nil
		},
	}
}

// bufferStats computes min/max/mean over a decoded buffer, widening every
// element kind to float64.
func bufferStats(buf *mrc.DecodingBuffer) (lo, hi, mean float64) {
	n := buf.Len()
	if n == 0 {
		return 0, 0, 0
	}

	var sum float64
	first := true
	visit := func(v float64) {
		if first {
			lo, hi = v, v
			first = false
		} else {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		sum += v
	}

	switch data := buf.Data().(type) {
	case []int8:
		for _, v := range data {
			visit(float64(v))
		}
	case []int16:
		for _, v := range data {
			visit(float64(v))
		}
	case []int32:
		for _, v := range data {
			visit(float64(v))
		}
	case []uint8:
		for _, v := range data {
			visit(float64(v))
		}
	case []uint16:
		for _, v := range data {
			visit(float64(v))
		}
	case []float32:
		for _, v := range data {
			visit(float64(v))
		}
	case []float64:
		for _, v := range data {
			visit(v)
		}
	}
	return lo, hi, sum / float64(n)
}
