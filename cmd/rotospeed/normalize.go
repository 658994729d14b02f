package main

import (
	"errors"
	"io"

	"github.com/cwbudde/rotospeed/dsp/normalize"
	"github.com/cwbudde/rotospeed/internal/config"
	"github.com/cwbudde/rotospeed/internal/sampleio"
)

func runNormalize(args []string, _, stderr io.Writer) (err error) {
	def := config.Default()
	fs, g := newFlagSet("normalize", "normalize [flags] file", stderr)
	srcMax := fs.Float64("src-max", def.Normalize.SrcMax, "input full scale")
	dstMax := fs.Uint("dst-max", uint(def.Normalize.DstMax), "largest output integer")
	out := fs.String("o", "", "output file (default <file>.normalized)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := inputFile(fs)
	if err != nil {
		return err
	}

	s, err := g.open(stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.close()) }()

	set := setFlags(fs)
	if set["src-max"] {
		s.cfg.Normalize.SrcMax = *srcMax
	}
	if set["dst-max"] {
		if *dstMax > 1<<32-1 {
			return errors.New("-dst-max exceeds 32 bits")
		}
		s.cfg.Normalize.DstMax = uint32(*dstMax)
	}

	series, err := s.read(input)
	if err != nil {
		return err
	}

	values, err := normalize.Normalize(series, s.cfg.Normalize.SrcMax, s.cfg.Normalize.DstMax)
	if err != nil {
		return err
	}

	return s.write(outputPath(input, *out, "normalized"), func(w io.Writer) error {
		return sampleio.WriteIntegers(w, values)
	})
}
