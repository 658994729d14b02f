// Command rotospeed processes raw speed-sensor dumps: it detects rotational
// speed, resamples, filters, computes spectra, normalizes to integers and
// prints filter cutoff sweeps.
//
// Usage:
//
//	rotospeed <command> [flags] [file]
//
// Every command reads one sample per line (period or comma decimals) and
// writes its result next to the input file.
//
// Examples:
//
//	rotospeed detect -s 16384 dump.txt          # dump.txt.detect
//	rotospeed detect -scale 2 -format csv dump.txt
//	rotospeed resample -s 4 dump.txt            # dump.txt.resampled
//	rotospeed filter dump.txt                   # dump.txt.filtered, dump.txt.spectrum
//	rotospeed spectrum -p 4096 dump.txt         # dump.txt.spectre
//	rotospeed normalize dump.txt                # dump.txt.normalized
//	rotospeed freqlist -min 1500 -max 15000
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"detect", "detect rotational speed per frame", runDetect},
	{"resample", "decimate by 2, 3, 4 or 8 with the FIR tables", runResample},
	{"filter", "apply biquad lowpass/highpass passes and write a quick-look spectrum", runFilter},
	{"spectrum", "write the magnitude spectrum of the first points", runSpectrum},
	{"normalize", "rescale to unsigned integers", runNormalize},
	{"freqlist", "print the geometric cutoff sweep", runFreqlist},
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("missing command")
	}

	name := args[0]
	if name == "-h" || name == "-help" || name == "help" {
		usage(stderr)
		return flag.ErrHelp
	}

	for _, c := range commands {
		if c.name == name {
			return c.run(args[1:], stdout, stderr)
		}
	}

	usage(stderr)
	return fmt.Errorf("unknown command %q", name)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: rotospeed <command> [flags] [file]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'rotospeed <command> -h' for command flags.\n")
}
