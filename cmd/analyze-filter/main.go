// Command analyze-filter designs a lowpass filter and reports its frequency
// response: passband ripple, transition band, and stopband attenuation.
//
// Usage:
//
//	analyze-filter -rate 48000 -cutoff 2000 -resolution 50
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	lowpass "github.com/tphakala/go-streaming-lowpass"
	"github.com/tphakala/go-streaming-lowpass/internal/firdesign"
)

const (
	// CLI defaults
	defaultSampleRate   = 48000.0
	defaultCutoffHz     = 2000.0
	defaultResolutionHz = 50.0

	// Response evaluation
	responsePoints = 2048

	// Display
	tableRows = 24
	msPerSec  = 1000
)

func main() {
	rate := flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
	cutoff := flag.Float64("cutoff", defaultCutoffHz, "Passband edge in Hz")
	transition := flag.Float64("transition", lowpass.DefaultTransitionFraction,
		"Transition fraction: stopband edge at cutoff*(1+fraction)")
	resolution := flag.Float64("resolution", defaultResolutionHz, "Frequency resolution in Hz")
	table := flag.Bool("table", false, "Print the full magnitude table")
	flag.Parse()

	f, err := lowpass.New[float64](&lowpass.Config{
		SampleRate:          *rate,
		Cutoff:              *cutoff,
		TransitionFraction:  *transition,
		FrequencyResolution: *resolution,
	})
	if err != nil {
		log.Fatal(err)
	}

	spec := firdesign.Spec{
		Cutoff:             *cutoff,
		TransitionFraction: *transition,
		TapCount:           f.TapCount(),
		SampleRate:         *rate,
	}

	coeffs, err := firdesign.Design(spec)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Lowpass Filter Design ===")
	fmt.Printf("  Sample rate:    %.1f Hz\n", *rate)
	fmt.Printf("  Passband edge:  %.1f Hz\n", *cutoff)
	fmt.Printf("  Stopband edge:  %.1f Hz\n", spec.StopbandEdge())
	fmt.Printf("  Taps:           %d\n", f.TapCount())
	fmt.Printf("  Group delay:    %.2f ms\n", f.GroupDelay()*msPerSec)

	var dcGain float64
	for _, c := range coeffs {
		dcGain += c
	}
	fmt.Printf("  DC gain:        %.12f\n", dcGain)

	resp := firdesign.ComputeResponse(coeffs, responsePoints)

	// Band summary: worst-case deviation in the passband, peak in the stopband.
	var passRippleDB, stopPeakDB float64
	stopPeakDB = math.Inf(-1)
	passEdge := *cutoff / *rate
	stopEdge := spec.StopbandEdge() / *rate

	for i, freq := range resp.Frequencies {
		db := firdesign.MagnitudeDB(resp.Magnitude[i])
		switch {
		case freq <= passEdge:
			if dev := math.Abs(db); dev > passRippleDB {
				passRippleDB = dev
			}
		case freq >= stopEdge:
			if db > stopPeakDB {
				stopPeakDB = db
			}
		}
	}

	fmt.Printf("\n  Passband ripple:      %.3f dB\n", passRippleDB)
	fmt.Printf("  Stopband attenuation: %.1f dB\n", -stopPeakDB)

	if *table {
		fmt.Println("\n  Frequency (Hz)   Magnitude (dB)")
		step := len(resp.Frequencies) / tableRows
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(resp.Frequencies); i += step {
			fmt.Printf("  %12.1f   %12.2f\n",
				resp.Frequencies[i]*(*rate), firdesign.MagnitudeDB(resp.Magnitude[i]))
		}
	}
}
