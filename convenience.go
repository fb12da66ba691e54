package lowpass

// Common sample rates for convenience constructors.
const (
	// RateVibration is a common vibration-sensor acquisition rate.
	RateVibration = 25600

	// RateAudioCD is the CD quality sample rate.
	RateAudioCD = 44100

	// RateAudioDAT is the DAT/DVD sample rate.
	RateAudioDAT = 48000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000
)

// DefaultFrequencyResolution gives a moderate filter length (about one second
// of group delay per 100 taps at 10 kHz) suitable for general smoothing.
const DefaultFrequencyResolution = 100.0

// NewMono creates a single-channel float64 filter with sensible defaults:
// the default transition fraction and frequency resolution.
func NewMono(sampleRate, cutoff float64) (*StreamingFilter[float64], error) {
	return New[float64](&Config{
		SampleRate:          sampleRate,
		Cutoff:              cutoff,
		FrequencyResolution: DefaultFrequencyResolution,
	})
}

// NewMonoFloat32 is the float32 equivalent of NewMono. Use it when the sample
// stream is already float32 and 32-bit precision is sufficient; the
// convolution runs roughly twice as fast under SIMD.
func NewMonoFloat32(sampleRate, cutoff float64) (*StreamingFilter[float32], error) {
	return New[float32](&Config{
		SampleRate:          sampleRate,
		Cutoff:              cutoff,
		FrequencyResolution: DefaultFrequencyResolution,
	})
}

// NewStereo creates a two-channel interleaved float64 filter with defaults.
func NewStereo(sampleRate, cutoff float64) (*StreamingFilter[float64], error) {
	return New[float64](&Config{
		SampleRate:          sampleRate,
		Cutoff:              cutoff,
		FrequencyResolution: DefaultFrequencyResolution,
		Channels:            stereoChannels,
	})
}

// FilterMono is a convenience function for one-shot mono filtering.
// It creates a filter, processes the whole input as a single chunk, and
// returns the result. The leading warm-up region of the output reflects
// zero-padded history.
func FilterMono(input []float64, sampleRate, cutoff float64) ([]float64, error) {
	f, err := NewMono(sampleRate, cutoff)
	if err != nil {
		return nil, err
	}

	output, _, err := f.Filter(input, nil)
	return output, err
}
