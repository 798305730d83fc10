package ports

import "corrlab/domain/sample"

// UniformSource yields uniform draws in [0, 1). *math/rand.Rand satisfies it.
type UniformSource interface {
	Float64() float64
}

// NormalSource yields approximately standard-normal draws (mean 0, variance 1)
type NormalSource interface {
	// NextStandardNormal returns the next draw; it never returns NaN or an infinity
	NextStandardNormal() float64
}

// SampleSynthesizer builds a bivariate sample whose population correlation is
// targetCorrelation, with both axes rescaled into [rangeMin, rangeMax]
type SampleSynthesizer interface {
	Generate(targetCorrelation float64, n int, rangeMin, rangeMax float64) sample.Sample
}
