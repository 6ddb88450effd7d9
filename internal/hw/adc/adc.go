// Package adc defines the AdcChannel capability interface from §6 and its
// three backends per §9's design notes: a real SPI-transport backend, a
// replay backend for tests, and a synthetic generator for property tests.
package adc

// Channel abstracts one ADC transaction: §6 requires implementations to
// hide SPI command framing behind ReadSample(channel) -> sample.
type Channel interface {
	// ReadSample performs one transaction for channelID and returns the raw
	// 12-bit sample. A transport failure is a TransportError (§7): the
	// caller drops the window and continues.
	ReadSample(channelID int) (uint16, error)
}
