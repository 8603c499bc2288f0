package tasks

import "github.com/khinvi/spotify-apple-music-converter/internal/models"

// ChannelProgress adapts the synchronous progress callback onto a buffered
// channel. Sends never block; when the consumer falls behind, intermediate
// snapshots are dropped rather than stalling the conversion.
type ChannelProgress struct {
	updates chan models.ConversionProgress
}

// NewChannelProgress creates an adapter with the given buffer size.
func NewChannelProgress(buffer int) *ChannelProgress {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelProgress{updates: make(chan models.ConversionProgress, buffer)}
}

// Callback returns the ProgressFunc to hand to the converter.
func (c *ChannelProgress) Callback() ProgressFunc {
	return func(p models.ConversionProgress) {
		select {
		case c.updates <- p:
		default:
		}
	}
}

// Updates returns the channel progress snapshots arrive on.
func (c *ChannelProgress) Updates() <-chan models.ConversionProgress {
	return c.updates
}

// Close closes the updates channel. Call only after the conversion returned.
func (c *ChannelProgress) Close() {
	close(c.updates)
}
