// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

// Config holds the tunables that shape one connection's framing, window,
// and retransmission behavior.
type Config struct {
	MaxFrameSize        int
	WindowSize          int
	RetransmitTimeoutMs int64
	MaxRetransmit       uint8
	EnableChecksum      bool
	FragmentTimeoutMs   int64
	MaxPendingFragments int
	DelayedAckMs        int64
}

// Option mutates a Config during construction.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		MaxFrameSize:        MaxFrameSize,
		WindowSize:          64,
		RetransmitTimeoutMs: 1000,
		MaxRetransmit:       5,
		EnableChecksum:      true,
		FragmentTimeoutMs:   5000,
		MaxPendingFragments: 16,
		DelayedAckMs:        40,
	}
}

// NewConfig builds a Config from the package defaults, applying opts in
// order.
func NewConfig(opts ...Option) *Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithMaxFrameSize sets the header+payload upper bound for a single wire
// frame. Must exceed FrameHeaderSize.
func WithMaxFrameSize(size int) Option {
	return func(c *Config) { c.MaxFrameSize = size }
}

// WithWindowSize sets the number of concurrent in-flight frames allowed.
func WithWindowSize(size int) Option {
	return func(c *Config) { c.WindowSize = size }
}

// WithRetransmitTimeout sets the initial base retransmit timeout.
func WithRetransmitTimeout(ms int64) Option {
	return func(c *Config) { c.RetransmitTimeoutMs = ms }
}

// WithMaxRetransmit caps the number of retransmit attempts per frame
// before it is given up on.
func WithMaxRetransmit(n uint8) Option {
	return func(c *Config) { c.MaxRetransmit = n }
}

// WithChecksum toggles whether the receiver verifies the frame CRC.
// Disabling it is only appropriate over a transport that already
// guarantees integrity.
func WithChecksum(enabled bool) Option {
	return func(c *Config) { c.EnableChecksum = enabled }
}

// WithFragmentTimeout sets how long after its first fragment arrives an
// incomplete reassembly may remain before its slot is reclaimed.
func WithFragmentTimeout(ms int64) Option {
	return func(c *Config) { c.FragmentTimeoutMs = ms }
}

// WithMaxPendingFragments sets the number of concurrent reassembly slots.
func WithMaxPendingFragments(n int) Option {
	return func(c *Config) { c.MaxPendingFragments = n }
}

// WithDelayedAck sets the piggyback deadline for standalone ACK frames.
// Zero disables delayed ACKs.
func WithDelayedAck(ms int64) Option {
	return func(c *Config) { c.DelayedAckMs = ms }
}

// MaxPayloadSize returns the largest fragment payload a frame of
// MaxFrameSize can carry.
func (c *Config) MaxPayloadSize() int {
	size := c.MaxFrameSize - FrameHeaderSize
	if size < 0 {
		return 0
	}
	return size
}

// LowLatencyConfig returns a preset favoring small frames, short timeouts,
// and a small window — suited to interactive traffic.
func LowLatencyConfig(opts ...Option) *Config {
	base := []Option{
		WithMaxFrameSize(288),
		WithWindowSize(16),
		WithRetransmitTimeout(200),
		WithMaxRetransmit(8),
		WithFragmentTimeout(1000),
		WithMaxPendingFragments(8),
		WithDelayedAck(0),
	}
	return NewConfig(append(base, opts...)...)
}

// HighThroughputConfig returns a preset favoring large frames, long
// timeouts, and a large window — suited to bulk transfer.
func HighThroughputConfig(opts ...Option) *Config {
	base := []Option{
		WithMaxFrameSize(MaxFrameSize),
		WithWindowSize(256),
		WithRetransmitTimeout(2000),
		WithMaxRetransmit(4),
		WithFragmentTimeout(10000),
		WithMaxPendingFragments(64),
		WithDelayedAck(100),
	}
	return NewConfig(append(base, opts...)...)
}
