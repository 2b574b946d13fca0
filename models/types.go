// Package models contain needed models
package models

// StegoConfig represents configuration for steganography operations
type StegoConfig struct {
	LSBBits int
	Scatter bool
}

// EncryptedMessage is the output of the crypto layer and the input of the
// embedding engine. Salt and nonce are public and travel in the header.
type EncryptedMessage struct {
	Ciphertext []byte
	Salt       [16]byte
	Nonce      [12]byte
}

// CapacityReport describes how much can be hidden in a sample buffer
type CapacityReport struct {
	SampleCount     int `json:"sample_count"`
	LSBBits         int `json:"lsb_bits"`
	CapacityBytes   int `json:"capacity_bytes"`
	MaxMessageBytes int `json:"max_message_bytes"`
}

// Analysis is the result of probing a sample buffer for an embedded payload
type Analysis struct {
	TotalSamples              int     `json:"total_samples"`
	LSBOnesRatio              float64 `json:"lsb_ones_ratio"`
	LSBDistributionSuspicious bool    `json:"lsb_distribution_suspicious"`
	HasMagic                  bool    `json:"has_magic"`
	HasValidHeader            bool    `json:"has_valid_header"`
	PayloadLength             int     `json:"payload_length,omitempty"`
	Scatter                   bool    `json:"scatter,omitempty"`
	EstimatedCapacity1LSB     int     `json:"estimated_capacity_1lsb"`
	EstimatedCapacity2LSB     int     `json:"estimated_capacity_2lsb"`
}

// AudioMetadata represents metadata about an audio file
type AudioMetadata struct {
	Format         string  `json:"format"`
	SampleRate     int     `json:"sample_rate"`
	Channels       int     `json:"channels"`
	SourceBitDepth int     `json:"source_bit_depth"`
	Duration       float64 `json:"duration"`
	TotalSamples   int     `json:"total_samples"`
	Bitrate        int     `json:"bitrate,omitempty"`
	Title          string  `json:"title,omitempty"`
	Artist         string  `json:"artist,omitempty"`
	Album          string  `json:"album,omitempty"`
	Genre          string  `json:"genre,omitempty"`
	Year           string  `json:"year,omitempty"`
}

// EncodeResponse is returned when embedding fails; on success the stego WAV is streamed
type EncodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DecodeResponse represents the response after extraction
type DecodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CapacityResponse represents the response of a capacity query
type CapacityResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Capacity *CapacityReport `json:"capacity,omitempty"`
	Audio    *AudioMetadata  `json:"audio,omitempty"`
}

// AnalyzeResponse represents the response of an analysis request
type AnalyzeResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
}
