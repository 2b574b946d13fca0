// Package audio converts uploaded audio into interleaved 16-bit samples and
// writes stego output back out as WAV.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/tosone/minimp3"

	"github.com/Dharsan2024/AudioCryptor/models"
	"github.com/Dharsan2024/AudioCryptor/mp3parser"
)

const (
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatFLAC = "flac"

	// OutputBitDepth is the sample width of every decoded buffer and every WAV written.
	OutputBitDepth = 16

	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// flacSamplesPerByte bounds the preallocation for a FLAC upload.
	flacSamplesPerByte = 2
)

var (
	ErrUnsupportedAudio = fmt.Errorf("%w: unsupported audio format", models.ErrInvalidArgument)
	ErrNoSamples        = fmt.Errorf("%w: audio contains no samples", models.ErrInvalidArgument)
)

type AudioDecoder struct{}

func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{}
}

var defaultDecoder = NewAudioDecoder()

// LoadSamples reads and decodes the audio file at path.
func LoadSamples(path string) ([]int16, *models.AudioMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeBytes(context.Background(), data, filepath.Base(path))
}

// DecodeBytes decodes data, using name only when the content itself is ambiguous.
func DecodeBytes(ctx context.Context, data []byte, name string) ([]int16, *models.AudioMetadata, error) {
	return defaultDecoder.Decode(ctx, data, name)
}

// DetectFormat sniffs the container from magic bytes and falls back to the
// file extension.
func DetectFormat(data []byte, name string) (string, error) {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return FormatFLAC, nil
	case mp3parser.LooksLikeMP3(data):
		return FormatMP3, nil
	}

	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); ext {
	case FormatMP3:
		return FormatMP3, nil
	case FormatWAV, "wave", FormatFLAC:
		// extension claims a container whose magic bytes are missing
		return "", fmt.Errorf("%w: %q is not a valid %s file", ErrUnsupportedAudio, name, ext)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAudio, name)
}

func (ad *AudioDecoder) Decode(ctx context.Context, data []byte, name string) ([]int16, *models.AudioMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	format, err := DetectFormat(data, name)
	if err != nil {
		return nil, nil, err
	}

	var (
		samples []int16
		meta    *models.AudioMetadata
	)
	switch format {
	case FormatWAV:
		samples, meta, err = ad.DecodeWAV(data)
	case FormatMP3:
		samples, meta, err = ad.DecodeMP3(data)
	case FormatFLAC:
		samples, meta, err = ad.DecodeFLAC(ctx, data)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, ErrNoSamples
	}

	meta.TotalSamples = len(samples)
	if meta.SampleRate > 0 && meta.Channels > 0 {
		meta.Duration = float64(len(samples)/meta.Channels) / float64(meta.SampleRate)
	}
	return samples, meta, nil
}

func (ad *AudioDecoder) DecodeWAV(wavData []byte) ([]int16, *models.AudioMetadata, error) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedAudio)
	}
	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, nil, fmt.Errorf("%w: WAV encoding %d is not integer PCM", ErrUnsupportedAudio, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		// 8-bit WAV is unsigned
		if bitDepth == 8 {
			v -= 128
		}
		samples[i] = scaleTo16(v, bitDepth)
	}

	metadata := &models.AudioMetadata{
		Format:         FormatWAV,
		SampleRate:     int(decoder.SampleRate),
		Channels:       int(decoder.NumChans),
		SourceBitDepth: bitDepth,
	}
	readWAVInfo(wavData, metadata)

	return samples, metadata, nil
}

// readWAVInfo copies LIST/INFO tags. A second decoder is used because
// metadata parsing consumes the whole stream.
func readWAVInfo(wavData []byte, metadata *models.AudioMetadata) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	decoder.ReadMetadata()
	if decoder.Metadata == nil {
		return
	}
	metadata.Title = decoder.Metadata.Title
	metadata.Artist = decoder.Metadata.Artist
	metadata.Album = decoder.Metadata.Product
	metadata.Genre = decoder.Metadata.Genre
	metadata.Year = decoder.Metadata.CreationDate
}

func (ad *AudioDecoder) DecodeMP3(mp3Data []byte) ([]int16, *models.AudioMetadata, error) {
	decoder, data, err := minimp3.DecodeFull(mp3Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode MP3: %w", err)
	}
	defer decoder.Close()

	if decoder.Channels == 0 || decoder.SampleRate == 0 {
		return nil, nil, fmt.Errorf("%w: no decodable MP3 frames", ErrUnsupportedAudio)
	}

	// minimp3 yields little-endian 16-bit PCM
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	metadata := &models.AudioMetadata{
		Format:         FormatMP3,
		SampleRate:     decoder.SampleRate,
		Channels:       decoder.Channels,
		SourceBitDepth: OutputBitDepth,
	}
	if info, err := mp3parser.Probe(mp3Data); err == nil {
		metadata.Bitrate = info.AverageBitrate
		if tag := info.ID3v1; tag != nil {
			metadata.Title, metadata.Artist, metadata.Album, metadata.Year = tag.Title, tag.Artist, tag.Album, tag.Year
		}
	}
	readID3Tags(mp3Data, metadata)

	return samples, metadata, nil
}

// readID3Tags overrides ID3v1 values with any non-empty ID3v2 frames.
func readID3Tags(mp3Data []byte, metadata *models.AudioMetadata) {
	tag, err := id3v2.ParseReader(bytes.NewReader(mp3Data), id3v2.Options{Parse: true})
	if err != nil || tag == nil {
		return
	}
	defer tag.Close()

	for _, f := range []struct {
		dst *string
		val string
	}{
		{&metadata.Title, tag.Title()},
		{&metadata.Artist, tag.Artist()},
		{&metadata.Album, tag.Album()},
		{&metadata.Genre, tag.Genre()},
		{&metadata.Year, tag.Year()},
	} {
		if f.val != "" {
			*f.dst = f.val
		}
	}
}

func (ad *AudioDecoder) DecodeFLAC(ctx context.Context, flacData []byte) ([]int16, *models.AudioMetadata, error) {
	stream, err := flac.New(bytes.NewReader(flacData))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid FLAC stream: %v", ErrUnsupportedAudio, err)
	}
	defer stream.Close()

	bitDepth := int(stream.Info.BitsPerSample)
	channels := int(stream.Info.NChannels)

	// NSamples comes from the upload; 0 means unknown
	declared := stream.Info.NSamples * uint64(channels)
	if declared > math.MaxInt {
		return nil, nil, fmt.Errorf("%w: FLAC stream declares %d samples per channel", ErrUnsupportedAudio, stream.Info.NSamples)
	}
	samples := make([]int16, 0, min(declared, uint64(len(flacData))*flacSamplesPerByte))

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode FLAC frame: %w", err)
		}

		// interleave channels the way PCM containers store them
		for i := range int(frame.BlockSize) {
			for _, sub := range frame.Subframes {
				samples = append(samples, scaleTo16(int(sub.Samples[i]), bitDepth))
			}
		}
		if declared > 0 && uint64(len(samples)) > declared {
			return nil, nil, fmt.Errorf("%w: FLAC frames exceed the %d samples the stream declares", ErrUnsupportedAudio, declared)
		}
	}

	metadata := &models.AudioMetadata{
		Format:         FormatFLAC,
		SampleRate:     int(stream.Info.SampleRate),
		Channels:       channels,
		SourceBitDepth: bitDepth,
	}
	return samples, metadata, nil
}

// scaleTo16 maps a signed sample of the given bit depth onto the int16 range.
func scaleTo16(v, bitDepth int) int16 {
	switch {
	case bitDepth > OutputBitDepth:
		return int16(v >> (bitDepth - OutputBitDepth))
	case bitDepth < OutputBitDepth:
		return int16(v << (OutputBitDepth - bitDepth))
	}
	return int16(v)
}

// EncodeWAV renders samples as a 16-bit PCM WAV, carrying tags over as an INFO chunk.
func (ad *AudioDecoder) EncodeWAV(samples []int16, metadata *models.AudioMetadata) ([]byte, error) {
	if metadata == nil || metadata.Channels < 1 || metadata.SampleRate < 1 {
		return nil, fmt.Errorf("%w: WAV output needs a sample rate and channel count", models.ErrInvalidArgument)
	}
	if len(samples)%metadata.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into %d channels", models.ErrInvalidArgument, len(samples), metadata.Channels)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: metadata.Channels,
			SampleRate:  metadata.SampleRate,
		},
		Data:           data,
		SourceBitDepth: OutputBitDepth,
	}

	// Create a temporary file for WAV encoding since wav.NewEncoder needs WriteSeeker
	tempFile, err := os.CreateTemp("", "audiocryptor_*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	encoder := wav.NewEncoder(tempFile, metadata.SampleRate, OutputBitDepth, metadata.Channels, wavFormatPCM)
	encoder.Metadata = infoChunk(metadata)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %w", err)
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind WAV data: %w", err)
	}
	wavData, err := io.ReadAll(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}
	return wavData, nil
}

func infoChunk(metadata *models.AudioMetadata) *wav.Metadata {
	if metadata.Title == "" && metadata.Artist == "" && metadata.Album == "" && metadata.Genre == "" && metadata.Year == "" {
		return nil
	}
	return &wav.Metadata{
		Title:        infoValue(metadata.Title),
		Artist:       infoValue(metadata.Artist),
		Product:      infoValue(metadata.Album),
		Genre:        infoValue(metadata.Genre),
		CreationDate: infoValue(metadata.Year),
	}
}

// infoValue pads s so its NUL-terminated entry has an even size. The wav
// encoder writes no pad byte but its decoder skips one after odd entries.
func infoValue(s string) string {
	if s != "" && len(s)%2 == 0 {
		return s + "\x00"
	}
	return s
}

// EncodeWAV renders samples with the default decoder.
func EncodeWAV(samples []int16, metadata *models.AudioMetadata) ([]byte, error) {
	return defaultDecoder.EncodeWAV(samples, metadata)
}

// SaveSamples writes samples to path as a 16-bit PCM WAV.
func SaveSamples(samples []int16, metadata *models.AudioMetadata, path string) error {
	wavData, err := EncodeWAV(samples, metadata)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, wavData, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DescribeMetadata renders a one-line summary for terminal output.
func DescribeMetadata(metadata *models.AudioMetadata) string {
	if metadata == nil {
		return "unknown audio"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %d Hz, %d ch, %d-bit, %.2fs, %d samples",
		metadata.Format, metadata.SampleRate, metadata.Channels, metadata.SourceBitDepth, metadata.Duration, metadata.TotalSamples)
	if metadata.Bitrate > 0 {
		fmt.Fprintf(&b, ", %d kbps", metadata.Bitrate/1000)
	}
	switch {
	case metadata.Artist != "" && metadata.Title != "":
		fmt.Fprintf(&b, " (%s - %s)", metadata.Artist, metadata.Title)
	case metadata.Title != "":
		fmt.Fprintf(&b, " (%s)", metadata.Title)
	}
	return b.String()
}
