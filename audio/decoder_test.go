package audio

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dharsan2024/AudioCryptor/models"
)

// sine returns an interleaved stereo 440 Hz tone at 16-bit scale.
func sine(frames, channels int) []int16 {
	samples := make([]int16, frames*channels)
	for i := range frames {
		v := int16(12000 * math.Sin(2*math.Pi*440*float64(i)/44100))
		for ch := range channels {
			samples[i*channels+ch] = v
		}
	}
	return samples
}

// rawWAV writes data with an arbitrary bit depth through go-audio/wav.
func rawWAV(t *testing.T, bitDepth, channels int, data []int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 8000, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: 8000},
		Data:   data,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	return out
}

func TestEncodeDecodeWAV_RoundTrip(t *testing.T) {
	samples := sine(4410, 2)
	meta := &models.AudioMetadata{SampleRate: 44100, Channels: 2}

	data, err := EncodeWAV(samples, meta)
	require.NoError(t, err)

	got, gotMeta, err := DecodeBytes(context.Background(), data, "cover.wav")
	require.NoError(t, err)
	assert.Equal(t, samples, got)
	assert.Equal(t, FormatWAV, gotMeta.Format)
	assert.Equal(t, 44100, gotMeta.SampleRate)
	assert.Equal(t, 2, gotMeta.Channels)
	assert.Equal(t, 16, gotMeta.SourceBitDepth)
	assert.Equal(t, len(samples), gotMeta.TotalSamples)
	assert.InDelta(t, 0.1, gotMeta.Duration, 1e-9)
}

func TestEncodeWAV_CarriesTags(t *testing.T) {
	meta := &models.AudioMetadata{
		SampleRate: 22050,
		Channels:   1,
		Title:      "Carrier",
		Artist:     "Tone Generator",
		Album:      "Tests",
		Genre:      "Noise",
		Year:       "2024",
	}
	data, err := EncodeWAV(sine(2205, 1), meta)
	require.NoError(t, err)

	_, got, err := DecodeBytes(context.Background(), data, "")
	require.NoError(t, err)
	assert.Equal(t, "Carrier", got.Title)
	assert.Equal(t, "Tone Generator", got.Artist)
	assert.Equal(t, "Tests", got.Album)
	assert.Equal(t, "Noise", got.Genre)
	assert.Equal(t, "2024", got.Year)
}

func TestEncodeWAV_InvalidMetadata(t *testing.T) {
	_, err := EncodeWAV(sine(10, 1), nil)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = EncodeWAV(sine(10, 1), &models.AudioMetadata{SampleRate: 8000})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = EncodeWAV(make([]int16, 3), &models.AudioMetadata{SampleRate: 8000, Channels: 2})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestDecodeWAV_NormalisesBitDepth(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		in       []int
		want     []int16
	}{
		{"8-bit unsigned", 8, []int{0, 128, 255, 129}, []int16{-32768, 0, 32512, 256}},
		{"24-bit", 24, []int{0x7FFFFF, -0x800000, 256, -256}, []int16{32767, -32768, 1, -1}},
		{"32-bit", 32, []int{0x7FFFFFFF, -0x80000000, 65536, -65536}, []int16{32767, -32768, 1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, meta, err := NewAudioDecoder().DecodeWAV(rawWAV(t, tt.bitDepth, 1, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.bitDepth, meta.SourceBitDepth)
		})
	}
}

func TestScaleTo16(t *testing.T) {
	assert.Equal(t, int16(-32768), scaleTo16(-2048, 12))
	assert.Equal(t, int16(16), scaleTo16(1, 12))
	assert.Equal(t, int16(-1), scaleTo16(-16, 20))
	assert.Equal(t, int16(1234), scaleTo16(1234, 16))
}

func TestDetectFormat(t *testing.T) {
	wavData, err := EncodeWAV(sine(100, 1), &models.AudioMetadata{SampleRate: 8000, Channels: 1})
	require.NoError(t, err)

	format, err := DetectFormat(wavData, "renamed.mp3")
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, format)

	format, err = DetectFormat([]byte("fLaC\x00\x00\x00\x22"), "")
	require.NoError(t, err)
	assert.Equal(t, FormatFLAC, format)

	format, err = DetectFormat([]byte{0xFF, 0xFB, 0x90, 0x00}, "clip.MP3")
	require.NoError(t, err)
	assert.Equal(t, FormatMP3, format)

	_, err = DetectFormat([]byte("not audio at all"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = DetectFormat([]byte("not audio at all"), "fake.wav")
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
}

func TestDecodeBytes_RejectsGarbage(t *testing.T) {
	_, _, err := DecodeBytes(context.Background(), []byte("RIFF\x04\x00\x00\x00WAVE"), "bad.wav")
	assert.ErrorIs(t, err, ErrUnsupportedAudio)

	_, _, err = DecodeBytes(context.Background(), []byte("fLaC"), "bad.flac")
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
}

func TestDecodeBytes_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DecodeBytes(ctx, nil, "x.wav")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadID3Tags(t *testing.T) {
	tag := id3v2.NewEmptyTag()
	tag.SetTitle("Hidden Track")
	tag.SetArtist("Someone")
	tag.SetAlbum("Covers")
	tag.SetYear("1999")

	var buf bytes.Buffer
	_, err := tag.WriteTo(&buf)
	require.NoError(t, err)

	meta := &models.AudioMetadata{Title: "from id3v1", Genre: "Rock"}
	readID3Tags(buf.Bytes(), meta)
	assert.Equal(t, "Hidden Track", meta.Title)
	assert.Equal(t, "Someone", meta.Artist)
	assert.Equal(t, "Covers", meta.Album)
	assert.Equal(t, "1999", meta.Year)
	assert.Equal(t, "Rock", meta.Genre, "empty ID3v2 frames keep ID3v1 values")
}

func TestSaveLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := sine(800, 2)
	require.NoError(t, SaveSamples(samples, &models.AudioMetadata{SampleRate: 8000, Channels: 2}, path))

	got, meta, err := LoadSamples(path)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
	assert.Equal(t, 8000, meta.SampleRate)

	_, _, err = LoadSamples(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDescribeMetadata(t *testing.T) {
	meta := &models.AudioMetadata{
		Format: FormatMP3, SampleRate: 44100, Channels: 2, SourceBitDepth: 16,
		Duration: 1.5, TotalSamples: 132300, Bitrate: 128000, Artist: "A", Title: "T",
	}
	assert.Equal(t, "mp3, 44100 Hz, 2 ch, 16-bit, 1.50s, 132300 samples, 128 kbps (A - T)", DescribeMetadata(meta))
	assert.Equal(t, "unknown audio", DescribeMetadata(nil))
}
