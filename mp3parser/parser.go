// Package mp3parser walks MPEG audio frame headers so an upload can be
// recognised as MP3 before it is handed to the decoder.
package mp3parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	id3v2HeaderSize = 10
	id3v1Size       = 128

	VersionMPEG25 = 0
	VersionMPEG2  = 2
	VersionMPEG1  = 3

	LayerIII = 1

	ChannelModeMono = 3
)

var (
	ErrNoFrames    = errors.New("mp3parser: no MPEG audio frames found")
	ErrInvalidSync = errors.New("mp3parser: invalid frame sync")
)

var bitrateV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var bitrateV2L3 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

var sampleRates = map[int][4]int{
	VersionMPEG1:  {44100, 48000, 32000, 0},
	VersionMPEG2:  {22050, 24000, 16000, 0},
	VersionMPEG25: {11025, 12000, 8000, 0},
}

// read syncsafe int for ID3v2 size
func syncSafeToInt(b []byte) int {
	return int(b[0]&0x7F)<<21 |
		int(b[1]&0x7F)<<14 |
		int(b[2]&0x7F)<<7 |
		int(b[3]&0x7F)
}

// ReadID3v2 returns the tag header and the total tag length including its
// 10-byte header, or nil and 0 when data does not start with a tag.
func ReadID3v2(data []byte) (*ID3v2Header, int) {
	if len(data) < id3v2HeaderSize || string(data[:3]) != "ID3" {
		return nil, 0
	}
	h := &ID3v2Header{
		Version: [2]byte{data[3], data[4]},
		Flags:   data[5],
		Size:    syncSafeToInt(data[6:10]),
	}
	total := id3v2HeaderSize + h.Size
	// footer present
	if h.Flags&0x10 != 0 {
		total += id3v2HeaderSize
	}
	return h, min(total, len(data))
}

// ParseFrameHeader decodes a Layer III frame header from the first four bytes of b.
func ParseFrameHeader(b []byte) (*FrameHeader, error) {
	if len(b) < 4 {
		return nil, ErrInvalidSync
	}
	header := binary.BigEndian.Uint32(b)

	// check sync
	if (header & 0xFFE00000) != 0xFFE00000 {
		return nil, ErrInvalidSync
	}

	versionID := int((header >> 19) & 0x3)
	layer := int((header >> 17) & 0x3)
	bitrateIdx := int((header >> 12) & 0xF)
	sampleRateIdx := int((header >> 10) & 0x3)
	padding := ((header >> 9) & 0x1) == 1
	channelMode := int((header >> 6) & 0x3)

	if versionID == 1 {
		return nil, fmt.Errorf("%w: reserved version", ErrInvalidSync)
	}
	if layer != LayerIII {
		return nil, fmt.Errorf("%w: only layer III is supported", ErrInvalidSync)
	}

	table := bitrateV1L3
	if versionID != VersionMPEG1 {
		table = bitrateV2L3
	}
	bitrate := table[bitrateIdx] * 1000
	sampleRate := sampleRates[versionID][sampleRateIdx]
	if bitrate == 0 || sampleRate == 0 {
		return nil, fmt.Errorf("%w: unsupported bitrate or samplerate", ErrInvalidSync)
	}

	// MPEG-2/2.5 layer III frames carry half as many samples
	coeff := 144
	if versionID != VersionMPEG1 {
		coeff = 72
	}
	frameLen := coeff*bitrate/sampleRate + btoi(padding)

	return &FrameHeader{
		VersionID:   versionID,
		Layer:       layer,
		Bitrate:     bitrate,
		SampleRate:  sampleRate,
		Padding:     padding,
		ChannelMode: channelMode,
		FrameLength: frameLen,
	}, nil
}

// ReadID3v1 parses the trailing 128-byte tag if present.
func ReadID3v1(data []byte) *ID3v1Tag {
	if len(data) < id3v1Size {
		return nil
	}
	buf := data[len(data)-id3v1Size:]
	if string(buf[:3]) != "TAG" {
		return nil
	}
	return &ID3v1Tag{
		Title:   trimField(buf[3:33]),
		Artist:  trimField(buf[33:63]),
		Album:   trimField(buf[63:93]),
		Year:    trimField(buf[93:97]),
		Comment: trimField(buf[97:127]),
		Genre:   buf[127],
	}
}

// Probe walks every frame header in data, resynchronising over junk bytes.
func Probe(data []byte) (*StreamInfo, error) {
	info := &StreamInfo{}

	id3, offset := ReadID3v2(data)
	info.ID3v2 = id3

	end := len(data)
	if tag := ReadID3v1(data); tag != nil {
		info.ID3v1 = tag
		end -= id3v1Size
	}

	var bitrateSum int
	for pos := offset; pos+4 <= end; {
		h, err := ParseFrameHeader(data[pos:end])
		if err != nil || pos+h.FrameLength > end {
			info.SkippedBytes++
			pos++
			continue
		}
		if info.Frames == 0 {
			info.SampleRate = h.SampleRate
			info.Channels = h.Channels()
		}
		info.Frames++
		bitrateSum += h.Bitrate
		pos += h.FrameLength
	}

	if info.Frames == 0 {
		return nil, ErrNoFrames
	}
	info.AverageBitrate = bitrateSum / info.Frames
	return info, nil
}

// LooksLikeMP3 reports whether data opens with an ID3v2 tag or a frame sync
// followed by a second valid frame.
func LooksLikeMP3(data []byte) bool {
	id3, offset := ReadID3v2(data)
	if id3 != nil {
		return true
	}
	h, err := ParseFrameHeader(data[offset:])
	if err != nil {
		return false
	}
	next := offset + h.FrameLength
	if next+4 > len(data) {
		return next == len(data)
	}
	_, err = ParseFrameHeader(data[next:])
	return err == nil
}

func trimField(b []byte) string {
	return strings.TrimSpace(string(bytes.TrimRight(b, "\x00")))
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
