package mp3parser

// ID3v2Header represents ID3v2 tag header
type ID3v2Header struct {
	Version [2]byte
	Flags   byte
	Size    int
}

// FrameHeader is a decoded MPEG audio frame header.
type FrameHeader struct {
	VersionID   int
	Layer       int
	Bitrate     int
	SampleRate  int
	Padding     bool
	ChannelMode int
	FrameLength int
}

// Channels reports 1 for mono frames and 2 otherwise.
func (h *FrameHeader) Channels() int {
	if h.ChannelMode == ChannelModeMono {
		return 1
	}
	return 2
}

// ID3v1Tag represents ID3v1 tag (128 bytes at end of file)
type ID3v1Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	Genre   byte
}

// StreamInfo summarises an MP3 stream without decoding it.
type StreamInfo struct {
	ID3v2          *ID3v2Header
	ID3v1          *ID3v1Tag
	Frames         int
	SampleRate     int
	Channels       int
	AverageBitrate int
	// SkippedBytes counts bytes between frames that did not parse as a header.
	SkippedBytes int
}
