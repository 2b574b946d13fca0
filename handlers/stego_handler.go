// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dharsan2024/AudioCryptor/audio"
	"github.com/Dharsan2024/AudioCryptor/config"
	"github.com/Dharsan2024/AudioCryptor/crypto"
	"github.com/Dharsan2024/AudioCryptor/models"
	"github.com/Dharsan2024/AudioCryptor/stego"
)

const Version = "1.0.0"

type StegoHandler struct {
	audioDecoder *audio.AudioDecoder
	conf         *config.Config
	logger       *slog.Logger
}

func NewStegoHandler(conf *config.Config, logger *slog.Logger) *StegoHandler {
	if conf == nil {
		conf = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StegoHandler{
		audioDecoder: audio.NewAudioDecoder(),
		conf:         conf,
		logger:       logger,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "AudioCryptor API is running",
		"version": Version,
	})
}

// EncodeMessage hides an encrypted message in the uploaded audio and streams
// the result back as WAV.
func (h *StegoHandler) EncodeMessage(c *gin.Context) {
	failure := func(msg string) any { return models.EncodeResponse{Success: false, Message: msg} }

	if err := h.parseForm(c); err != nil {
		h.fail(c, err, failure)
		return
	}

	message := c.PostForm("message")
	password := c.PostForm("password")
	if err := crypto.ValidatePassword(password); err != nil {
		h.fail(c, err, failure)
		return
	}

	lsbBits, err := h.lsbBits(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}
	scatter, err := h.scatter(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	samples, meta, filename, err := h.readAudio(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	report := stego.ComputeCapacity(len(samples), lsbBits)
	stegoSamples, err := stego.EncodeMessage(samples, message, password, lsbBits, scatter)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	psnr := audio.CalculatePSNR(samples, stegoSamples)
	if !audio.ValidatePSNR(psnr, h.conf.PSNRThreshold) {
		h.logger.Warn("stego output below PSNR threshold", "file", filename, "psnr", psnr, "threshold", h.conf.PSNRThreshold)
	}

	wavData, err := h.audioDecoder.EncodeWAV(stegoSamples, meta)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	baseFilename := strings.TrimSuffix(filename, filepath.Ext(filename))
	outputFilename := fmt.Sprintf("%s_stego.wav", baseFilename)
	payload := crypto.EncryptedSize(len(message))

	h.logger.Info("message embedded",
		"file", filename, "samples", len(samples), "lsb_bits", lsbBits, "scatter", scatter,
		"payload_bytes", payload, "capacity_bytes", report.CapacityBytes, "psnr", psnr)

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("X-Stego-PSNR", formatPSNR(psnr))
	c.Header("X-Stego-Capacity", strconv.Itoa(report.CapacityBytes))
	c.Header("X-Stego-Payload", strconv.Itoa(payload))

	c.Data(http.StatusOK, "audio/wav", wavData)
}

// DecodeMessage recovers the plaintext from an uploaded stego file.
func (h *StegoHandler) DecodeMessage(c *gin.Context) {
	failure := func(msg string) any { return models.DecodeResponse{Success: false, Message: msg} }

	if err := h.parseForm(c); err != nil {
		h.fail(c, err, failure)
		return
	}

	password := c.PostForm("password")
	if err := crypto.ValidatePassword(password); err != nil {
		h.fail(c, err, failure)
		return
	}

	samples, _, filename, err := h.readAudio(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	message, err := stego.DecodeMessage(samples, password)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	h.logger.Info("message extracted", "file", filename, "message_bytes", len(message))
	c.JSON(http.StatusOK, models.DecodeResponse{Success: true, Message: message})
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	failure := func(msg string) any { return models.CapacityResponse{Success: false, Message: msg} }

	if err := h.parseForm(c); err != nil {
		h.fail(c, err, failure)
		return
	}
	lsbBits, err := h.lsbBits(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}
	samples, meta, _, err := h.readAudio(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	report := stego.ComputeCapacity(len(samples), lsbBits)
	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:  true,
		Capacity: &report,
		Audio:    meta,
	})
}

func (h *StegoHandler) Analyze(c *gin.Context) {
	failure := func(msg string) any { return models.AnalyzeResponse{Success: false, Message: msg} }

	if err := h.parseForm(c); err != nil {
		h.fail(c, err, failure)
		return
	}
	samples, _, _, err := h.readAudio(c)
	if err != nil {
		h.fail(c, err, failure)
		return
	}

	analysis := stego.Analyze(samples)
	c.JSON(http.StatusOK, models.AnalyzeResponse{Success: true, Analysis: &analysis})
}

func (h *StegoHandler) parseForm(c *gin.Context) error {
	limit := h.conf.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d MB", ErrUploadTooLarge, h.conf.MaxUploadMB)
		}
		return fmt.Errorf("%w: failed to parse form: %v", models.ErrInvalidArgument, err)
	}
	return nil
}

// readAudio decodes the audio_file upload into samples.
func (h *StegoHandler) readAudio(c *gin.Context) ([]int16, *models.AudioMetadata, string, error) {
	audioFile, audioHeader, err := c.Request.FormFile("audio_file")
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: audio file is required", models.ErrInvalidArgument)
	}
	defer audioFile.Close()

	audioData, err := io.ReadAll(audioFile)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read audio file: %w", err)
	}

	samples, meta, err := h.audioDecoder.Decode(c.Request.Context(), audioData, audioHeader.Filename)
	if err != nil {
		return nil, nil, "", err
	}
	return samples, meta, audioHeader.Filename, nil
}

func (h *StegoHandler) lsbBits(c *gin.Context) (int, error) {
	raw := c.PostForm("lsb_bits")
	if raw == "" {
		return h.conf.DefaultLSBBits, nil
	}
	lsbBits, err := strconv.Atoi(raw)
	if err != nil || lsbBits < 1 || lsbBits > 2 {
		return 0, fmt.Errorf("%w: LSB bits must be 1 or 2", models.ErrInvalidArgument)
	}
	return lsbBits, nil
}

func (h *StegoHandler) scatter(c *gin.Context) (bool, error) {
	raw := c.PostForm("scatter")
	if raw == "" {
		return h.conf.DefaultScatter, nil
	}
	scatter, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: scatter must be true or false", models.ErrInvalidArgument)
	}
	return scatter, nil
}

func (h *StegoHandler) fail(c *gin.Context, err error, body func(string) any) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Info("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, body(publicMessage(err, status)))
}

func formatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return strconv.FormatFloat(psnr, 'f', 2, 64)
}
