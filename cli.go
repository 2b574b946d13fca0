package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Dharsan2024/AudioCryptor/audio"
	"github.com/Dharsan2024/AudioCryptor/config"
	"github.com/Dharsan2024/AudioCryptor/crypto"
	"github.com/Dharsan2024/AudioCryptor/handlers"
	"github.com/Dharsan2024/AudioCryptor/models"
	"github.com/Dharsan2024/AudioCryptor/stego"
)

var errMissingFlag = errors.New("missing required flag")

func checkLSBBits(lsbBits int) error {
	if lsbBits < 1 || lsbBits > 2 {
		return fmt.Errorf("%w: -lsb must be 1 or 2, got %d", models.ErrInvalidArgument, lsbBits)
	}
	return nil
}

func handleServe(args []string) error {
	cmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := cmd.String("config", "", "Path to YAML config (default $"+config.EnvConfigPath+")")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(conf)
	slog.SetDefault(logger)

	router := handlers.NewRouter(conf, handlers.NewStegoHandler(conf, logger))

	logger.Info("server starting", "port", conf.Port, "origins", conf.AllowOrigins, "max_upload_mb", conf.MaxUploadMB)
	logger.Info("API endpoints",
		"health", "GET /api/v1/health",
		"encode", "POST /api/v1/stego/encode",
		"decode", "POST /api/v1/stego/decode",
		"capacity", "POST /api/v1/stego/capacity",
		"analyze", "POST /api/v1/stego/analyze")

	return router.Run(":" + conf.Port)
}

func newLogger(conf *config.Config) *slog.Logger {
	level, _ := conf.SlogLevel()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func handleEncode(args []string, stdout io.Writer) error {
	defaults := config.Default()
	cmd := flag.NewFlagSet("encode", flag.ContinueOnError)
	input := cmd.String("i", "", "Path to cover audio (wav, mp3, flac)")
	output := cmd.String("o", "", "Path for the stego WAV")
	message := cmd.String("m", "", "Message to hide")
	password := cmd.String("p", "", "Password")
	lsbBits := cmd.Int("lsb", defaults.DefaultLSBBits, "LSB bits used for capacity accounting (1 or 2)")
	scatter := cmd.Bool("scatter", defaults.DefaultScatter, "Scatter payload bits pseudo-randomly")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" || *password == "" {
		return fmt.Errorf("%w: -i, -o and -p are required", errMissingFlag)
	}
	if err := checkLSBBits(*lsbBits); err != nil {
		return err
	}

	samples, meta, err := audio.LoadSamples(*input)
	if err != nil {
		return err
	}

	report := stego.ComputeCapacity(len(samples), *lsbBits)
	if need := crypto.EncryptedSize(len(*message)); need > report.CapacityBytes {
		return fmt.Errorf("message needs %d bytes, only %d available (max message %d bytes)", need, report.CapacityBytes, report.MaxMessageBytes)
	}

	stegoSamples, err := stego.EncodeMessage(samples, *message, *password, *lsbBits, *scatter)
	if err != nil {
		return err
	}
	if err := audio.SaveSamples(stegoSamples, meta, *output); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Cover:    %s\n", audio.DescribeMetadata(meta))
	fmt.Fprintf(stdout, "Payload:  %d of %d bytes\n", crypto.EncryptedSize(len(*message)), report.CapacityBytes)
	fmt.Fprintf(stdout, "PSNR:     %.2f dB\n", audio.CalculatePSNR(samples, stegoSamples))
	fmt.Fprintf(stdout, "Written:  %s\n", *output)
	return nil
}

func handleDecode(args []string, stdout io.Writer) error {
	cmd := flag.NewFlagSet("decode", flag.ContinueOnError)
	input := cmd.String("i", "", "Path to stego audio")
	password := cmd.String("p", "", "Password")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *input == "" || *password == "" {
		return fmt.Errorf("%w: -i and -p are required", errMissingFlag)
	}

	samples, _, err := audio.LoadSamples(*input)
	if err != nil {
		return err
	}
	message, err := stego.DecodeMessage(samples, *password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, message)
	return nil
}

func handleCapacity(args []string, stdout io.Writer) error {
	cmd := flag.NewFlagSet("capacity", flag.ContinueOnError)
	input := cmd.String("i", "", "Path to cover audio")
	lsbBits := cmd.Int("lsb", config.Default().DefaultLSBBits, "LSB bits (1 or 2)")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("%w: -i is required", errMissingFlag)
	}
	if err := checkLSBBits(*lsbBits); err != nil {
		return err
	}

	samples, meta, err := audio.LoadSamples(*input)
	if err != nil {
		return err
	}
	report := stego.ComputeCapacity(len(samples), *lsbBits)

	fmt.Fprintf(stdout, "Audio:        %s\n", audio.DescribeMetadata(meta))
	fmt.Fprintf(stdout, "Capacity:     %d bytes\n", report.CapacityBytes)
	fmt.Fprintf(stdout, "Max message:  %d bytes\n", report.MaxMessageBytes)
	return nil
}

func handleAnalyze(args []string, stdout io.Writer) error {
	cmd := flag.NewFlagSet("analyze", flag.ContinueOnError)
	input := cmd.String("i", "", "Path to audio")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("%w: -i is required", errMissingFlag)
	}

	samples, _, err := audio.LoadSamples(*input)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stego.Analyze(samples))
}
