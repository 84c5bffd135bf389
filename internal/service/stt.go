package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

// ErrBadAudio marks client-side payload problems so the handler can
// distinguish them from upstream failures
var ErrBadAudio = errors.New("stt: invalid audio payload")

// Transcriber converts audio bytes to text; *llm.Client satisfies it
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, lang string) (string, error)
	IsEnabled() bool
}

// STTService proxies speech-to-text requests. Unlike the assistant
// pipeline this surface fails hard: without a transcript the caller
// has nothing to degrade to.
type STTService struct {
	client Transcriber
	log    logger.Logger
}

// NewSTTService creates the proxy
func NewSTTService(client Transcriber, log logger.Logger) *STTService {
	return &STTService{client: client, log: log}
}

// Transcribe decodes the base64 payload and forwards it upstream.
// Browser recorders often send a data URL; the prefix is stripped.
func (s *STTService) Transcribe(ctx context.Context, req *model.STTRequest) (*model.STTResponse, error) {
	if !s.client.IsEnabled() {
		return nil, fmt.Errorf("stt: transcription is not configured")
	}

	payload := req.AudioBase64
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAudio, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadAudio)
	}

	transcript, err := s.client.Transcribe(ctx, audio, req.MimeType, req.Lang)
	if err != nil {
		return nil, fmt.Errorf("stt: transcription failed: %w", err)
	}
	return &model.STTResponse{Transcript: transcript}, nil
}
