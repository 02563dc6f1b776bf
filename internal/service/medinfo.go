package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

const medicationInfoPrompt = `You are a helpful medical assistant.
Your goal is to explain medications in simple, easy-to-understand language.

For the requested medication, provide:
1. **What it is**: Simple explanation.
2. **How to take it**: General common practices (e.g. with food, empty stomach).
3. **Common Side Effects**: List 3-4 common ones.

Do NOT give dosage advice.
Do NOT diagnose.
Keep it brief (under 150 words).`

// MedicationDisclaimer is appended to every successful explanation
const MedicationDisclaimer = "\n\n**Disclaimer:** This information is for educational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment. Always consult with your doctor."

const (
	fallbackUnavailable = "I'm sorry, I'm having trouble connecting to the AI service right now. Please try again later."
	fallbackOffline     = "The AI assistant is currently offline because no API key is configured. Set OPENAI_API_KEY or the AZURE_OPENAI_* variables to enable this feature."
)

// ChatCompleter sends chat messages to a language model
type ChatCompleter interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// MedicationInfo is an AI explanation of a medication
type MedicationInfo struct {
	Name string `json:"name"`
	Text string `json:"text"`
	// Error is set when Text is a fallback message
	Error string `json:"error,omitempty"`
}

// MedicationInfoService explains medications in plain language
type MedicationInfoService struct {
	client ChatCompleter
	logger *zap.Logger
}

// NewMedicationInfoService creates a new MedicationInfoService. A nil client answers with an offline notice.
func NewMedicationInfoService(client ChatCompleter, logger *zap.Logger) *MedicationInfoService {
	return &MedicationInfoService{
		client: client,
		logger: logger,
	}
}

// GetMedicationInfo explains the named medication. Upstream failures produce a fallback text, not an error.
func (s *MedicationInfoService) GetMedicationInfo(ctx context.Context, name string) (*MedicationInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("medication name is required")
	}
	if len(name) > 200 {
		return nil, invalid("medication name is too long")
	}

	if s.client == nil {
		return &MedicationInfo{Name: name, Text: fallbackOffline}, nil
	}

	text, err := s.client.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(medicationInfoPrompt),
		openai.UserMessage(fmt.Sprintf("Tell me about %s", name)),
	})
	if err != nil {
		s.logger.Error("medication info request failed",
			zap.String("medication", name),
			zap.Error(err),
		)
		return &MedicationInfo{Name: name, Text: fallbackUnavailable, Error: err.Error()}, nil
	}

	return &MedicationInfo{Name: name, Text: text + MedicationDisclaimer}, nil
}
