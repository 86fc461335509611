package intakeService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ScamSOS/internal/api/intake"
	"ScamSOS/internal/entity"
	"ScamSOS/pkg/audio"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/openai"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NoTextFound is the screenshot contribution when OCR ran but saw no text.
const NoTextFound = "No text found in the screenshot."

const summaryPromptTemplate = `You are assisting a fraud response team that helps victims of phone and parcel scams.
Write a short factual summary (at most five sentences) of the scam described by the evidence below.
Mention the kind of scam, how the scammer contacted the victim, what they asked for, and any amounts,
phone numbers, tracking numbers or payment details that appear. Do not invent details.

Call recording transcript:
%s

Text found in the screenshot:
%s`

var errEmptySummary = errors.New("summarizer returned an empty reply")

// TextExtractor reads the text out of an image. Both the Vision and the
// Gemini clients satisfy it.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}

type IEvidencePipeline interface {
	Summarize(ctx context.Context, recording, screenshot *entity.EvidenceArtifact) (intake.EvidenceResult, error)
}

type evidencePipeline struct {
	log         *logrus.Logger
	transcriber audio.ITranscriber
	ocr         TextExtractor
	summarizer  openai.ISummarizer
}

func NewEvidencePipeline(
	log *logrus.Logger,
	transcriber audio.ITranscriber,
	ocr TextExtractor,
	summarizer openai.ISummarizer,
) IEvidencePipeline {
	return &evidencePipeline{
		log:         log,
		transcriber: transcriber,
		ocr:         ocr,
		summarizer:  summarizer,
	}
}

// Summarize transcribes and reads the evidence in parallel and asks the
// summarizer for one summary. Transcription and OCR failures become warnings;
// a summarizer failure is returned.
func (p *evidencePipeline) Summarize(ctx context.Context, recording, screenshot *entity.EvidenceArtifact) (intake.EvidenceResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if recording == nil && screenshot == nil {
		return intake.EvidenceResult{}, nil
	}

	var (
		mu         sync.Mutex
		warnings   []string
		transcript string
		screenText string
	)
	warn := func(msg string) {
		mu.Lock()
		warnings = append(warnings, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	if recording != nil {
		g.Go(func() error {
			text, err := p.transcribe(gctx, recording)
			if err != nil {
				p.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"file_name":  recording.FileName,
					"error":      err.Error(),
				}).Warn("Transcription failed, continuing without transcript")
				warn(intake.WarningTranscriptionFailed)
				return nil
			}
			transcript = text
			return nil
		})
	}

	if screenshot != nil {
		g.Go(func() error {
			text, err := p.extractText(gctx, screenshot)
			if err != nil {
				p.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"file_name":  screenshot.FileName,
					"error":      err.Error(),
				}).Warn("Text extraction failed, continuing without screenshot text")
				warn(intake.WarningTextExtractionFailed)
				return nil
			}
			if text == "" {
				text = NoTextFound
			}
			screenText = text
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return intake.EvidenceResult{}, err
	}

	prompt := fmt.Sprintf(summaryPromptTemplate, transcript, screenText)

	summary, err := p.summarize(ctx, prompt)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Evidence summarization failed")
		return intake.EvidenceResult{Warnings: warnings}, err
	}

	return intake.EvidenceResult{Summary: &summary, Warnings: warnings}, nil
}

func (p *evidencePipeline) transcribe(ctx context.Context, a *entity.EvidenceArtifact) (string, error) {
	if p.transcriber == nil {
		return "", errors.New("transcription is not configured")
	}
	return p.transcriber.Transcribe(ctx, a.FileName, a.Data)
}

func (p *evidencePipeline) extractText(ctx context.Context, a *entity.EvidenceArtifact) (string, error) {
	if p.ocr == nil {
		return "", errors.New("text extraction is not configured")
	}
	text, err := p.ocr.ExtractText(ctx, a.Data, a.ContentType)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *evidencePipeline) summarize(ctx context.Context, prompt string) (string, error) {
	if p.summarizer == nil {
		return "", errors.New("summarization is not configured")
	}
	summary, err := p.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", errEmptySummary
	}
	return summary, nil
}
