// internal/pipeline/extract-text/handler.go
package extracttext

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.sajari.com/docconv"

	stderrors "skillforge/internal/common/errors"
	"skillforge/internal/common/logger"
	"skillforge/internal/common/metrics"
)

const StageName = "extract-text"

// Handler turns a CV document on disk into plain text. Only .txt and .docx
// are accepted; everything else fails with FORMAT_UNSUPPORTED so the caller
// can surface a clear rejection instead of feeding garbage downstream.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(input.DocumentPath))
	var (
		text string
		err  error
	)

	switch ext {
	case ".txt":
		text, err = h.readPlainText(input.DocumentPath)
	case ".docx":
		text, err = h.readDocx(input.DocumentPath)
	default:
		metrics.PipelineRunsFailed.WithLabelValues(StageName, string(stderrors.ErrCodeFormatUnsupported)).Inc()
		return nil, stderrors.NewFormatUnsupportedError(ext)
	}
	if err != nil {
		metrics.PipelineRunsFailed.WithLabelValues(StageName, string(stderrors.ErrCodeDocumentReadFailed)).Inc()
		return nil, err
	}

	text = normalizeWhitespace(text)

	h.logger.Info("document text extracted", map[string]interface{}{
		"employeeId": input.EmployeeID,
		"format":     ext,
		"charCount":  len(text),
	})
	metrics.PipelineRunsCompleted.WithLabelValues(StageName).Inc()
	metrics.PipelineRunDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())

	return &Output{
		EmployeeID: input.EmployeeID,
		Text:       text,
		Format:     strings.TrimPrefix(ext, "."),
		CharCount:  len(text),
	}, nil
}

func (h *Handler) readPlainText(path string) (string, error) {
	if err := h.checkSize(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", stderrors.NewDocumentReadFailedError(path, err)
	}
	return string(data), nil
}

func (h *Handler) readDocx(path string) (string, error) {
	if err := h.checkSize(path); err != nil {
		return "", err
	}
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", stderrors.NewDocumentReadFailedError(path, err)
	}
	return res.Body, nil
}

func (h *Handler) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return stderrors.NewDocumentReadFailedError(path, err)
	}
	if h.config.MaxBytes > 0 && info.Size() > h.config.MaxBytes {
		return stderrors.NewDocumentReadFailedError(path, os.ErrInvalid)
	}
	return nil
}

// normalizeWhitespace collapses runs of blank lines and trims trailing space.
func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []string
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
			line = ""
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
