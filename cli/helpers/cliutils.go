package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/pkg/logger"
)

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsTimeoutError checks if an error is a timeout error
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

// IsNetworkError checks if an error is a network-related error
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused", "connection reset", "no such host",
		"no route to host", "network unreachable", "dns",
		"name resolution failed", "temporary failure",
	}
	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

var codeMessages = map[string]string{
	core.CodeAcquireFailed:    "Failed to acquire the icon package",
	core.CodeInvalidManifest:  "The icon package manifest is invalid",
	core.CodeNoProviders:      "No providers found; run the export stage first",
	core.CodeNoVectorFiles:    "The selected provider contains no SVG files",
	core.CodeInvalidSelection: "Invalid provider selection",
	core.CodePathEscape:       "The icon package contains an unsafe path",
}

// HandleCommonErrors turns any command error into a CliError with a user-facing message.
func HandleCommonErrors(err error) *CliError {
	if err == nil {
		return nil
	}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var out *CliError
	switch {
	case errors.Is(err, ErrPromptCanceled), errors.Is(err, context.Canceled):
		out = NewCliError("CANCELED", "Operation canceled", err.Error())
	case IsTimeoutError(err):
		out = NewCliError("TIMEOUT", "Operation timed out", err.Error())
	default:
		out = fromCoded(err)
	}
	out.cause = err
	return out
}

func fromCoded(err error) *CliError {
	var coded *core.Error
	if errors.As(err, &coded) {
		msg, ok := codeMessages[coded.Code]
		if !ok {
			msg = "Pipeline stage failed"
		}
		if coded.Code == core.CodeAcquireFailed && IsNetworkError(err) {
			msg = "Network error while acquiring the icon package"
		}
		cliErr := NewCliError(coded.Code, msg, err.Error())
		for k, v := range coded.Details {
			cliErr.WithContext(k, v)
		}
		return cliErr
	}
	if IsNetworkError(err) {
		return NewCliError("NETWORK_ERROR", "Network error", err.Error())
	}
	return NewCliError("COMMAND_FAILED", "Command failed", err.Error())
}

// FormatError formats errors based on output mode
func FormatError(err error, mode models.Mode) string {
	if err == nil {
		return ""
	}
	cliErr := HandleCommonErrors(err)
	switch mode {
	case models.ModeTUI:
		return formatErrorTUI(cliErr)
	default:
		return formatErrorJSON(cliErr)
	}
}

func formatErrorJSON(err *CliError) string {
	errorResponse := map[string]any{
		"code":    err.Code,
		"error":   err.Message,
		"details": err.Details,
	}
	jsonBytes, mErr := json.MarshalIndent(errorResponse, "", "  ")
	if mErr != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return string(jsonBytes)
}

func formatErrorTUI(err *CliError) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)
	result := fmt.Sprintf("%s %s", getErrorIcon(err), style.Render(err.Message))
	if err.Details != "" {
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
		result += "\n" + detailStyle.Render(fmt.Sprintf("Details: %s", err.Details))
	}
	return result
}

func getErrorIcon(err *CliError) string {
	switch err.Code {
	case "NETWORK_ERROR":
		return "🌐"
	case "TIMEOUT":
		return "⏰"
	case "CANCELED":
		return "⏹"
	default:
		if IsNetworkError(err.cause) {
			return "🌐"
		}
		return "❌"
	}
}

// OutputError writes an error to w in the format of the given mode
func OutputError(w io.Writer, err error, mode models.Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode))
}

// LogOperation logs the start and completion of an operation
func LogOperation(ctx context.Context, operation string, fn func() error) error {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Debug("Starting operation", "operation", operation)
	err := fn()
	duration := time.Since(start)
	if err != nil {
		log.Error("Operation failed", "operation", operation, "duration", FormatDuration(duration), "error", err)
	} else {
		log.Info("Operation completed", "operation", operation, "duration", FormatDuration(duration))
	}
	return err
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
