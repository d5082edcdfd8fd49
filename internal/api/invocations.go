package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"advisor/internal/metrics"
	"advisor/pkg/logger"

	"github.com/google/uuid"
)

// SystemName identifies this service in every response envelope.
const SystemName = "financial-advisor-multiagent"

// maxPromptLength caps query size to prevent resource exhaustion.
const defaultMaxPromptLength = 5000

// suspiciousPatterns are substrings that mark a query as an injection
// attempt rather than a financial question. Checked case-insensitively.
var suspiciousPatterns = []string{
	"<script", "javascript:", "eval(", "exec(", "__import__", "subprocess", "os.system",
}

// Advisor is the orchestration capability consumed by the boundary.
type Advisor interface {
	Analyze(ctx context.Context, query string) string
}

// InvocationHandler serves POST /invocations: payload validation, advisory
// processing, and structured response envelopes. Processing failures inside
// the pipeline degrade to text and still arrive as a success envelope; only
// boundary-level failures (bad payload, timeout, panic) produce an error
// envelope.
type InvocationHandler struct {
	advisor         Advisor
	version         string
	maxPromptLength int
	log             *logger.Logger
}

// NewInvocationHandler creates the main invocation endpoint handler.
func NewInvocationHandler(advisor Advisor, version string, maxPromptLength int, log *logger.Logger) *InvocationHandler {
	if maxPromptLength <= 0 {
		maxPromptLength = defaultMaxPromptLength
	}

	return &InvocationHandler{
		advisor:         advisor,
		version:         version,
		maxPromptLength: maxPromptLength,
		log:             log,
	}
}

// InvocationRequest is the expected POST /invocations payload.
type InvocationRequest struct {
	Prompt string `json:"prompt"`
}

// SuccessResponse is the envelope for a completed advisory analysis.
type SuccessResponse struct {
	Result    string          `json:"result"`
	Timestamp string          `json:"timestamp"`
	System    string          `json:"system"`
	Metadata  SuccessMetadata `json:"metadata"`
}

// SuccessMetadata describes the service and the response it produced.
type SuccessMetadata struct {
	Version               string        `json:"version"`
	AgentType             string        `json:"agent_type"`
	EducationalDisclaimer bool          `json:"educational_disclaimer"`
	ResponseFormat        string        `json:"response_format"`
	Capabilities          []string      `json:"capabilities"`
	Disclaimer            string        `json:"disclaimer"`
	RequestID             string        `json:"request_id"`
	ResponseStats         ResponseStats `json:"response_stats"`
}

// ResponseStats carries size accounting for the produced analysis.
type ResponseStats struct {
	CharacterCount      int    `json:"character_count"`
	ProcessingTimestamp string `json:"processing_timestamp"`
}

// ErrorResponse is the envelope for boundary-level failures.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	ErrorType string                 `json:"error_type"`
	Timestamp string                 `json:"timestamp"`
	System    string                 `json:"system"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// ServeHTTP handles POST /invocations.
func (h *InvocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := h.log.With("request_id", requestID)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("Panic processing invocation: %v", rec)
			metrics.HTTPRequests.WithLabelValues("/invocations", "500").Inc()
			h.writeError(w, http.StatusInternalServerError, requestID, ErrorResponse{
				Error:     "An unexpected error occurred processing your financial advisory request",
				ErrorType: "system_error",
				Metadata: map[string]interface{}{
					"error_category": "system_error",
					"recoverable":    false,
					"suggestion":     "Please try again later or contact support if the issue persists",
				},
			})
		}
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req InvocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("Malformed invocation payload: %v", err)
		metrics.HTTPRequests.WithLabelValues("/invocations", "400").Inc()
		h.writeValidationError(w, requestID, fmt.Sprintf("Invalid request format: %v", err))
		return
	}

	query, err := h.validatePrompt(req.Prompt, log)
	if err != nil {
		metrics.HTTPRequests.WithLabelValues("/invocations", "400").Inc()
		h.writeValidationError(w, requestID, fmt.Sprintf("Invalid request format: %v", err))
		return
	}

	log.Infof("Processing financial advisory request: %s...", firstRunes(query, 100))
	logQueryCharacteristics(log, query)

	result := h.advisor.Analyze(r.Context(), query)

	if ctxErr := r.Context().Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		log.Errorf("Request timeout after %s", time.Since(start))
		metrics.HTTPRequests.WithLabelValues("/invocations", "504").Inc()
		h.writeError(w, http.StatusGatewayTimeout, requestID, ErrorResponse{
			Error:     "Request timeout. The analysis is taking longer than expected.",
			ErrorType: "timeout_error",
			Metadata: map[string]interface{}{
				"error_category": "request_timeout",
				"recoverable":    true,
				"suggestion":     "Please try again or simplify your request",
			},
		})
		return
	}

	logResponseCharacteristics(log, result)
	metrics.HTTPRequests.WithLabelValues("/invocations", "200").Inc()
	metrics.HTTPDuration.WithLabelValues("/invocations").Observe(time.Since(start).Seconds())

	now := time.Now().UTC().Format(time.RFC3339)
	h.writeJSON(w, http.StatusOK, SuccessResponse{
		Result:    result,
		Timestamp: now,
		System:    SystemName,
		Metadata: SuccessMetadata{
			Version:               h.version,
			AgentType:             "financial_advisor",
			EducationalDisclaimer: true,
			ResponseFormat:        "structured_analysis",
			Capabilities: []string{
				"market_intelligence",
				"strategy_development",
				"execution_planning",
				"risk_assessment",
			},
			Disclaimer: "Educational purposes only - not licensed financial advice",
			RequestID:  requestID,
			ResponseStats: ResponseStats{
				CharacterCount:      utf8.RuneCountInString(result),
				ProcessingTimestamp: now,
			},
		},
	})

	log.Infof("Financial advisory request processed in %s", time.Since(start))
}

// validatePrompt enforces the boundary input contract: non-empty after
// trimming, bounded length, and free of injection markers.
func (h *InvocationHandler) validatePrompt(prompt string, log *logger.Logger) (string, error) {
	if prompt == "" {
		log.Warn("Empty or missing prompt field in payload")
		return "", errors.New(
			"Please provide a financial advisory request. " +
				"Include ticker symbol, risk tolerance (Conservative/Moderate/Aggressive), " +
				"and investment horizon (Short-term/Medium-term/Long-term) for best results. " +
				"Example: 'Analyze AAPL stock for moderate risk investor with long-term horizon'")
	}

	query := strings.TrimSpace(prompt)

	// The cap counts characters, not bytes; multi-byte prompts must not be
	// penalized for their encoding.
	if length := utf8.RuneCountInString(query); length > h.maxPromptLength {
		log.Warnf("Input query too long: %d characters (max: %d)", length, h.maxPromptLength)
		return "", fmt.Errorf("Query too long. Maximum %d characters allowed.", h.maxPromptLength)
	}

	lower := strings.ToLower(query)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			log.Errorf("Suspicious content detected in query - pattern: %s", pattern)
			return "", errors.New("Invalid characters detected in query. Please provide a standard financial advisory request.")
		}
	}

	if query == "" {
		log.Warn("Prompt field contains only whitespace")
		return "", errors.New(
			"Please provide a non-empty financial advisory request. " +
				"Include ticker symbol, risk tolerance, and investment horizon for best results.")
	}

	log.Infof("Successfully processed payload - query length: %d characters", utf8.RuneCountInString(query))
	return query, nil
}

func (h *InvocationHandler) writeValidationError(w http.ResponseWriter, requestID, message string) {
	h.writeError(w, http.StatusBadRequest, requestID, ErrorResponse{
		Error:     message,
		ErrorType: "validation_error",
		Metadata: map[string]interface{}{
			"error_category": "payload_validation",
			"recoverable":    true,
			"suggestion":     "Please check your request format and try again",
		},
	})
}

func (h *InvocationHandler) writeError(w http.ResponseWriter, status int, requestID string, resp ErrorResponse) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.System = SystemName
	if resp.Metadata == nil {
		resp.Metadata = map[string]interface{}{}
	}
	resp.Metadata["request_id"] = requestID
	h.writeJSON(w, status, resp)
}

func (h *InvocationHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

// logQueryCharacteristics records shape signals useful when triaging
// why a particular query produced a degraded analysis.
func logQueryCharacteristics(log *logger.Logger, query string) {
	words := strings.Fields(query)

	containsTicker := false
	for _, w := range words {
		if len(w) <= 5 && w == strings.ToUpper(w) && strings.IndexFunc(w, unicode.IsLetter) >= 0 {
			containsTicker = true
			break
		}
	}

	lower := strings.ToLower(query)
	containsRisk := strings.Contains(lower, "conservative") ||
		strings.Contains(lower, "moderate") ||
		strings.Contains(lower, "aggressive")
	containsHorizon := strings.Contains(lower, "short") ||
		strings.Contains(lower, "medium") ||
		strings.Contains(lower, "long")

	log.Debugf("Query analysis: length=%d word_count=%d contains_ticker=%t contains_risk=%t contains_horizon=%t",
		len(query), len(words), containsTicker, containsRisk, containsHorizon)
}

// logResponseCharacteristics records completion signals, including whether
// degraded-path error text leaked into the analysis.
func logResponseCharacteristics(log *logger.Logger, response string) {
	lower := strings.ToLower(response)

	containsError := strings.Contains(lower, "error") ||
		strings.Contains(lower, "exception") ||
		strings.Contains(lower, "failed")

	log.Infof("Financial advisor analysis completed: response_length=%d contains_disclaimer=%t contains_strategies=%t contains_error_message=%t",
		len(response),
		strings.Contains(lower, "educational"),
		strings.Contains(lower, "strategy"),
		containsError)

	if containsError {
		log.Debug("Response contains error messages - fallback mechanisms may have been triggered")
	}
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
