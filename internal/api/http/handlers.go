package http

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/scoring/rangeparse"
	"wellness-engine/internal/scoring/reference"
)

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	writeJSON(w, errors.HTTPStatus(stdErr.Code), errorBody{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Field:   stdErr.Field,
		Details: stdErr.Details,
	})
}

// decodeBody reads one JSON value, keeping numbers as json.Number so
// integers survive the echo in receivedData unchanged.
func decodeBody(r *http.Request, w http.ResponseWriter, maxBytes int64, v interface{}) error {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.NewInvalidRequestError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case stderrors.Is(err, io.EOF):
			return errors.NewInvalidRequestError("request body is empty")
		default:
			return errors.NewInvalidRequestError("bad json: " + err.Error())
		}
	}
	return nil
}

// GET /
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Backend is running!")
	}
}

// GET /health
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// GET /ready
func ReadyHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runner := s.runner.Load()
		if !s.Ready() || runner == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "ready",
			"referenceRows": runner.Engine().Tables().RowCounts(),
		})
	}
}

// POST /process-assessment, POST /api/v1/assessments
func AssessmentHandler(s *Server, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runner := s.runner.Load()
		if runner == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "engine is not ready"})
			return
		}

		var record map[string]interface{}
		if err := decodeBody(r, w, maxBytes, &record); err != nil {
			writeError(w, err)
			return
		}
		if record == nil {
			writeError(w, errors.NewInvalidRequestError("request body must be a JSON object"))
			return
		}

		result, err := runner.Run(r.Context(), record)
		if err != nil {
			s.logger.Warn("assessment rejected", map[string]interface{}{
				"code":  string(errors.AsStandardError(err).Code),
				"field": errors.AsStandardError(err).Field,
			})
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type parseRangeReq struct {
	Value   interface{} `json:"value"`
	Monthly bool        `json:"monthly,omitempty"`
}

type parseRangeResp struct {
	Value      interface{} `json:"value"`
	Result     float64     `json:"result"`
	Recognized bool        `json:"recognized"`
	Policy     string      `json:"policy"`
}

// POST /api/v1/ranges/parse
func ParseRangeHandler(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseRangeReq
		if err := decodeBody(r, w, maxBytes, &req); err != nil {
			writeError(w, err)
			return
		}

		policy, name := rangeparse.Extend, "extend"
		if req.Monthly {
			policy, name = rangeparse.AsIs, "as-is"
		}
		n, ok := rangeparse.Parse(req.Value, policy)
		writeJSON(w, http.StatusOK, parseRangeResp{Value: req.Value, Result: n, Recognized: ok, Policy: name})
	}
}

// GET /api/v1/reference/age-groups
func AgeGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"canonical": reference.CanonicalAgeGroups(),
			"labels":    reference.AgeLabels(),
		})
	}
}
