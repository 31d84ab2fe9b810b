package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/engine"
	"github.com/rushteam/cetmatch/filter"
)

// maxBodyBytes 限制 /predict 请求体大小
const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Pool   int    `json:"pool"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.initErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "degraded",
			Error:  s.initErr.Error(),
			Pool:   s.pool.Len(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Pool: s.pool.Len()})
}

// predictRequest 中 percentile 用指针区分“缺失”和 0。
type predictRequest struct {
	Percentile *float64 `json:"percentile"`
	Branch     string   `json:"branch"`
	Caste      string   `json:"caste"`
	Gender     string   `json:"gender"`
	TopN       *int     `json:"top_n"`
}

type predictResponse struct {
	Colleges []string        `json:"colleges"`
	Outcome  *engine.Outcome `json:"outcome,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, core.NewInvalidInputError("invalid json body", err))
		return
	}
	if req.Percentile == nil {
		s.writeError(w, r, core.NewInvalidInputError("percentile is required", nil))
		return
	}

	q := core.Query{
		Percentile: *req.Percentile,
		Branch:     req.Branch,
		Caste:      req.Caste,
		Gender:     req.Gender,
		Limit:      core.DefaultLimit,
	}
	if req.TopN != nil {
		q.Limit = *req.TopN
	}

	ctx := engine.ContextWithRequestID(r.Context(), requestIDFrom(r))
	out, err := s.matcher.Explain(ctx, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := predictResponse{Colleges: out.Colleges}
	if explain, _ := strconv.ParseBool(r.URL.Query().Get("explain")); explain {
		resp.Outcome = out
	}
	writeJSON(w, http.StatusOK, resp)
}

type compareResponse struct {
	Count int            `json:"count"`
	Data  []*core.Record `json:"data"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.pool == nil {
		err := s.initErr
		if err == nil {
			err = core.NewDataError("candidate pool not loaded", nil)
		}
		s.writeError(w, r, err)
		return
	}

	params := r.URL.Query()
	c := filter.Criteria{
		Branch: params.Get("branch"),
		Caste:  params.Get("category"),
		Gender: params.Get("gender"),
	}
	if raw := strings.TrimSpace(params.Get("percentile")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, r, core.NewInvalidInputError("percentile must be a number", err))
			return
		}
		c.Percentile = &p
	}

	rows := filter.Compare(s.pool, c)
	writeJSON(w, http.StatusOK, compareResponse{Count: len(rows), Data: rows})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusCode 把领域错误映射为 HTTP 状态码。
func StatusCode(err error) int {
	switch {
	case core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsConfigurationError(err), core.IsEmptyPool(err):
		return http.StatusServiceUnavailable
	case core.IsNotFound(err):
		return http.StatusNotFound
	case core.IsConflict(err):
		return http.StatusConflict
	case core.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	body := errorResponse{Code: "INTERNAL", Message: err.Error()}
	if de := core.GetDomainError(err); de != nil {
		body.Code = de.Code
	} else if errors.Is(err, ErrRateLimited) {
		body.Code = "RATE_LIMITED"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestIDFrom(r)),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
