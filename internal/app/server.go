package app

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/audit"
	"hyperliquid-perps/internal/execution"
	"hyperliquid-perps/internal/precheck"
)

type serverDeps struct {
	evaluator    *precheck.Evaluator
	orchestrator *execution.Orchestrator
	audit        *audit.Service
	delegator    common.Address
	pkpPublicKey string
	logger       *zap.Logger
}

type server struct {
	serverDeps
}

func newServer(deps serverDeps) *server {
	if deps.logger == nil {
		deps.logger = zap.NewNop()
	}
	return &server{serverDeps: deps}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /precheck", s.handlePrecheck)
	mux.HandleFunc("POST /execute", s.handleExecute)
	return mux
}

func (s *server) handlePrecheck(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), params, s.delegator)
	if err != nil {
		// 预检阶段的基础设施错误不转换为业务失败，按原样上抛给宿主。
		s.logger.Error("预检阶段基础设施错误", zap.Error(err))
		s.audit.RecordError(r.Context(), "precheck", err)
		writeJSON(w, http.StatusInternalServerError, ability.Fail{Error: err.Error()})
		return
	}

	s.audit.RecordPrecheck(r.Context(), params, result.Success, result.Fail)

	if result.Fail != nil {
		writeJSON(w, http.StatusOK, result.Fail)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

func (s *server) handleExecute(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	result := s.orchestrator.Execute(r.Context(), params, s.pkpPublicKey)

	s.audit.RecordExecute(r.Context(), params, result.Success, result.Fail)

	if result.Fail != nil {
		writeJSON(w, http.StatusOK, result.Fail)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

func (s *server) decodeParams(w http.ResponseWriter, r *http.Request) (ability.Params, bool) {
	var params ability.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, ability.Fail{Error: "请求体不是合法的 JSON"})
		return ability.Params{}, false
	}
	if err := params.Validate(); err != nil {
		writeJSON(w, http.StatusOK, ability.Fail{Error: err.Error()})
		return ability.Params{}, false
	}
	return params, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
