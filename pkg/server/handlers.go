package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sourceinfo/sourceinfo/internal/store"
	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Bulk lookup mode: ?domains=a.com,b.com returns a map keyed by the
	// normalized domain, missing entries simply absent.
	if raw := q.Get("domains"); raw != "" {
		var domains []string
		for _, d := range strings.Split(raw, ",") {
			normalized, err := source.Normalize(d)
			if err != nil {
				s.writeError(w, err)
				return
			}
			domains = append(domains, normalized)
		}
		found, err := s.store.GetByDomains(r.Context(), domains)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sources": found,
			"found":   len(found),
			"queried": len(domains),
		})
		return
	}

	var opts store.ListOpts
	if v := q.Get("lean"); v != "" {
		lean, err := strconv.Atoi(v)
		if err != nil || lean < source.LeanLeft || lean > source.LeanRight {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid lean %q", v)})
			return
		}
		opts.Lean = &lean
	}
	if v := q.Get("min_credibility"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid min_credibility %q", v)})
			return
		}
		opts.MinCredibility = &min
	}
	if v := q.Get("source_type"); v != "" {
		opts.SourceType = source.ParseType(v)
	}
	if v := q.Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}

	sources, total, err := s.store.ListSources(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filters := map[string]any{}
	if opts.Lean != nil {
		filters["lean"] = *opts.Lean
	}
	if opts.MinCredibility != nil {
		filters["min_credibility"] = *opts.MinCredibility
	}
	if opts.SourceType != "" {
		filters["source_type"] = opts.SourceType
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources":         sources,
		"total":           total,
		"limit":           opts.Limit,
		"offset":          opts.Offset,
		"filters_applied": filters,
	})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	domain, err := source.Normalize(chi.URLParam(r, "domain"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	src, err := s.store.GetByDomain(r.Context(), domain)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

// counternarrativeItem flattens a candidate for the API: source fields plus
// the weighted score at the top level.
type counternarrativeItem struct {
	source.Source
	WeightedScore float64 `json:"weighted_score"`
}

func (s *Server) handleCounternarratives(w http.ResponseWriter, r *http.Request) {
	domain, err := source.Normalize(chi.URLParam(r, "domain"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	var c evidence.Constraints
	if v := q.Get("min_credibility"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid min_credibility %q", v)})
			return
		}
		c.MinCredibility = min
	}
	if v := q.Get("limit"); v != "" {
		c.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("preferred_leans"); v != "" {
		for _, part := range strings.Split(v, ",") {
			lean, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid preferred_leans %q", v)})
				return
			}
			c.PreferredLeans = append(c.PreferredLeans, lean)
		}
	}

	result, err := s.engine.Counternarratives(r.Context(), domain, c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse(result))
}

func matchResponse(result *evidence.MatchResult) map[string]any {
	items := make([]counternarrativeItem, 0, len(result.Candidates))
	for _, cand := range result.Candidates {
		items = append(items, counternarrativeItem{Source: cand.Source, WeightedScore: cand.WeightedScore})
	}
	leanLabel := "Unknown"
	if lean, ok := result.Source.Lean(); ok {
		leanLabel = source.LeanLabel(lean)
	}
	return map[string]any{
		"source_domain":     result.Source.Domain,
		"source_name":       result.Source.Name,
		"source_lean":       leanLabel,
		"counternarratives": items,
		"total":             result.Total,
		"non_strict":        result.NonStrict,
	}
}

type scoreRequest struct {
	Domain  string           `json:"domain"`
	Context evidence.Context `json:"context"`
}

// scoreResponse flattens the score fields next to the source, the shape the
// original API exposed.
type scoreResponse struct {
	Source *source.Source `json:"source"`
	evidence.ScoreResult
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	domain, err := source.Normalize(req.Domain)
	if err != nil {
		s.writeError(w, err)
		return
	}

	src, result, err := s.engine.Score(r.Context(), domain, req.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Source: src, ScoreResult: *result})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type analyzeRequest struct {
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Model   string `json:"model,omitempty"`
	// Defaults to true when absent; an explicit false skips the lookup.
	IncludeCounternarratives *bool `json:"include_counternarratives,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "analysis disabled: no API key configured"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	resp, status := s.analyzeOne(r, req)
	writeJSON(w, status, resp)
}

// analyzeOne runs the full analysis pipeline for one URL: fetch (unless
// content was provided), grade, and attach the publisher's catalogue entry
// and counternarratives when the domain is catalogued.
func (s *Server) analyzeOne(r *http.Request, req analyzeRequest) (map[string]any, int) {
	resp := map[string]any{"url": req.URL}

	content := req.Content
	if content == "" {
		art, err := s.fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			resp["error"] = err.Error()
			return resp, http.StatusBadGateway
		}
		content = art.Content
		resp["fetch"] = art
	}

	result, err := s.analyzer.Analyze(r.Context(), req.URL, content, req.Model)
	if err != nil {
		resp["error"] = err.Error()
		return resp, http.StatusBadGateway
	}
	resp["analysis"] = result

	domain, err := source.Normalize(req.URL)
	if err == nil {
		if src, err := s.store.GetByDomain(r.Context(), domain); err == nil {
			resp["source"] = src

			include := req.IncludeCounternarratives == nil || *req.IncludeCounternarratives
			if include {
				match, err := s.engine.Counternarratives(r.Context(), domain, evidence.Constraints{})
				if err == nil {
					resp["counternarratives"] = matchResponse(match)
				} else {
					s.log.Warn("counternarratives lookup failed",
						slog.String("domain", domain), slog.Any("err", err))
				}
			}
		}
	}

	return resp, http.StatusOK
}

type batchRequest struct {
	URLs  []string `json:"urls"`
	Model string   `json:"model,omitempty"`
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "analysis disabled: no API key configured"})
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "urls is required"})
		return
	}
	if len(req.URLs) > 50 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at most 50 urls per batch"})
		return
	}

	batchID := uuid.NewString()
	results := make([]map[string]any, 0, len(req.URLs))
	succeeded := 0
	for _, u := range req.URLs {
		item, status := s.analyzeOne(r, analyzeRequest{URL: u, Model: req.Model})
		if status == http.StatusOK {
			succeeded++
		}
		results = append(results, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id":  batchID,
		"results":   results,
		"count":     len(results),
		"succeeded": succeeded,
	})
}

type contentRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "content fetching disabled"})
		return
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	art, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid days %q", v)})
			return
		}
		days = parsed
	}

	stats, err := s.store.UsageStats(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
