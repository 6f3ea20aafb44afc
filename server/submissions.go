package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nanhai/arena/errors"
)

// HandleSubmissions serves the submission collection: list all (GET)
// and record manually (POST). Manual submissions take query parameters
// so the recording form can post without a body.
func (s *ArenaServer) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		subs, err := s.submissions.ListAll()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, subs)

	case http.MethodPost:
		query := r.URL.Query()

		userID, err := strconv.ParseInt(query.Get("userId"), 10, 64)
		if err != nil {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid userId %q", query.Get("userId")))
			return
		}
		branch := query.Get("branch")
		if branch == "" {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("branch is required"))
			return
		}

		passed, ok := optionalIntParam(w, s, query.Get("passed"), "passed")
		if !ok {
			return
		}
		completionTime, ok := optionalIntParam(w, s, query.Get("completionTime"), "completionTime")
		if !ok {
			return
		}

		sub, err := s.submissions.Create(userID, branch, passed, completionTime)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		s.logger.Infow("Submission recorded",
			"submission_id", sub.ID,
			"user_id", userID,
			"branch", branch,
		)
		writeSuccess(w, sub)

	default:
		writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

// HandleSubmission serves submission sub-routes:
//
//	GET /api/submissions/user/{id}
//	GET /api/submissions/branch/{branch}
//	GET /api/submissions/passed?minPassed=N
//	GET /api/submissions/completion-time?maxCompletionTime=N
//	GET /api/submissions/recent?limit=N
//	GET /api/submissions/top3
//	GET /api/submissions/full-pass?groupType=G
//	GET /api/submissions/stats/average-completion-time
//	GET /api/submissions/stats/average-passed
func (s *ArenaServer) HandleSubmission(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/submissions/")

	switch {
	case strings.HasPrefix(rest, "user/"):
		id, ok := parseID(w, s, strings.TrimPrefix(rest, "user/"))
		if !ok {
			return
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.submissions.ListByUser(id) })

	case strings.HasPrefix(rest, "branch/"):
		branch := strings.TrimPrefix(rest, "branch/")
		s.listSubmissions(w, func() (interface{}, error) { return s.submissions.ListByBranch(branch) })

	case rest == "passed":
		minPassed, err := strconv.Atoi(r.URL.Query().Get("minPassed"))
		if err != nil {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid minPassed"))
			return
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.submissions.ListByMinPassed(minPassed) })

	case rest == "completion-time":
		maxTime, err := strconv.Atoi(r.URL.Query().Get("maxCompletionTime"))
		if err != nil {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid maxCompletionTime"))
			return
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.submissions.ListByMaxCompletionTime(maxTime) })

	case rest == "recent":
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid limit"))
				return
			}
			limit = parsed
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.submissions.ListRecent(limit) })

	case rest == "top3":
		totalCases, err := s.comps.TotalCases()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.stats.Top3(totalCases) })

	case rest == "full-pass":
		groupType := r.URL.Query().Get("groupType")
		if groupType == "" {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("groupType is required"))
			return
		}
		totalCases, err := s.comps.TotalCases()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		s.listSubmissions(w, func() (interface{}, error) { return s.stats.FullPassByGroup(groupType, totalCases) })

	case rest == "stats/average-completion-time":
		avg, err := s.submissions.AverageCompletionTime()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, avg)

	case rest == "stats/average-passed":
		avg, err := s.submissions.AveragePassed()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, avg)

	default:
		id, ok := parseID(w, s, rest)
		if !ok {
			return
		}
		sub, err := s.submissions.GetByID(id)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, sub)
	}
}

func (s *ArenaServer) listSubmissions(w http.ResponseWriter, fetch func() (interface{}, error)) {
	data, err := fetch()
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}
	writeSuccess(w, data)
}

// optionalIntParam parses an optional integer query parameter, nil when
// absent
func optionalIntParam(w http.ResponseWriter, s *ArenaServer, raw, name string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid %s %q", name, raw))
		return nil, false
	}
	return &v, true
}
