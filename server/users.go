package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nanhai/arena/competition"
	"github.com/nanhai/arena/errors"
)

// HandleUsers serves the user collection: list active (GET) and
// register (POST).
func (s *ArenaServer) HandleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.users.ListActive()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, users)

	case http.MethodPost:
		var user competition.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid user body: %v", err))
			return
		}
		if user.UserName == "" || user.EmployID == "" {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("userName and employId are required"))
			return
		}

		created, err := s.users.Create(&user)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		s.logger.Infow("User registered",
			"user_id", created.ID,
			"employ_id", created.EmployID,
		)
		writeSuccess(w, created)

	default:
		writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

// HandleUser serves user sub-routes:
//
//	GET    /api/users/all              all users including soft-deleted
//	GET    /api/users/employ-id/{id}   lookup by employ id (active only)
//	GET    /api/users/{id}
//	PUT    /api/users/{id}
//	DELETE /api/users/{id}             soft delete
//	POST   /api/users/{id}/restore
func (s *ArenaServer) HandleUser(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")

	switch {
	case rest == "all":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		users, err := s.users.ListAll()
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, users)

	case strings.HasPrefix(rest, "employ-id/"):
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		employID := strings.TrimPrefix(rest, "employ-id/")
		user, err := s.users.GetByEmployID(employID)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, user)

	case strings.HasSuffix(rest, "/restore"):
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		id, ok := parseID(w, s, strings.TrimSuffix(rest, "/restore"))
		if !ok {
			return
		}
		if err := s.users.Restore(id); err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		user, err := s.users.GetByID(id)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, user)

	default:
		id, ok := parseID(w, s, rest)
		if !ok {
			return
		}
		s.handleUserByID(w, r, id)
	}
}

func (s *ArenaServer) handleUserByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.users.GetByID(id)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, user)

	case http.MethodPut:
		var user competition.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid user body: %v", err))
			return
		}
		user.ID = id
		updated, err := s.users.Update(&user)
		if err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		writeSuccess(w, updated)

	case http.MethodDelete:
		if err := s.users.SoftDelete(id); err != nil {
			writeFailure(w, s.logger, err)
			return
		}
		s.logger.Infow("User soft-deleted", "user_id", id)
		writeSuccess(w, nil)

	default:
		writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

// parseID parses a path segment as an id, answering 400 on failure
func parseID(w http.ResponseWriter, s *ArenaServer, segment string) (int64, bool) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		writeFailure(w, s.logger, errors.NewInvalidRequestError("invalid id %q", segment))
		return 0, false
	}
	return id, true
}
