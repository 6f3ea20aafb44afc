package server

import (
	"io"
	"net/http"

	"github.com/nanhai/arena/build"
	"github.com/nanhai/arena/errors"
	"github.com/nanhai/arena/internal/util"
)

// triggerAck is the synchronous webhook response. The polling chain
// keeps running after it is sent.
type triggerAck struct {
	GitBatch     string `json:"gitBatch"`
	UserUsername string `json:"userUsername"`
}

// HandleBuildTrigger accepts the CI webhook, records a pending
// submission and detaches the ingestion chain. The response never waits
// for the build system.
func (s *ArenaServer) HandleBuildTrigger(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.triggerLimiter.Allow() {
		s.logger.Warnw("Build trigger rate limited", "remote", r.RemoteAddr)
		writeEnvelope(w, http.StatusTooManyRequests, "too many triggers", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeFailure(w, s.logger, errors.NewInvalidRequestError("failed to read body: %v", err))
		return
	}

	trigger, err := build.ParseTrigger(body)
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}

	userID, err := s.resolver.Resolve(trigger.UserUsername)
	if err != nil {
		// Unresolvable handles still score: the run lands on the
		// configured catch-all participant.
		userID = s.cfg.BuildAPI.DefaultUserID
		s.logger.Warnw("Submitter not resolved, using default user",
			"handle", trigger.UserUsername,
			"default_user_id", userID,
			"error", err,
		)
	}

	sub, err := s.submissions.Create(userID, trigger.GitBatch, nil, util.Ptr(0))
	if err != nil {
		writeFailure(w, s.logger, err)
		return
	}

	s.logger.Infow("Build trigger accepted",
		"submission_id", sub.ID,
		"user_id", userID,
		"branch", trigger.GitBatch,
		"build_path", trigger.RepoPath,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ingestor.Run(s.ctx, sub.ID, trigger.RepoPath, trigger.GitBatch)
	}()

	writeSuccess(w, triggerAck{
		GitBatch:     trigger.GitBatch,
		UserUsername: trigger.UserUsername,
	})
}
