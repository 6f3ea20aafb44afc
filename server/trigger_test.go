package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanhai/arena/competition"
)

const triggerBody = `{
	"git_branch": "feature/scoring",
	"user_username": "z00123456",
	"project": {"web_url": "https://codehub.huawei.com/innersource/x"}
}`

func TestHandleBuildTrigger_AcksBeforeChainCompletes(t *testing.T) {
	s := newTestServer(t)
	seedTestUser(t, s, "张三", "00123456", competition.GroupAI, "AI-1小组")

	start := time.Now()
	code, env := doRequest(t, s, http.MethodPost, "/api/build-trigger", strings.NewReader(triggerBody))
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, code)
	assert.Less(t, elapsed, 2*time.Second, "ack must not wait for the polling chain")

	var ack triggerAck
	decodeData(t, env, &ack)
	assert.Equal(t, "feature/scoring", ack.GitBatch)
	assert.Equal(t, "z00123456", ack.UserUsername)

	// A pending submission exists for the resolved user, result unset
	subs, err := s.submissions.ListAll()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "feature/scoring", subs[0].Branch)
	assert.Nil(t, subs[0].Passed, "result stays unset until the pipeline resolves it")
}

func TestHandleBuildTrigger_UnresolvedHandleFallsBackToDefaultUser(t *testing.T) {
	s := newTestServer(t)
	fallback := seedTestUser(t, s, "默认", "99999999", competition.GroupAI, "AI-4小组")
	s.cfg.BuildAPI.DefaultUserID = fallback.ID

	code, _ := doRequest(t, s, http.MethodPost, "/api/build-trigger", strings.NewReader(triggerBody))
	require.Equal(t, http.StatusOK, code)

	subs, err := s.submissions.ListAll()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, fallback.ID, subs[0].UserID)
}

func TestHandleBuildTrigger_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	code, _ := doRequest(t, s, http.MethodPost, "/api/build-trigger", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, code)

	subs, err := s.submissions.ListAll()
	require.NoError(t, err)
	assert.Empty(t, subs, "rejected triggers record nothing")
}

func TestHandleBuildTrigger_RateLimited(t *testing.T) {
	s := newTestServer(t)
	s.triggerLimiter.SetBurst(0)

	code, env := doRequest(t, s, http.MethodPost, "/api/build-trigger", strings.NewReader(triggerBody))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, http.StatusTooManyRequests, env.Code)
}
