package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanhai/arena/competition"
)

func TestHandleUsers_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	body := strings.NewReader(`{
		"userName": "张三",
		"employId": "00123456",
		"groupType": "AI组",
		"subGroup": "AI-1小组"
	}`)
	code, env := doRequest(t, s, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusOK, code)

	var created competition.User
	decodeData(t, env, &created)
	require.NotZero(t, created.ID)
	assert.Equal(t, "张三", created.UserName)
	assert.Equal(t, competition.NotDeleted, created.IsDeleted)

	code, env = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, code)

	var got competition.User
	decodeData(t, env, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "00123456", got.EmployID)
}

func TestHandleUsers_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	code, _ := doRequest(t, s, http.MethodPost, "/api/users", strings.NewReader(`{"userName":"x"}`))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = doRequest(t, s, http.MethodPost, "/api/users", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandleUser_EmployIDLookup(t *testing.T) {
	s := newTestServer(t)
	seedTestUser(t, s, "李四", "00654321", competition.GroupNonAI, "非AI-1小组")

	code, env := doRequest(t, s, http.MethodGet, "/api/users/employ-id/00654321", nil)
	require.Equal(t, http.StatusOK, code)

	var got competition.User
	decodeData(t, env, &got)
	assert.Equal(t, "李四", got.UserName)

	code, _ = doRequest(t, s, http.MethodGet, "/api/users/employ-id/99999999", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandleUser_SoftDeleteAndRestore(t *testing.T) {
	s := newTestServer(t)
	user := seedTestUser(t, s, "王五", "00777777", competition.GroupAI, "AI-2小组")

	code, _ := doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil)
	require.Equal(t, http.StatusOK, code)

	// Deleted users drop out of the active list and employ-id lookup
	code, env := doRequest(t, s, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, code)
	var active []competition.User
	decodeData(t, env, &active)
	assert.Empty(t, active)

	code, _ = doRequest(t, s, http.MethodGet, "/api/users/employ-id/00777777", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// But stay visible in the full listing
	code, env = doRequest(t, s, http.MethodGet, "/api/users/all", nil)
	require.Equal(t, http.StatusOK, code)
	var all []competition.User
	decodeData(t, env, &all)
	require.Len(t, all, 1)
	assert.Equal(t, competition.Deleted, all[0].IsDeleted)

	code, env = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/users/%d/restore", user.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var restored competition.User
	decodeData(t, env, &restored)
	assert.Equal(t, competition.NotDeleted, restored.IsDeleted)
}

func TestHandleUser_Update(t *testing.T) {
	s := newTestServer(t)
	user := seedTestUser(t, s, "赵六", "00888888", competition.GroupAI, "AI-3小组")

	body := strings.NewReader(`{
		"userName": "赵六",
		"employId": "00888888",
		"groupType": "非AI组",
		"subGroup": "非AI-2小组"
	}`)
	code, env := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), body)
	require.Equal(t, http.StatusOK, code)

	var updated competition.User
	decodeData(t, env, &updated)
	assert.Equal(t, competition.GroupNonAI, updated.GroupType)
	assert.Equal(t, "非AI-2小组", updated.SubGroup)
}

func TestHandleUser_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)

	code, _ := doRequest(t, s, http.MethodGet, "/api/users/99999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doRequest(t, s, http.MethodGet, "/api/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
