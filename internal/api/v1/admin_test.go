package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	app := newTestApp()
	userToken, _ := registerAndLogin(t, app, "user")

	resp := doJSON(t, app, "GET", "/api/admin/dashboard", userToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/admin/users", userToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminDashboardAggregatesAllUsersTasks(t *testing.T) {
	app := newTestApp()
	adminToken, _ := registerAndLogin(t, app, "admin")
	aliceToken, aliceEmail := registerAndLogin(t, app, "user")
	bobToken, bobEmail := registerAndLogin(t, app, "user")
	categoryID := seedCategory(t, "Shared")

	createTask(t, app, aliceToken, map[string]interface{}{
		"title":       "Alice task",
		"description": "Hers",
		"categoryId":  categoryID,
		"dueDate":     "2025-09-09",
	})
	createTask(t, app, bobToken, map[string]interface{}{
		"title":       "Bob task",
		"description": "His",
		"categoryId":  categoryID,
		"dueDate":     "2025-10-10",
	})

	resp := doJSON(t, app, "GET", "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	decodeBody(t, resp, &result)
	tasks, ok := result["tasks"].([]interface{})
	require.True(t, ok, "expected tasks array in dashboard response")

	owners := map[string]bool{}
	for _, raw := range tasks {
		task := raw.(map[string]interface{})
		owner, ok := task["User"].(map[string]interface{})
		require.True(t, ok, "expected joined User object on dashboard task")
		owners[owner["email"].(string)] = true
	}
	assert.True(t, owners[aliceEmail], "expected a task owned by the first user")
	assert.True(t, owners[bobEmail], "expected a task owned by the second user")
}

func TestAdminUsersOmitsPasswordHash(t *testing.T) {
	app := newTestApp()
	adminToken, _ := registerAndLogin(t, app, "admin")
	_, aliceEmail := registerAndLogin(t, app, "user")

	resp := doJSON(t, app, "GET", "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]interface{}
	decodeBody(t, resp, &users)

	found := false
	for _, user := range users {
		if user["email"] == aliceEmail {
			found = true
			assert.Equal(t, "user", user["role"])
		}
		_, hasPassword := user["password"]
		assert.False(t, hasPassword, "password hash must never be serialized")
		_, hasHash := user["passwordHash"]
		assert.False(t, hasHash, "password hash must never be serialized")
	}
	assert.True(t, found, "expected registered user in admin listing")
}
