package v1

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryMutationsAreAdminOnly(t *testing.T) {
	app := newTestApp()
	userToken, _ := registerAndLogin(t, app, "user")

	resp := doJSON(t, app, "POST", "/api/categories", userToken, map[string]string{"name": "Sneaky"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "PUT", "/api/categories/1", userToken, map[string]string{"name": "Sneaky"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", "/api/categories/1", userToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Reading the list is allowed: the task form needs it.
	resp = doJSON(t, app, "GET", "/api/categories", userToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCategoryCRUD(t *testing.T) {
	app := newTestApp()
	adminToken, _ := registerAndLogin(t, app, "admin")

	resp := doJSON(t, app, "POST", "/api/categories", adminToken, map[string]string{"name": "Errands"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decodeBody(t, resp, &created)
	category := created["category"].(map[string]interface{})
	categoryID := int(category["id"].(float64))
	assert.Equal(t, "Errands", category["name"])

	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/categories/%d", categoryID), adminToken, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]interface{}
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Renamed", updated["name"])

	resp = doJSON(t, app, "GET", "/api/categories", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []map[string]interface{}
	decodeBody(t, resp, &categories)
	found := false
	for _, c := range categories {
		if int(c["id"].(float64)) == categoryID {
			found = true
			assert.Equal(t, "Renamed", c["name"])
		}
	}
	assert.True(t, found, "expected renamed category in list")

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/categories/%d", categoryID), adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/categories/%d", categoryID), adminToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Deleting a category must not delete its tasks; they keep existing
// with a null category reference.
func TestDeleteCategoryUnassignsTasks(t *testing.T) {
	app := newTestApp()
	adminToken, _ := registerAndLogin(t, app, "admin")
	userToken, _ := registerAndLogin(t, app, "user")
	categoryID := seedCategory(t, "Doomed")

	createTask(t, app, userToken, map[string]interface{}{
		"title":       "Survivor",
		"description": "Outlives its category",
		"categoryId":  categoryID,
		"dueDate":     "2025-08-08",
	})

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/categories/%d", categoryID), adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	tasks := listTasks(t, app, userToken)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Survivor", tasks[0]["title"])
	assert.Nil(t, tasks[0]["categoryId"])
	assert.Nil(t, tasks[0]["Category"])
}
