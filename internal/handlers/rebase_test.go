package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/git/executor"
	"github.com/rebasekit/rebasekit/internal/services"
)

type testEnv struct {
	app    *fiber.App
	exec   *executor.InMemoryExecutor
	hashes []string
}

func setupApp(t *testing.T, summaries ...string) *testEnv {
	t.Helper()
	repo, hashes, err := executor.NewTestRepositoryWithHistory(summaries...)
	require.NoError(t, err)

	exec := executor.NewInMemoryExecutor()
	exec.AddRepository("/test/repo", repo)

	ops := git.NewOperationsWithExecutor(exec)
	app := fiber.New()
	Register(app, services.NewRebaseService(ops), ops)

	full := make([]string, len(hashes))
	for i, hash := range hashes {
		full[i] = hash.String()
	}
	return &testEnv{app: app, exec: exec, hashes: full}
}

func (env *testEnv) request(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	} else {
		parsed = map[string]interface{}{"body": string(raw)}
	}
	return resp.StatusCode, parsed
}

func (env *testEnv) createSession(t *testing.T) string {
	t.Helper()
	status, body := env.request(t, "POST", "/v1/rebase/sessions/", map[string]string{
		"repo_path": "/test/repo",
		"onto_ref":  env.hashes[0],
	})
	require.Equal(t, 200, status)
	session := body["session"].(map[string]interface{})
	return session["id"].(string)
}

func TestCreateSessionEndpoint(t *testing.T) {
	env := setupApp(t, "base", "feat", "fixup! feat")

	t.Run("ReturnsPlanPreviewAndStats", func(t *testing.T) {
		status, body := env.request(t, "POST", "/v1/rebase/sessions/", map[string]string{
			"repo_path": "/test/repo",
			"onto_ref":  env.hashes[0],
		})
		require.Equal(t, 200, status)

		session := body["session"].(map[string]interface{})
		plan := session["plan"].([]interface{})
		assert.Len(t, plan, 2)

		first := plan[0].(map[string]interface{})
		assert.Equal(t, "pick", first["action"])
		assert.Equal(t, "feat", first["summary"])

		assert.True(t, body["can_execute"].(bool))
		stats := body["stats"].(map[string]interface{})
		assert.Equal(t, float64(2), stats["kept"])
	})

	t.Run("MissingFields", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/v1/rebase/sessions/", map[string]string{})
		assert.Equal(t, 400, status)
	})

	t.Run("UnknownRepo", func(t *testing.T) {
		status, body := env.request(t, "POST", "/v1/rebase/sessions/", map[string]string{
			"repo_path": "/nope",
			"onto_ref":  "HEAD",
		})
		assert.Equal(t, 404, status)
		assert.Contains(t, body["error"].(string), "not a git repository")
	})
}

func TestSessionMutationEndpoints(t *testing.T) {
	env := setupApp(t, "base", "one", "two", "three")
	id := env.createSession(t)

	t.Run("SetAction", func(t *testing.T) {
		status, body := env.request(t, "PUT", "/v1/rebase/sessions/"+id+"/entries/1/action", map[string]string{
			"action": "squash",
		})
		require.Equal(t, 200, status)
		preview := body["preview"].([]interface{})
		assert.Len(t, preview, 2)
	})

	t.Run("InvalidAction", func(t *testing.T) {
		status, _ := env.request(t, "PUT", "/v1/rebase/sessions/"+id+"/entries/1/action", map[string]string{
			"action": "explode",
		})
		assert.Equal(t, 400, status)
	})

	t.Run("Reorder", func(t *testing.T) {
		status, body := env.request(t, "POST", "/v1/rebase/sessions/"+id+"/reorder", map[string]int{
			"from": 0, "to": 2,
		})
		require.Equal(t, 200, status)
		session := body["session"].(map[string]interface{})
		plan := session["plan"].([]interface{})
		last := plan[2].(map[string]interface{})
		assert.Equal(t, "one", last["summary"])
	})

	t.Run("ReorderOutOfRange", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/v1/rebase/sessions/"+id+"/reorder", map[string]int{
			"from": 0, "to": 99,
		})
		assert.Equal(t, 400, status)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		status, _ := env.request(t, "POST", "/v1/rebase/sessions/missing/reorder", map[string]int{
			"from": 0, "to": 1,
		})
		assert.Equal(t, 404, status)
	})
}

func TestAutosquashEndpoint(t *testing.T) {
	env := setupApp(t, "base", "feat", "other", "fixup! feat", "squash! lost")
	id := env.createSession(t)

	status, body := env.request(t, "POST", "/v1/rebase/sessions/"+id+"/autosquash", nil)
	require.Equal(t, 200, status)

	unmatched := body["unmatched"].([]interface{})
	require.Len(t, unmatched, 1)

	session := body["session"].(map[string]interface{})
	plan := session["plan"].([]interface{})
	second := plan[1].(map[string]interface{})
	assert.Equal(t, "fixup", second["action"])
	assert.Equal(t, "fixup! feat", second["summary"])
}

func TestExecuteEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupApp(t, "base", "one")
		id := env.createSession(t)

		status, body := env.request(t, "POST", "/v1/rebase/sessions/"+id+"/execute", nil)
		require.Equal(t, 200, status)
		assert.Contains(t, body["message"].(string), "completed")
		assert.Len(t, env.exec.RebaseCalls, 1)

		// Session is gone after success.
		status, _ = env.request(t, "GET", "/v1/rebase/sessions/"+id, nil)
		assert.Equal(t, 404, status)
	})

	t.Run("InvalidPlanIs422", func(t *testing.T) {
		env := setupApp(t, "base", "one")
		id := env.createSession(t)

		status, _ := env.request(t, "PUT", "/v1/rebase/sessions/"+id+"/entries/0/action", map[string]string{
			"action": "fixup",
		})
		require.Equal(t, 200, status)

		status, _ = env.request(t, "POST", "/v1/rebase/sessions/"+id+"/execute", nil)
		assert.Equal(t, 422, status)
	})

	t.Run("ConflictIs409WithCode", func(t *testing.T) {
		env := setupApp(t, "base", "one")
		id := env.createSession(t)

		env.exec.RebaseErr = fmt.Errorf("exit status 1")
		env.exec.RebaseStderr = "CONFLICT (content): Merge conflict in file1.txt"

		status, body := env.request(t, "POST", "/v1/rebase/sessions/"+id+"/execute", nil)
		assert.Equal(t, 409, status)
		assert.Equal(t, "REBASE_CONFLICT", body["code"])

		// The session survives a conflict for retry.
		status, _ = env.request(t, "GET", "/v1/rebase/sessions/"+id, nil)
		assert.Equal(t, 200, status)
	})
}

func TestPlanTextEndpoint(t *testing.T) {
	env := setupApp(t, "base", "one", "two")
	id := env.createSession(t)

	status, body := env.request(t, "GET", "/v1/rebase/sessions/"+id+"/plan", nil)
	require.Equal(t, 200, status)
	assert.Contains(t, body["body"].(string), "pick ")
	assert.Contains(t, body["body"].(string), "one")
}

func TestRepoEndpoint(t *testing.T) {
	env := setupApp(t, "base")

	t.Run("Info", func(t *testing.T) {
		status, body := env.request(t, "GET", "/v1/repo?path=/test/repo", nil)
		require.Equal(t, 200, status)
		assert.Equal(t, "master", body["current_branch"])
	})

	t.Run("NotARepo", func(t *testing.T) {
		status, _ := env.request(t, "GET", "/v1/repo?path=/nope", nil)
		assert.Equal(t, 404, status)
	})
}

func TestHealthEndpoint(t *testing.T) {
	env := setupApp(t, "base")
	status, body := env.request(t, "GET", "/health", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "ok", body["status"])
}
