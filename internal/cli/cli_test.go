// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/summify-tui/internal/config"
	"github.com/jeranaias/summify-tui/internal/conversation"
	"github.com/jeranaias/summify-tui/internal/events"
	"github.com/jeranaias/summify-tui/internal/failure"
	"github.com/jeranaias/summify-tui/internal/model"
	"github.com/jeranaias/summify-tui/internal/orchestrator"
)

// isolate points HOME at a temp dir and clears SUMMIFY_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"SUMMIFY_ENV", "SUMMIFY_BASE_URL", "SUMMIFY_TIMEOUT",
		"SUMMIFY_LOG_LEVEL", "SUMMIFY_REDIS_ADDR",
	} {
		t.Setenv(name, "")
	}
	return home
}

// run executes the command tree with args and returns its output and exit code.
func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	code = exitCode(root, root.ExecuteContext(context.Background()))
	return out.String(), errOut.String(), code
}

// backend serves /summarize and /health like the summarization service.
func backend(t *testing.T, summarize http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/summarize", summarize)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"ready"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func replyJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigPath_Default(t *testing.T) {
	home := isolate(t)

	out, _, code := run(t, "config", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(home, ".summify", "config.toml")+"\n", out)
}

func TestConfigPath_Flag(t *testing.T) {
	isolate(t)

	out, _, code := run(t, "--config", "/tmp/elsewhere.toml", "config", "path")
	assert.Equal(t, 0, code)
	assert.Equal(t, "/tmp/elsewhere.toml\n", out)
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "summify.toml")

	out, _, code := run(t, "--config", path, "config", "init")
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, errOut, code := run(t, "--config", path, "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already exists")

	_, _, code = run(t, "--config", path, "config", "init", "--force")
	assert.Equal(t, 0, code)
}

func TestConfigShow_AppliesFlags(t *testing.T) {
	isolate(t)

	out, _, code := run(t, "--env", "production", "--timeout", "45s", "--log-level", "debug", "config", "show")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `environment = "production"`)
	assert.Contains(t, out, `timeout = "45s"`)
	assert.Contains(t, out, `level = "debug"`)
}

func TestConfigShow_DecodesBack(t *testing.T) {
	isolate(t)

	out, _, code := run(t, "--env", "production", "--timeout", "45s", "config", "show")
	require.Equal(t, 0, code)

	want, err := config.Load("")
	require.NoError(t, err)
	want.ApplyOverrides(config.Overrides{Environment: "production", Timeout: "45s"})

	var got config.Config
	_, err = toml.Decode(out, &got)
	require.NoError(t, err)
	assert.Equal(t, *want, got)
}

func TestConfigShow_InvalidFlag(t *testing.T) {
	isolate(t)

	_, errOut, code := run(t, "--timeout", "soon", "config", "show")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid flags")
}

func TestConfigShow_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, errOut, code := run(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "config", "show")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nope.toml")
}

// =============================================================================
// EVENT JOURNAL
// =============================================================================

func TestApp_EventJournal(t *testing.T) {
	isolate(t)
	srv := backend(t, replyJSON(http.StatusOK, `{"summary":"A short summary."}`))

	logPath := filepath.Join(t.TempDir(), "summify.log")
	cfg := config.Default()
	cfg.Endpoints.Development.BaseURL = srv.URL
	cfg.Log.File = logPath
	cfg.Events.Enabled = true

	a, err := newApp(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, a.bridge)

	out := a.orch.Submit(context.Background(), "https://youtu.be/abc")
	require.Equal(t, orchestrator.StatusSucceeded, out.Status)
	a.Close()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	type entry struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Sender  string `json:"sender"`
		Text    string `json:"text"`
	}
	var journal []entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var e entry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		if e.Message == "conversation event" {
			journal = append(journal, e)
		}
	}

	require.Len(t, journal, 4)
	assert.Equal(t, entry{Message: "conversation event", Type: "appended", Sender: "user", Text: "https://youtu.be/abc"}, journal[0])
	assert.Equal(t, "busy_changed", journal[1].Type)
	assert.Equal(t, entry{Message: "conversation event", Type: "appended", Sender: "bot", Text: "A short summary."}, journal[2])
	assert.Equal(t, "busy_changed", journal[3].Type)
}

var sgr = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestFormatEnvelope(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := at.Local().Format("15:04:05")

	line := sgr.ReplaceAllString(formatEnvelope(events.Envelope{
		Type:   conversation.EventAppended,
		Sender: model.SenderBot,
		Text:   "First line\nsecond line",
		Len:    3,
		At:     at,
	}), "")
	assert.Regexp(t, `^`+ts+` Summify:\s+First line \(len 3\)$`, line)

	busy := sgr.ReplaceAllString(formatEnvelope(events.Envelope{Type: conversation.EventBusyChanged, Busy: true, At: at}), "")
	assert.Equal(t, ts+" busy busy", busy)

	reset := sgr.ReplaceAllString(formatEnvelope(events.Envelope{Type: conversation.EventReset, At: at}), "")
	assert.Equal(t, ts+" reset history cleared", reset)
}

func TestTailEvents_JSON(t *testing.T) {
	envs := make(chan events.Envelope, 2)
	envs <- events.Envelope{Type: conversation.EventAppended, Sender: model.SenderUser, Text: "youtu.be/abc", Len: 2}
	envs <- events.Envelope{Type: conversation.EventReset, Len: 1}
	close(envs)

	var buf bytes.Buffer
	require.NoError(t, tailEvents(&buf, envs, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first events.Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "youtu.be/abc", first.Text)
	assert.Equal(t, model.SenderUser, first.Sender)
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_Success(t *testing.T) {
	isolate(t)
	var got struct {
		URL string `json:"url"`
	}
	srv := backend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		replyJSON(http.StatusOK, `{"summary":"A short summary."}`)(w, r)
	})

	out, _, code := run(t, "--plain", "--base-url", srv.URL, "ask", "https://youtu.be/abc")
	assert.Equal(t, 0, code)
	assert.Equal(t, "A short summary.\n", out)
	assert.Equal(t, "https://youtu.be/abc", got.URL)
}

func TestAsk_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		url     string
		want    string
	}{
		{
			name:    "captions",
			handler: replyJSON(http.StatusBadRequest, `{"detail":"captions not found"}`),
			url:     "https://youtu.be/abc",
			want:    failure.MsgCaptionsUnavailable,
		},
		{
			name:    "empty summary",
			handler: replyJSON(http.StatusOK, `{"summary":""}`),
			url:     "https://youtu.be/abc",
			want:    failure.MsgEmptySummary,
		},
		{
			name: "invalid url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("backend must not be called")
			},
			url:  "https://vimeo.com/1",
			want: failure.MsgValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			srv := backend(t, tt.handler)

			out, _, code := run(t, "--plain", "--base-url", srv.URL, "ask", tt.url)
			assert.Equal(t, 1, code)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestAsk_BlankURL(t *testing.T) {
	isolate(t)

	_, errOut, code := run(t, "--plain", "ask", "   ")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nothing to summarize")
}

func TestAsk_RequiresOneArg(t *testing.T) {
	isolate(t)

	_, errOut, code := run(t, "ask")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "accepts 1 arg")
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth_OK(t *testing.T) {
	isolate(t)
	srv := backend(t, replyJSON(http.StatusOK, `{}`))

	out, _, code := run(t, "--base-url", srv.URL, "health")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "development")
	assert.Contains(t, out, srv.URL)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "ready")
}

func TestHealth_Unreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, _, code := run(t, "--base-url", url, "health")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unreachable")
}

func TestCheckHealth_KeepsOrder(t *testing.T) {
	up := backend(t, replyJSON(http.StatusOK, `{}`))
	degraded := httptest.NewServer(replyJSON(http.StatusOK, `{"status":"starting"}`))
	t.Cleanup(degraded.Close)

	results := checkHealth(context.Background(), []config.Endpoint{
		{Environment: config.EnvProduction, BaseURL: degraded.URL},
		{Environment: config.EnvDevelopment, BaseURL: up.URL},
	})
	require.Len(t, results, 2)
	assert.False(t, results[0].OK())
	assert.True(t, results[1].OK())

	var buf bytes.Buffer
	assert.False(t, printHealth(&buf, results))
	assert.Contains(t, buf.String(), `unhealthy (status "starting")`)
}

func TestAllEndpoints(t *testing.T) {
	cfg := config.Default()
	eps := allEndpoints(cfg)
	require.Len(t, eps, 2)
	assert.Equal(t, config.EnvProduction, eps[0].Environment)
	assert.Equal(t, config.EnvDevelopment, eps[1].Environment)
	assert.Equal(t, config.EnvDevelopment, cfg.Environment, "source config untouched")
}

// =============================================================================
// EVENTS
// =============================================================================

func TestEventsTail_RequiresRedis(t *testing.T) {
	isolate(t)

	_, errOut, code := run(t, "events", "tail")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "needs the redis backend")
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCode(t *testing.T) {
	var errOut bytes.Buffer
	root := NewRootCommand()
	root.SetErr(&errOut)

	assert.Equal(t, 0, exitCode(root, nil))
	assert.Equal(t, 3, exitCode(root, &ExitError{Code: 3}))
	assert.Empty(t, errOut.String())

	assert.Equal(t, 1, exitCode(root, os.ErrNotExist))
	assert.Contains(t, errOut.String(), os.ErrNotExist.Error())
}
