package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitAndLevelString(t *testing.T) {
	defer Init("info", "console")

	Init("debug", "console")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN", "json")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error", "")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense", "")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFiltering(t *testing.T) {
	defer Init("info", "console")
	Init("warn", "console")

	core, logs := observer.New(level)
	restore := replaceCore(core)
	defer restore()

	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg %d", 1)
	Errorf("error-msg")

	if logs.FilterMessage("debug-msg").Len() != 0 {
		t.Fatalf("debug messages should be suppressed at warn level")
	}
	if logs.FilterMessage("info-msg").Len() != 0 {
		t.Fatalf("info messages should be suppressed at warn level")
	}
	if logs.FilterMessage("warn-msg 1").Len() != 1 {
		t.Fatalf("warn message missing: %v", logs.All())
	}
	if logs.FilterMessage("error-msg").Len() != 1 {
		t.Fatalf("error message missing: %v", logs.All())
	}

	Init("info", "console")
	restore2 := replaceCore(core)
	defer restore2()
	Info("hello")
	if logs.FilterMessage("hello").Len() != 1 {
		t.Fatalf("Info expected at info level")
	}
}

func TestGinLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := replaceCore(core)
	defer restore()

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 request entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("2xx should log at info, got %v", entries[0].Level)
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("5xx should log at error, got %v", entries[1].Level)
	}
	if entries[1].ContextMap()["path"] != "/boom" {
		t.Fatalf("unexpected path field: %v", entries[1].ContextMap())
	}
}
