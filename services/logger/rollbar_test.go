package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	student := core.Student{ID: "u1", Username: "ada", Email: "ada@example.com"}
	logger.Warn("listing class assignments", errors.New("boom"), map[string]interface{}{"classId": "c1"}, student)
	logger.Info("no args")
	logger.Error("anonymous", core.Student{})

	assert.Equal(t,
		"[WARN] listing class assignments\n"+
			"boom\n"+
			"map[classId:c1]\n"+
			"{ID:u1 Username:ada Email:ada@example.com}\n"+
			"[INFO] no args\n"+
			"[ERROR] anonymous\n",
		buf.String(),
	)
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{Env: "TEST", TestMode: true})
	err := errors.New("boom")

	got := logger.prepare("msg", []interface{}{err, core.Student{ID: "u1"}, core.Student{ID: "u2"}})
	assert.Equal(t, []interface{}{"msg", err}, got, "students are not forwarded as rollbar args")
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	NewStdLogger(log.New(&buf, "", 0), false).Debug("hidden")
	NewStdLogger(log.New(&buf, "", 0), false).Warn("shown", map[string]interface{}{"kind": "network"})
	NewStdLogger(log.New(&buf, "", 0), true).Debug("verbose")

	assert.Equal(t, "[WARN] shown\nmap[kind:network]\n[DEBUG] verbose\n", buf.String())
}
