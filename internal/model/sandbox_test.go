package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/dbsandbox/internal/model"
)

func TestSandboxValidate(t *testing.T) {
	valid := func() model.Sandbox {
		return model.Sandbox{
			ID:        "01H2QWERTYASDFGZXCVBNMLKJH",
			Port:      3310,
			BaseDir:   "/tmp/sandboxes/3310",
			Status:    model.SandboxStatusDeployed,
			CreatedAt: time.Now().UTC(),
		}
	}

	tests := map[string]struct {
		sandbox func() model.Sandbox
		expErr  bool
	}{
		"A valid sandbox should not fail": {
			sandbox: valid,
		},

		"Missing ID should fail": {
			sandbox: func() model.Sandbox {
				s := valid()
				s.ID = ""
				return s
			},
			expErr: true,
		},

		"Missing base dir should fail": {
			sandbox: func() model.Sandbox {
				s := valid()
				s.BaseDir = ""
				return s
			},
			expErr: true,
		},

		"Zero port should fail": {
			sandbox: func() model.Sandbox {
				s := valid()
				s.Port = 0
				return s
			},
			expErr: true,
		},

		"A port whose extended port overflows should fail": {
			sandbox: func() model.Sandbox {
				s := valid()
				s.Port = 7000
				return s
			},
			expErr: true,
		},

		"Unknown status should fail": {
			sandbox: func() model.Sandbox {
				s := valid()
				s.Status = "paused"
				return s
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := test.sandbox().Validate()

			if test.expErr {
				assert.Error(err)
				assert.True(errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestTestContextString(t *testing.T) {
	assert.Equal(t, "unknown location", model.TestContext{}.String())
	assert.Equal(t, "cluster_test.js:42", model.TestContext{File: "cluster_test.js", Line: 42}.String())
}

func TestParseSandboxStatus(t *testing.T) {
	tests := map[string]struct {
		status    string
		expStatus model.SandboxStatus
		expErr    bool
	}{
		"A known status should parse.": {
			status:    "running",
			expStatus: model.SandboxStatusRunning,
		},

		"Case and spaces should be ignored.": {
			status:    " Killed ",
			expStatus: model.SandboxStatusKilled,
		},

		"An unknown status should fail.": {
			status: "paused",
			expErr: true,
		},

		"An empty status should fail.": {
			status: "",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			status, err := model.ParseSandboxStatus(test.status)

			if test.expErr {
				assert.ErrorIs(err, model.ErrNotValid)
			} else if assert.NoError(err) {
				assert.Equal(test.expStatus, status)
			}
		})
	}
}
