package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/chatsniff/internal/core"
)

type mockReporter struct {
	name string
}

func (m *mockReporter) Name() string                                       { return m.name }
func (m *mockReporter) Init(map[string]any) error                          { return nil }
func (m *mockReporter) Start(context.Context) error                        { return nil }
func (m *mockReporter) Stop(context.Context) error                         { return nil }
func (m *mockReporter) Report(context.Context, *core.BroadcastEvent) error { return nil }
func (m *mockReporter) Flush(context.Context) error                        { return nil }

func TestRegisterAndGetReporter(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	RegisterReporter("test_rep", func() Reporter { return &mockReporter{name: "test_rep"} })

	factory, err := GetReporterFactory("test_rep")
	require.NoError(t, err)
	assert.Equal(t, "test_rep", factory().Name())
	assert.Equal(t, []string{"test_rep"}, ReporterNames())
}

func TestGetUnknownReporter(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	_, err := GetReporterFactory("nope")
	assert.ErrorIs(t, err, core.ErrReporterNotFound)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reporterReg.Reset()
	t.Cleanup(reporterReg.Reset)

	f := func() Reporter { return &mockReporter{name: "dup"} }
	RegisterReporter("dup", f)
	assert.Panics(t, func() { RegisterReporter("dup", f) })
}
