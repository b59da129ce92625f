package eqlog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	ProgressOutput = io.Discard
	os.Exit(m.Run())
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) RunFile(path string) (*Outcome, error) {
	args := m.Called(path)
	out, _ := args.Get(0).(*Outcome)
	return out, args.Error(1)
}

func (m *mockEngine) RunSource(source []byte) (*Outcome, error) {
	args := m.Called(source)
	out, _ := args.Get(0).(*Outcome)
	return out, args.Error(1)
}

func TestProcessPathDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.eql":      "q(b).",
		"a.eql":      "p(a).",
		"sub/c.pl":   "r(c).",
		"readme.txt": "ignored",
	})

	a, b, c := filepath.Join(dir, "a.eql"), filepath.Join(dir, "b.eql"), filepath.Join(dir, "sub/c.pl")
	engine := new(mockEngine)
	engine.On("RunFile", a).Return(&Outcome{Filename: a, Report: "A"}, nil)
	engine.On("RunFile", b).Return(nil, errors.New("broken"))
	engine.On("RunFile", c).Return(&Outcome{Filename: c, Report: "C"}, nil)

	outcomes, err := ProcessPath(context.Background(), zap.NewNop(), engine, dir)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "A", outcomes[0].Report)
	assert.Equal(t, b, outcomes[1].Filename)
	assert.EqualError(t, outcomes[1].Err, "broken")
	assert.Equal(t, "C", outcomes[2].Report)
	engine.AssertExpectations(t)
	engine.AssertNotCalled(t, "RunFile", filepath.Join(dir, "readme.txt"))
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.txt": "p(a). ?- p(a).",
		"two.eql": "?- p(a).",
	})

	e, err := NewEngine(DefaultConfig(), Options{})
	require.NoError(t, err)

	// an explicitly named file is run whatever its extension
	outcomes, err := ProcessFiles(context.Background(), nil, e, []string{
		filepath.Join(dir, "one.txt"),
		filepath.Join(dir, "two.eql"),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "-? (p a)\n[];\n", outcomes[0].Report)
	assert.Equal(t, "-? (p a)\nunknown.\n", outcomes[1].Report)

	_, err = ProcessFiles(context.Background(), nil, e, []string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestProcessPathCancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.eql": "p(a)."})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockEngine)
	_, err := ProcessPath(ctx, nil, engine, dir)
	assert.ErrorIs(t, err, context.Canceled)
	engine.AssertNotCalled(t, "RunFile", mock.Anything)
}
