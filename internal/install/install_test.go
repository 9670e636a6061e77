package install_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flakehound/detector/internal/framework"
	"github.com/flakehound/detector/internal/install"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDependenciesSkipsWithoutManifest(t *testing.T) {
	// requirements.txt is absent, so nothing is invoked.
	install.Dependencies(context.Background(), discardLogger(),
		framework.Python, t.TempDir())
}

func TestDependenciesSkipsUnknownFramework(t *testing.T) {
	install.Dependencies(context.Background(), discardLogger(),
		framework.Unknown, t.TempDir())
}

func TestDependenciesFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	// A requirements file that cannot install; the call must still
	// return normally.
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "requirements.txt"),
		[]byte("definitely-not-a-real-package-2f9c==99.99.99\n"), 0644))

	install.Dependencies(context.Background(), discardLogger(),
		framework.Python, dir)
}
