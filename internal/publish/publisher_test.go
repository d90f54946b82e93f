package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/store"
)

const okWriter = `#!/bin/sh
input=""
output=""
while [ $# -gt 0 ]; do
  case "$1" in
    --input) input="$2"; shift 2 ;;
    --output) output="$2"; shift 2 ;;
    --validate-only) shift ;;
    *) shift ;;
  esac
done
[ -f "$input" ] || { echo "missing input" >&2; exit 1; }
[ -n "$PLASH_TARGET_VIEWPORT_HEIGHT" ] || { echo "missing viewport env" >&2; exit 1; }
[ -n "$PLASH_LAYOUT_SAFETY_MARGIN" ] || { echo "missing margin env" >&2; exit 1; }
[ -n "$PLASH_LAYOUT_OVERFLOW_TOLERANCE" ] || { echo "missing tolerance env" >&2; exit 1; }
if [ -n "$output" ]; then
  cp "$input" "$output.tmp" && mv "$output.tmp" "$output"
fi
exit 0
`

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "writer.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func testProfile() models.DisplayProfile {
	return models.DisplayProfile{
		WidthPx:              1920,
		HeightPx:             1080,
		SafeTopPx:            96,
		SafeBottomPx:         106,
		SafeSidePx:           28,
		LayoutSafetyMarginPx: 24,
	}
}

func testPayload() map[string]any {
	return map[string]any{"title": "X", "summary": "s"}
}

func TestValidateOnlyDoesNotTouchLive(t *testing.T) {
	livePath := filepath.Join(t.TempDir(), "dashboard.json")
	p := New("/bin/sh", writeScript(t, okWriter), livePath, 30*time.Second, 40)

	require.NoError(t, p.ValidateOnly(context.Background(), testPayload(), testProfile()))

	_, err := os.Stat(livePath)
	require.True(t, os.IsNotExist(err), "validate-only must not create the live file")
}

func TestPublishWritesLive(t *testing.T) {
	livePath := filepath.Join(t.TempDir(), "dashboard.json")
	p := New("/bin/sh", writeScript(t, okWriter), livePath, 30*time.Second, 40)

	require.NoError(t, p.Publish(context.Background(), testPayload(), testProfile()))

	var live map[string]any
	require.NoError(t, store.ReadJSON(livePath, &live))
	require.Equal(t, "X", live["title"])
}

func TestPublishCleansTempDir(t *testing.T) {
	liveDir := t.TempDir()
	livePath := filepath.Join(liveDir, "dashboard.json")
	p := New("/bin/sh", writeScript(t, okWriter), livePath, 30*time.Second, 40)

	require.NoError(t, p.Publish(context.Background(), testPayload(), testProfile()))

	entries, err := os.ReadDir(liveDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the live file may remain next to it")
}

func TestLayoutRejectionClassified(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho 'validation failed: layout budget exceeded' >&2\nexit 1\n")
	p := New("/bin/sh", script, filepath.Join(t.TempDir(), "dashboard.json"), 30*time.Second, 40)

	err := p.ValidateOnly(context.Background(), testPayload(), testProfile())
	require.Error(t, err)
	require.Equal(t, models.KindLayoutBudget, models.KindOf(err))
}

func TestSchemaRejectionClassified(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho 'validation failed: title must be a non-empty string' >&2\nexit 1\n")
	p := New("/bin/sh", script, filepath.Join(t.TempDir(), "dashboard.json"), 30*time.Second, 40)

	err := p.ValidateOnly(context.Background(), testPayload(), testProfile())
	require.Error(t, err)
	require.Equal(t, models.KindSchemaInvalid, models.KindOf(err))
}

func TestMissingWriterIsIoError(t *testing.T) {
	p := New("/nonexistent-interpreter", "writer.py", filepath.Join(t.TempDir(), "dashboard.json"), 30*time.Second, 40)

	err := p.ValidateOnly(context.Background(), testPayload(), testProfile())
	require.Error(t, err)
	require.Equal(t, models.KindIoError, models.KindOf(err))
}
