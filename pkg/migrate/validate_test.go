package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateEmbeddedMigrations(t *testing.T) {
	require.NoError(t, Validate(Embedded()))
	require.NoError(t, ValidateDir("migrations"))
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	embedded, err := sqlFiles(Embedded())
	require.NoError(t, err)
	disk, err := sqlFiles(os.DirFS("migrations"))
	require.NoError(t, err)
	require.Equal(t, disk, embedded)
	require.Len(t, embedded, 3)
}

func TestValidateRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "bad filename",
			fsys:    fstest.MapFS{"create_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}},
			wantErr: "invalid migration filename",
		},
		{
			name:    "missing down",
			fsys:    fstest.MapFS{"20250101000000_no_down.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
			wantErr: "+goose Down",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
				"20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			},
			wantErr: "duplicate migration version",
		},
		{
			name:    "down before up",
			fsys:    fstest.MapFS{"20250101000000_flip.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")}},
			wantErr: "Down before Up",
		},
		{
			name: "unbalanced statement block",
			fsys: fstest.MapFS{"20250101000000_open.sql": {Data: []byte(
				"-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")}},
			wantErr: "StatementBegin",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.fsys)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCreateSanitizesNameAndValidates(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	path, err := Create(dir, "Add Package Badges!", now)
	require.NoError(t, err)
	require.Equal(t, "20250601120000_add_package_badges.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	_, err = Create(dir, "!!!", now)
	require.Error(t, err)
}

func TestCreateOrdersAfterNewestMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20300101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := Create(dir, "late clock", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(path), "20300101000001_"), path)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20250301090200")
	require.NoError(t, err)
	require.Equal(t, int64(20250301090200), v)

	for _, bad := range []string{"", "2025", "2025030109020x"} {
		_, err := ParseVersion(bad)
		require.Error(t, err, bad)
	}
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}
