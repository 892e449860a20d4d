package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classinfo/classfile"
	"github.com/dhamidi/classinfo/classfile/classfiletest"
)

func classBytes(name string) []byte {
	return classfiletest.New(name, "java/lang/Object").Bytes()
}

func enumBytes(name string) []byte {
	return classfiletest.New(name, "java/lang/Enum").
		SetAccess(classfile.AccPublic | classfile.AccFinal | classfile.AccSuper | classfile.AccEnum).
		Bytes()
}

// jarBytes zips files, keyed by member name.
func jarBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
