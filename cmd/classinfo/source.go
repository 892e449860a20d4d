package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

// classEntry is one class file found while walking an input.
type classEntry struct {
	// Location names the entry for reports: a URL, or "archive!entry" for
	// members of jar and zip files.
	Location string
	Data     []byte
}

// source loads class files from local paths, any URL scheme afs supports
// (file://, mem://, s3://, gs://, ...) and maven: coordinates.
type source struct {
	fs        afs.Service
	mavenRepo string
}

func newSource() *source {
	return &source{fs: afs.New(), mavenRepo: defaultMavenRepo}
}

func isArchive(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".jar" || ext == ".zip"
}

func isClass(name string) bool {
	return strings.EqualFold(path.Ext(name), ".class")
}

// Load downloads a single location.
func (s *source) Load(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return data, nil
}

// Collect returns every class file under location: the file itself, the
// members of an archive, a jar named by Maven coordinates or the contents of a directory tree. Unreadable
// entries are reported through onError and skipped.
func (s *source) Collect(ctx context.Context, location string, onError func(location string, err error)) ([]classEntry, error) {
	if isMaven(location) {
		coord, err := parseMavenCoordinate(location)
		if err != nil {
			return nil, err
		}
		return s.collectFile(ctx, coord.JarURL(s.mavenRepo), onError)
	}

	object, err := s.fs.Object(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}
	if !object.IsDir() {
		return s.collectFile(ctx, location, onError)
	}

	var entries []classEntry
	err = s.walk(ctx, location, func(child storage.Object) {
		found, err := s.collectFile(ctx, child.URL(), onError)
		if err != nil {
			onError(child.URL(), err)
			return
		}
		entries = append(entries, found...)
	})
	return entries, err
}

func (s *source) collectFile(ctx context.Context, location string, onError func(string, error)) ([]classEntry, error) {
	switch {
	case isClass(location):
		data, err := s.Load(ctx, location)
		if err != nil {
			return nil, err
		}
		return []classEntry{{Location: location, Data: data}}, nil
	case isArchive(location):
		data, err := s.Load(ctx, location)
		if err != nil {
			return nil, err
		}
		return readArchive(location, data, onError)
	}
	return nil, nil
}

// walk visits every non-directory object below location.
func (s *source) walk(ctx context.Context, location string, visit func(storage.Object)) error {
	objects, err := s.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("list %s: %w", location, err)
	}
	base := path.Base(strings.TrimSuffix(location, "/"))
	for i, object := range objects {
		// afs lists the directory itself first
		if i == 0 && object.IsDir() && object.Name() == base {
			continue
		}
		if object.IsDir() {
			if err := s.walk(ctx, object.URL(), visit); err != nil {
				return err
			}
			continue
		}
		visit(object)
	}
	return nil
}

// readArchive extracts the class files of a jar or zip, descending into
// nested jars.
func readArchive(location string, data []byte, onError func(string, error)) ([]classEntry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", location, err)
	}

	var entries []classEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !(isClass(f.Name) || isArchive(f.Name)) {
			continue
		}
		member := location + "!" + f.Name
		body, err := readZipFile(f)
		if err != nil {
			onError(member, err)
			continue
		}
		if isClass(f.Name) {
			entries = append(entries, classEntry{Location: member, Data: body})
			continue
		}
		nested, err := readArchive(member, body, onError)
		if err != nil {
			onError(member, err)
			continue
		}
		entries = append(entries, nested...)
	}
	return entries, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
