package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

const (
	directiveUp             = "-- +goose Up"
	directiveDown           = "-- +goose Down"
	directiveStatementBegin = "-- +goose StatementBegin"
	directiveStatementEnd   = "-- +goose StatementEnd"
)

// ValidateDir validates the migrations in a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateBundled validates the migrations compiled into the binary.
func ValidateBundled() error {
	sub, err := fs.Sub(bundled, bundledRoot)
	if err != nil {
		return fmt.Errorf("open bundled migrations: %w", err)
	}
	return ValidateFS(sub)
}

// ValidateFS checks filenames, unique versions and names, and goose directives
// for every .sql file at the root of fsys.
func ValidateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := map[string]string{}
	names := map[string]string{}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		file := e.Name()

		m := sqlFileRe.FindStringSubmatch(file)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", file)
		}
		version, name := m[1], m[2]
		if prev, ok := versions[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, file)
		}
		if prev, ok := names[name]; ok {
			return fmt.Errorf("duplicate migration name %q in %q and %q", name, prev, file)
		}
		versions[version] = file
		names[name] = file

		b, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read file %q: %w", file, err)
		}
		if err := checkDirectives(file, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func checkDirectives(file, txt string) error {
	up := strings.Index(txt, directiveUp)
	if up < 0 {
		return fmt.Errorf("migration %q missing %q", file, directiveUp)
	}
	down := strings.Index(txt, directiveDown)
	if down < 0 {
		return fmt.Errorf("migration %q missing %q", file, directiveDown)
	}
	if down < up {
		return fmt.Errorf("migration %q declares Down before Up", file)
	}
	begins := strings.Count(txt, directiveStatementBegin)
	ends := strings.Count(txt, directiveStatementEnd)
	if begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin but %d StatementEnd", file, begins, ends)
	}
	return nil
}
