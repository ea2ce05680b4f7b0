// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// listFormat makes go list print one tab-separated record per package.
const listFormat = `{{.ImportPath}}	{{.Dir}}	{{join .GoFiles ","}}	{{join .TestGoFiles ","}}	{{join .XTestGoFiles ","}}`

// packageStats is the line count of one package.
type packageStats struct {
	Prod int `json:"prod"`
	Test int `json:"test"`
}

// Stats prints a JSON record with Go line counts per package and in total,
// plus the word count of the top-level markdown documents.
func Stats() error {
	out, err := sh.Output(binGo, "list", "-f", listFormat, "./...")
	if err != nil {
		return err
	}

	pkgs := map[string]packageStats{}
	var prod, test int
	for _, rec := range strings.Split(out, "\n") {
		fields := strings.Split(rec, "\t")
		if len(fields) != 5 {
			continue
		}
		name := strings.TrimPrefix(strings.TrimPrefix(fields[0], modulePath), "/")
		if name == "" {
			name = "."
		}
		dir := fields[1]

		var ps packageStats
		if ps.Prod, err = sumLines(dir, fields[2]); err != nil {
			return err
		}
		if ps.Test, err = sumLines(dir, fields[3]+","+fields[4]); err != nil {
			return err
		}
		pkgs[name] = ps
		prod += ps.Prod
		test += ps.Test
	}

	words, err := markdownWords(".")
	if err != nil {
		return err
	}

	record := struct {
		Prod     int                     `json:"go_loc_prod"`
		Test     int                     `json:"go_loc_test"`
		Total    int                     `json:"go_loc"`
		DocWords int                     `json:"doc_wc"`
		Packages map[string]packageStats `json:"packages"`
	}{prod, test, prod + test, words, pkgs}

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))

	names := make([]string, 0, len(pkgs))
	for name := range pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := pkgs[name]
		fmt.Fprintf(os.Stderr, "%-28s %6d prod %6d test\n", name, ps.Prod, ps.Test)
	}
	return nil
}

// sumLines counts newline-terminated lines across the comma-separated file
// names in dir.
func sumLines(dir, names string) (int, error) {
	total := 0
	for _, name := range strings.Split(names, ",") {
		if name == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return 0, err
		}
		total += bytes.Count(data, []byte("\n"))
	}
	return total, nil
}

// markdownWords counts whitespace-separated words in the markdown files of
// dir itself.
func markdownWords(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(os.DirFS(dir), e.Name())
		if err != nil {
			return 0, err
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
