// Package docs holds the user documentation shown by 'ssrwatch topic'.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the topic listing the others.
const Index = "readme"

// Topic returns the markdown of a documentation topic.
func Topic(name string) (string, error) {
	content, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, see 'ssrwatch topic %s'", name, Index)
	}
	return string(content), nil
}

// Topics concatenates topics. "*" stands for every topic but the index.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			all, err := List()
			if err != nil {
				return "", err
			}
			expanded = all
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// List returns the sorted topic names, the index excluded.
func List() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if name != Index {
			topics = append(topics, name)
		}
	}
	sort.Strings(topics)
	return topics, nil
}
