// Package category derives stable element keys from category names.
//
// A key is the category name lowercased with every character outside a–z
// removed: "N. America" becomes "namerica", "West South Central" becomes
// "westsouthcentral" and "U.S." becomes "us". Keys double as SVG class names,
// so stylesheets and step handlers can re-select elements by category.
//
// The derivation is lossy. [Keys] checks a category set for collisions
// (two names mapping to the same key) and for names that produce no key at
// all, so ambiguous datasets are rejected at load time instead of silently
// sharing styling.
package category

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/scrolly/pkg/errors"
)

// Key returns the sanitized key for a category name.
func Key(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Collision describes category names that share a key.
type Collision struct {
	Key   string
	Names []string
}

func (c Collision) String() string {
	return fmt.Sprintf("%q <- %s", c.Key, strings.Join(quoteAll(c.Names), ", "))
}

// Keys maps each distinct name to its key.
//
// It returns an INVALID_INPUT error when a name yields an empty key or when
// distinct names collide. Repeated occurrences of the same name are fine.
func Keys(names []string) (map[string]string, error) {
	keys := make(map[string]string, len(names))
	owners := make(map[string][]string)
	for _, n := range names {
		if _, seen := keys[n]; seen {
			continue
		}
		k := Key(n)
		if k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "category %q has no letters to derive a key from", n)
		}
		keys[n] = k
		owners[k] = append(owners[k], n)
	}

	if collisions := collect(owners); len(collisions) > 0 {
		parts := make([]string, len(collisions))
		for i, c := range collisions {
			parts[i] = c.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "category keys collide: %s", strings.Join(parts, "; "))
	}
	return keys, nil
}

// Collisions reports every key shared by more than one distinct name,
// sorted by key.
func Collisions(names []string) []Collision {
	owners := make(map[string][]string)
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		k := Key(n)
		owners[k] = append(owners[k], n)
	}
	return collect(owners)
}

func collect(owners map[string][]string) []Collision {
	var out []Collision
	for k, ns := range owners {
		if len(ns) > 1 {
			out = append(out, Collision{Key: k, Names: ns})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
