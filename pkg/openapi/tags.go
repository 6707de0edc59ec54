package openapi

import (
	"fmt"
	"regexp"
)

// untaggedTag stands in for the tags of an operation that declares none,
// so filters can select untagged operations.
const untaggedTag = "misc"

// tagFilter selects operations by their tags. Patterns are regular
// expressions matched against each tag.
type tagFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

func compileTagFilter(include, exclude []string) (*tagFilter, error) {
	f := &tagFilter{}
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		f.include = append(f.include, r)
	}
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, r)
	}
	return f, nil
}

// allows reports whether an operation with tags passes the filter: some tag
// matches an include pattern (or there are none) and no tag matches an
// exclude pattern.
func (f *tagFilter) allows(tags []string) bool {
	if len(tags) == 0 {
		tags = []string{untaggedTag}
	}
	if len(f.include) > 0 && !anyMatch(tags, f.include) {
		return false
	}
	return !anyMatch(tags, f.exclude)
}

func anyMatch(tags []string, patterns []*regexp.Regexp) bool {
	for _, tag := range tags {
		for _, r := range patterns {
			if r.MatchString(tag) {
				return true
			}
		}
	}
	return false
}
