package codemodel

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// BucketNames lists the canonical schema buckets in document order.
var BucketNames = []string{
	"arrays", "dictionaries", "binaries", "groups", "booleans", "numbers", "objects",
	"strings", "unixtimes", "byteArrays", "streams", "chars", "dates", "times", "dateTimes",
	"durations", "uuids", "uris", "armIds", "credentials", "odataQueries", "choices",
	"sealedChoices", "flags", "constants", "ands", "ors", "xors", "nots", "anys",
	"anyObjects", "unknowns", "parameterGroups",
}

// Schemas is the global registry. Every schema is reachable from exactly one bucket.
type Schemas struct {
	buckets map[string][]Schema
	owner   map[Schema]string
}

// NewSchemas returns an empty registry.
func NewSchemas() *Schemas {
	return &Schemas{
		buckets: make(map[string][]Schema),
		owner:   make(map[Schema]string),
	}
}

// Add puts s into bucket. It returns the bucket that already owns s, if any,
// and false in that case.
func (r *Schemas) Add(bucket string, s Schema) (string, bool) {
	if prev, ok := r.owner[s]; ok {
		return prev, false
	}
	r.owner[s] = bucket
	r.buckets[bucket] = append(r.buckets[bucket], s)
	return bucket, true
}

// Bucket returns the schemas in the named bucket.
func (r *Schemas) Bucket(name string) []Schema {
	return r.buckets[name]
}

// BucketOf returns the bucket owning s.
func (r *Schemas) BucketOf(s Schema) (string, bool) {
	b, ok := r.owner[s]
	return b, ok
}

// All returns every registered schema in bucket order.
func (r *Schemas) All() []Schema {
	var out []Schema
	seen := make(map[string]bool)
	for _, name := range BucketNames {
		seen[name] = true
		out = append(out, r.buckets[name]...)
	}
	// buckets outside the canonical list, sorted for determinism
	var extra []string
	for name := range r.buckets {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, r.buckets[name]...)
	}
	return out
}

// Objects returns the object schemas of the registry.
func (r *Schemas) Objects() []*ObjectSchema {
	var out []*ObjectSchema
	for _, s := range r.All() {
		if o, ok := s.(*ObjectSchema); ok {
			out = append(out, o)
		}
	}
	return out
}

// SortAPIVersions returns the versions ordered oldest first. Versions that
// parse as semver are compared as such; date-style versions such as
// "2024-05-01-preview" compare lexically, which is chronological.
func SortAPIVersions(versions []APIVersion) []string {
	out := make([]string, 0, len(versions))
	seen := make(map[string]bool)
	for _, v := range versions {
		if v.Version == "" || seen[v.Version] {
			continue
		}
		seen[v.Version] = true
		out = append(out, v.Version)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := semver.NewVersion(out[i])
		b, errB := semver.NewVersion(out[j])
		if errA == nil && errB == nil {
			return a.LessThan(b)
		}
		return out[i] < out[j]
	})
	return out
}

// LatestAPIVersion returns the newest version, or "".
func LatestAPIVersion(versions []APIVersion) string {
	sorted := SortAPIVersions(versions)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[len(sorted)-1]
}
