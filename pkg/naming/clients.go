package naming

import (
	"path"
	"strings"
)

const (
	clientSuffix      = "Client"
	asyncClientSuffix = "AsyncClient"
)

// AsyncClientName returns the async client class name for name.
//
//	Pets        -> PetsAsyncClient
//	PetsClient  -> PetsAsyncClient
//	PetsAsyncClient -> PetsAsyncClient
func AsyncClientName(name string) string {
	if strings.HasSuffix(name, asyncClientSuffix) {
		return name
	}
	if strings.HasSuffix(name, clientSuffix) {
		return strings.TrimSuffix(name, clientSuffix) + asyncClientSuffix
	}
	return name + asyncClientSuffix
}

// SyncClientName returns the sync client class name for name. An async name
// maps back to its sync counterpart.
func SyncClientName(name string) string {
	if strings.HasSuffix(name, asyncClientSuffix) {
		return strings.TrimSuffix(name, asyncClientSuffix) + clientSuffix
	}
	if strings.HasSuffix(name, clientSuffix) {
		return name
	}
	return name + clientSuffix
}

// Defaults of PathBudget.
const (
	DefaultMaxPathLength      = 260
	DefaultMinClassNameLength = 16
)

// PathBudget bounds the length of generated file paths. The estimate is
// approximate: it counts the directory the file lands in plus the file
// extension, and assumes the file is named after the class.
type PathBudget struct {
	MaxPathLength      int
	MinClassNameLength int
}

func (b PathBudget) limits() (int, int) {
	maxLen, minLen := b.MaxPathLength, b.MinClassNameLength
	if maxLen <= 0 {
		maxLen = DefaultMaxPathLength
	}
	if minLen <= 0 {
		minLen = DefaultMinClassNameLength
	}
	return maxLen, minLen
}

// Remaining returns the length left for a class name whose file goes to dir
// with extension ext.
func (b PathBudget) Remaining(dir, ext string) int {
	maxLen, _ := b.limits()
	overhead := len(path.Clean(dir)) + len("/") + len(ext)
	return maxLen - overhead
}

// Truncate shortens name to fit the budget. It only truncates when the name
// is longer than what remains and the remainder is still at least the
// minimum class name length; otherwise name is returned unchanged.
func (b PathBudget) Truncate(dir, name, ext string) (string, bool) {
	_, minLen := b.limits()
	remaining := b.Remaining(dir, ext)
	if len(name) > remaining && remaining >= minLen {
		return name[:remaining], true
	}
	return name, false
}
