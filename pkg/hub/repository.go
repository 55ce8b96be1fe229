package hub

import (
	"path"
	"sort"
	"strings"
)

const (
	// weightFileSuffix identifies safetensors weight files.
	weightFileSuffix = ".safetensors"
	// shardIndexSuffix identifies the manifest of a sharded model.
	shardIndexSuffix = ".safetensors.index.json"
)

// RepoFile represents a file in a HuggingFace repository.
type RepoFile struct {
	Type string   `json:"type"` // "file" or "directory"
	Path string   `json:"path"` // Relative path in repo
	Size int64    `json:"size"` // File size in bytes (0 for directories)
	OID  string   `json:"oid"`  // Git blob ID
	LFS  *LFSInfo `json:"lfs"`  // Present if LFS file
}

// LFSInfo contains LFS-specific file information.
type LFSInfo struct {
	OID         string `json:"oid"`          // LFS object ID (sha256)
	Size        int64  `json:"size"`         // Actual file size
	PointerSize int64  `json:"pointer_size"` // Size of pointer file
}

// ActualSize returns the actual file size, accounting for LFS.
func (f *RepoFile) ActualSize() int64 {
	if f.LFS != nil {
		return f.LFS.Size
	}
	return f.Size
}

// Filename returns the base filename without directory path.
func (f *RepoFile) Filename() string {
	return path.Base(f.Path)
}

// IsWeightFile reports whether the file holds safetensors weights. Index
// manifests carry the weight suffix inside their name but are not weights.
func (f *RepoFile) IsWeightFile() bool {
	return f.Type == "file" && strings.HasSuffix(strings.ToLower(f.Path), weightFileSuffix)
}

// IsShardIndex reports whether the file is a shard index manifest.
func (f *RepoFile) IsShardIndex() bool {
	return f.Type == "file" && strings.HasSuffix(strings.ToLower(f.Path), shardIndexSuffix)
}

// FilterWeightFiles returns the safetensors weight files from a listing.
func FilterWeightFiles(files []RepoFile) []RepoFile {
	var weights []RepoFile
	for _, f := range files {
		if f.IsWeightFile() {
			weights = append(weights, f)
		}
	}
	return weights
}

// FindShardIndex returns the first shard index file in a listing, or nil if
// the model is not sharded.
func FindShardIndex(files []RepoFile) *RepoFile {
	for i := range files {
		if files[i].IsShardIndex() {
			return &files[i]
		}
	}
	return nil
}

// ShardIndex is the manifest of a sharded model, mapping tensor names to the
// shard file that contains them.
type ShardIndex struct {
	Metadata  map[string]any    `json:"metadata"`
	WeightMap map[string]string `json:"weight_map"`
}

// ShardSet returns the deduplicated, sorted set of shard filenames the
// weight map references.
func (idx *ShardIndex) ShardSet() []string {
	seen := make(map[string]struct{}, len(idx.WeightMap))
	for _, filename := range idx.WeightMap {
		seen[filename] = struct{}{}
	}
	shards := make([]string, 0, len(seen))
	for filename := range seen {
		shards = append(shards, filename)
	}
	sort.Strings(shards)
	return shards
}
