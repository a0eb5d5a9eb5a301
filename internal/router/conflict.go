package router

import (
	"mp4press/internal/config"
	"mp4press/internal/fileutil"
	"mp4press/internal/workdir"
)

// destination resolves the target path for name in role, applying the suffix
// policy when configured.
func (r *Router) destination(role workdir.Role, name string) (string, error) {
	dst := r.settings.Layout.Path(role, name)
	switch r.settings.OnConflict {
	case config.ConflictSuffix:
		return fileutil.UniquePath(dst)
	case config.ConflictFail:
		if err := fileutil.EnsureAbsent(dst); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func (r *Router) move(src, dst string) error {
	if r.settings.OnConflict == config.ConflictFail {
		return fileutil.MoveNoReplace(src, dst)
	}
	return fileutil.Move(src, dst)
}
