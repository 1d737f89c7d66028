package chef

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"kachef/internal/services"
)

// LockPath is {lock_dir}/kachef-{lang}[-{variant}].lock.
func LockPath(dir, lang, variant string) string {
	name := "kachef-" + lang
	if variant != "" {
		name += "-" + variant
	}
	return filepath.Join(dir, name+".lock")
}

func acquireLock(dir, lang, variant string) (*flock.Flock, error) {
	path := LockPath(dir, lang, variant)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "chef", "lock", fmt.Sprintf("acquire %s", path), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "chef", "lock",
			fmt.Sprintf("another run is in progress for %s (lock %s)", runKey(lang, variant), path), nil)
	}
	return lock, nil
}

func runKey(lang, variant string) string {
	if variant == "" {
		return lang
	}
	return lang + "/" + variant
}
