package config

// FileBridge connects a TOML file to a Store. Each HandleChange re-reads the
// file and swaps the result in, so the same call serves the file watcher and
// explicit reload requests.
type FileBridge[T any] struct {
	store    *Store[T]
	filePath string
	defaults *T
}

// NewFileBridge creates a bridge between the file at filePath and the store.
func NewFileBridge[T any](store *Store[T], filePath string, defaults *T) *FileBridge[T] {
	return &FileBridge[T]{
		store:    store,
		filePath: filePath,
		defaults: defaults,
	}
}

// Path returns the watched file path.
func (b *FileBridge[T]) Path() string {
	return b.filePath
}

// HandleChange reloads the config from the TOML file and swaps it into the
// store. On error the store keeps its current value.
func (b *FileBridge[T]) HandleChange() error {
	cfg, err := LoadTOML[T](b.filePath, b.defaults)
	if err != nil {
		return err
	}
	b.store.Swap(cfg)
	return nil
}
