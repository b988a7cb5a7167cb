package counter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// filePermissions restricts the counter file to its owner.
const filePermissions = 0o600

// errNotInteger is returned when a stored value is not a whole number.
var errNotInteger = errors.New("stored value is not an integer")

// FileRepository persists counters to a JSON file on disk.
// The document is a google.protobuf.Struct encoded with protojson.
type FileRepository struct {
	// path is the filesystem location of the counter file.
	path string
	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// ReadCounter returns the stored value, or 0 if the key or the file is absent.
func (r *FileRepository) ReadCounter(_ context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return 0, err
	}

	return values[key], nil
}

// WriteCounter stores the value and syncs the file before returning.
func (r *FileRepository) WriteCounter(_ context.Context, key string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}

	values[key] = value

	return r.store(values)
}

// Close is a no-op, it lets FileRepository satisfy the same contract as SQLiteRepository.
func (r *FileRepository) Close() error {
	return nil
}

// load reads every counter from disk.
func (r *FileRepository) load() (map[string]int, error) {
	values := make(map[string]int)

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}

		return nil, fmt.Errorf("read counter file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode counter file: %w", err)
	}

	for key, raw := range document.GetFields() {
		number := raw.GetNumberValue()
		if number != math.Trunc(number) {
			return nil, fmt.Errorf("counter %q: %w", key, errNotInteger)
		}

		values[key] = int(number)
	}

	return values, nil
}

// store writes a temporary file, syncs it and renames it over the old one.
func (r *FileRepository) store(values map[string]int) error {
	fields := make(map[string]any, len(values))
	for key, value := range values {
		fields[key] = value
	}

	document, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}

	temporary := r.path + ".tmp"

	file, err := os.OpenFile(temporary, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("create counter file: %w", err)
	}

	if _, err = file.Write(data); err != nil {
		_ = file.Close()

		return fmt.Errorf("write counter file: %w", err)
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()

		return fmt.Errorf("sync counter file: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close counter file: %w", err)
	}

	if err = os.Rename(temporary, r.path); err != nil {
		return fmt.Errorf("replace counter file: %w", err)
	}

	return nil
}
