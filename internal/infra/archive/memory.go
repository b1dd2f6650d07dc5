package archive

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory implements Store in process memory, for tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	payload []byte
	modTime time.Time
}

// NewMemory returns an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{objects: map[string]memObject{}}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(ctx context.Context, key string, payload []byte) (Info, error) {
	if err := validKey(key); err != nil {
		return Info{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[key]; exists {
		return Info{}, fmt.Errorf("archive %s already exists", key)
	}
	obj := memObject{payload: append([]byte(nil), payload...), modTime: time.Now().UTC()}
	m.objects[key] = obj
	return Info{Key: key, Size: int64(len(obj.payload)), LastModified: obj.modTime}, nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("archive %s: %w", key, os.ErrNotExist)
	}
	return append([]byte(nil), obj.payload...), nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var infos []Info
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, Info{Key: key, Size: int64(len(obj.payload)), LastModified: obj.modTime})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

var _ Store = (*Memory)(nil)
