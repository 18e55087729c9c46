// Package keystore persists the few client-side values that must survive a
// process restart: the demo identity and the remote session token.
package keystore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finance-dashboard/internal/util"
)

// Well-known keys.
const (
	DemoUserKey = "dev_user"
	SessionKey  = "session_token"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("keystore: key not found")

// Store is an opaque key/value store.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// File keeps every key in one JSON document. When an encryption key is set,
// values are stored as base64(AES-GCM(value)).
type File struct {
	path       string
	encryptKey string
	mu         sync.Mutex
}

// NewFile returns a store backed by path; the file is created on first write.
func NewFile(path, encryptKey string) *File {
	return &File{path: path, encryptKey: encryptKey}
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return f.decode(v)
}

func (f *File) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	enc, err := f.encode(value)
	if err != nil {
		return err
	}
	data[key] = enc
	return f.save(data)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

func (f *File) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	data := map[string]string{}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode keystore: %w", err)
	}
	return data, nil
}

func (f *File) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create keystore dir: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode keystore: %w", err)
	}
	// 先写临时文件再 rename，避免写一半的文件
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace keystore: %w", err)
	}
	return nil
}

func (f *File) encode(value []byte) (string, error) {
	if f.encryptKey == "" {
		return string(value), nil
	}
	b, err := util.EncryptAES(f.encryptKey, value)
	if err != nil {
		return "", fmt.Errorf("encrypt value: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (f *File) decode(v string) ([]byte, error) {
	if f.encryptKey == "" {
		return []byte(v), nil
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	plain, err := util.DecryptAES(f.encryptKey, b)
	if err != nil {
		return nil, fmt.Errorf("decrypt value: %w", err)
	}
	return plain, nil
}

// Memory is a process-local Store, used in tests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// GetJSON decodes the value stored under key into v.
func GetJSON(s Store, key string, v any) error {
	b, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// PutJSON stores v under key as JSON.
func PutJSON(s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(key, b)
}
