package legacystore

import (
	"encoding/base32"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileExt eski kayıt dosyalarının uzantısıdır.
const fileExt = ".json"

// FileStore her anahtarı ayrı bir JSON dosyası olarak bir dizinde tutan
// Store implementasyonudur. Anahtarlar dosya adına base32 ile kodlanır;
// böylece anahtar içeriği dosya sistemi kurallarına takılmaz.
type FileStore struct {
	dir string
}

// NewFileStore verilen dizini (yoksa oluşturarak) kullanan FileStore döndürür.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("legacystore: dizin boş olamaz")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("legacystore: dizin oluşturulamadı: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, keyEncoding.EncodeToString([]byte(key))+fileExt)
}

func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("legacystore: dizin okunamadı: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		encoded := strings.TrimSuffix(entry.Name(), fileExt)
		decoded, decErr := keyEncoding.DecodeString(encoded)
		if decErr != nil {
			// Elle bırakılmış yabancı dosyalar sessizce atlanır.
			continue
		}
		keys = append(keys, string(decoded))
	}
	return keys, nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("legacystore: kayıt okunamadı: %w", err)
	}
	return data, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if err := os.WriteFile(s.pathFor(key), value, 0o644); err != nil {
		return fmt.Errorf("legacystore: kayıt yazılamadı: %w", err)
	}
	return nil
}

func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("legacystore: kayıt silinemedi: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
