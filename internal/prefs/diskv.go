package prefs

import (
	"errors"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv keeps one file per preference key under a base directory. Reads always
// go to disk: the TUI and a waiting wake process share the directory, and each
// must see the other's writes.
type Diskv struct {
	d *diskv.Diskv
}

func NewDiskv(basePath string) (*Diskv, error) {
	p := strings.TrimSpace(basePath)
	if p == "" {
		return nil, errors.New("empty diskv path")
	}
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:     p,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 0,
	})}, nil
}

func (s *Diskv) Get(key string) (string, bool, error) {
	if !s.d.Has(key) {
		return "", false, nil
	}
	v, err := s.d.Read(key)
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

func (s *Diskv) Set(key, value string) error {
	return s.d.WriteString(key, value)
}

func (s *Diskv) Close() error { return nil }
