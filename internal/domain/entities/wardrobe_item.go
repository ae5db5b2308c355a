package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// WardrobeItem is one selectable garment. Items are immutable once created
// and live for the session; custom uploads get a generated id.
type WardrobeItem struct {
	id   string
	name string
	url  string
}

func NewWardrobeItem(id, name, url string) (*WardrobeItem, error) {
	if id == "" {
		id = uuid.NewString()
	}

	if name == "" {
		return nil, fmt.Errorf("garment name is required")
	}

	if url == "" {
		return nil, fmt.Errorf("garment image url is required")
	}

	return &WardrobeItem{
		id:   id,
		name: name,
		url:  url,
	}, nil
}

func (w *WardrobeItem) ID() string {
	return w.id
}

func (w *WardrobeItem) Name() string {
	return w.name
}

func (w *WardrobeItem) URL() string {
	return w.url
}
