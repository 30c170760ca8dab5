// Package receipttest provides testify mocks for the artifact pipeline collaborators.
package receipttest

import (
	"context"

	"github.com/KAsare1/Gymhub-server/service/receipt"
	"github.com/stretchr/testify/mock"
)

type Renderer struct {
	mock.Mock
}

func (m *Renderer) Render(doc receipt.Document) ([]byte, error) {
	args := m.Called(doc)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type Storage struct {
	mock.Mock
}

func (m *Storage) Put(ctx context.Context, data []byte, namespace, key string) (string, error) {
	args := m.Called(ctx, data, namespace, key)
	if fn, ok := args.Get(0).(func(context.Context, []byte, string, string) string); ok {
		return fn(ctx, data, namespace, key), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

type LogoFetcher struct {
	mock.Mock
}

func (m *LogoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Pipeline returns a renderer and storage that succeed, uploading to baseURL/<namespace>/<key>.
func Pipeline(baseURL string) (*Renderer, *Storage) {
	renderer := new(Renderer)
	renderer.On("Render", mock.Anything).Return([]byte("%PDF-1.3 test"), nil)

	storage := new(Storage)
	storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ []byte, namespace, key string) string {
			return baseURL + "/" + namespace + "/" + key
		}, nil)
	return renderer, storage
}
