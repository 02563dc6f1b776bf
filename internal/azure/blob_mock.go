package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

const mockBaseURL = "https://mock.blob.local/"

// MockBlobStorageClient is an in-memory BlobStorage for tests and local runs without Azure
type MockBlobStorageClient struct {
	Storage map[string][]byte
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMockBlobStorageClient creates a new mock blob storage client
func NewMockBlobStorageClient(logger *zap.Logger) *MockBlobStorageClient {
	return &MockBlobStorageClient{
		Storage: make(map[string][]byte),
		logger:  logger,
	}
}

// UploadPDF uploads a PDF file to in-memory storage
func (c *MockBlobStorageClient) UploadPDF(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	blobName := reportPrefix + filename
	c.Storage[blobName] = bytes.Clone(data)

	if c.logger != nil {
		c.logger.Info("mock: PDF uploaded",
			zap.String("blob_name", blobName),
			zap.Int("size_bytes", len(data)),
		)
	}

	return blobName, nil
}

// DownloadPDF downloads a PDF file from in-memory storage
func (c *MockBlobStorageClient) DownloadPDF(ctx context.Context, blobName string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.Storage[blobName]
	if !exists {
		return nil, fmt.Errorf("blob not found: %s", blobName)
	}

	return bytes.Clone(data), nil
}

// UploadPhoto stores a photo and returns a fake public URL
func (c *MockBlobStorageClient) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	blobName := photoPrefix + filename
	c.Storage[blobName] = data

	if c.logger != nil {
		c.logger.Info("mock: photo uploaded",
			zap.String("blob_name", blobName),
			zap.String("content_type", contentType),
			zap.Int("size_bytes", len(data)),
		)
	}

	return mockBaseURL + blobName, nil
}

// DeletePhoto removes a photo by its public URL
func (c *MockBlobStorageClient) DeletePhoto(ctx context.Context, photoURL string) error {
	blobName, err := photoBlobName(photoURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.Storage[blobName]; !ok {
		return fmt.Errorf("blob not found: %s", blobName)
	}
	delete(c.Storage, blobName)
	return nil
}

// ListBlobs returns all blob names in storage
func (c *MockBlobStorageClient) ListBlobs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blobs := make([]string, 0, len(c.Storage))
	for name := range c.Storage {
		blobs = append(blobs, name)
	}

	return blobs
}
