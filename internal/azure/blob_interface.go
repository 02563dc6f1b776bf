package azure

import (
	"context"
	"io"
)

// BlobStorage defines the interface for blob storage operations
// This interface allows for easier testing with mock implementations
type BlobStorage interface {
	UploadPDF(ctx context.Context, filename string, data []byte) (string, error)
	DownloadPDF(ctx context.Context, blobName string) ([]byte, error)
	UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	DeletePhoto(ctx context.Context, photoURL string) error
}

var (
	_ BlobStorage = (*BlobStorageClient)(nil)
	_ BlobStorage = (*MockBlobStorageClient)(nil)
)
