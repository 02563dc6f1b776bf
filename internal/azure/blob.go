package azure

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

const (
	reportPrefix = "reports/"
	photoPrefix  = "photos/"
)

// BlobStorageClient wraps Azure Blob Storage SDK for one container
type BlobStorageClient struct {
	client        *azblob.Client
	serviceURL    string
	containerName string
	logger        *zap.Logger
}

// NewBlobStorageClient creates a new Azure Blob Storage client.
// endpoint overrides the public account URL, e.g. for Azurite; it may be empty.
func NewBlobStorageClient(accountName, accountKey, containerName, endpoint string, logger *zap.Logger) (*BlobStorageClient, error) {
	if accountName == "" || accountKey == "" || containerName == "" {
		return nil, fmt.Errorf("accountName, accountKey, and containerName are required")
	}

	serviceURL := endpoint
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	}
	if !strings.HasSuffix(serviceURL, "/") {
		serviceURL += "/"
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStorageClient{
		client:        client,
		serviceURL:    serviceURL,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// EnsureContainer creates the container if it does not exist yet
func (c *BlobStorageClient) EnsureContainer(ctx context.Context) error {
	_, err := c.client.CreateContainer(ctx, c.containerName, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		return fmt.Errorf("failed to create container %s: %w", c.containerName, err)
	}
	return nil
}

// UploadPDF uploads a PDF file to Azure Blob Storage
func (c *BlobStorageClient) UploadPDF(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	c.logger.Info("uploading PDF to blob storage",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)

	blobName := reportPrefix + filename
	if err := c.upload(ctx, blobName, "application/pdf", data); err != nil {
		c.logger.Error("failed to upload PDF",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload PDF: %w", err)
	}

	c.logger.Info("PDF uploaded successfully", zap.String("blob_name", blobName))
	return blobName, nil
}

// DownloadPDF downloads a PDF file from Azure Blob Storage
func (c *BlobStorageClient) DownloadPDF(ctx context.Context, blobName string) ([]byte, error) {
	data, err := c.download(ctx, blobName)
	if err != nil {
		c.logger.Error("failed to download PDF",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}

	c.logger.Info("PDF downloaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)
	return data, nil
}

// UploadPhoto uploads a medication photo and returns its public URL
func (c *BlobStorageClient) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	blobName := photoPrefix + filename
	if err := c.upload(ctx, blobName, contentType, data); err != nil {
		c.logger.Error("failed to upload photo",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	c.logger.Info("photo uploaded successfully",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)
	return c.PublicURL(blobName), nil
}

// DeletePhoto removes the photo a public URL points to
func (c *BlobStorageClient) DeletePhoto(ctx context.Context, photoURL string) error {
	blobName, err := photoBlobName(photoURL)
	if err != nil {
		return err
	}

	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)
	if _, err := blobClient.Delete(ctx, nil); err != nil {
		c.logger.Error("failed to delete photo",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	c.logger.Info("photo deleted", zap.String("blob_name", blobName))
	return nil
}

// PublicURL returns the URL a blob is served from
func (c *BlobStorageClient) PublicURL(blobName string) string {
	return c.serviceURL + c.containerName + "/" + blobName
}

func (c *BlobStorageClient) upload(ctx context.Context, blobName, contentType string, data []byte) error {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	_, err := blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr(contentType),
		},
	})
	return err
}

func (c *BlobStorageClient) download(ctx context.Context, blobName string) ([]byte, error) {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	downloadResponse, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer downloadResponse.Body.Close()

	return io.ReadAll(downloadResponse.Body)
}

// photoBlobName maps a public photo URL back to its blob name using the last path segment
func photoBlobName(photoURL string) (string, error) {
	u, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid photo URL: %w", err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("photo URL has no file name: %s", photoURL)
	}
	return photoPrefix + name, nil
}

// toPtr is a helper function to convert a value to a pointer
func toPtr(s string) *string {
	return &s
}
