package storage

import (
	"context"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CDN stores uploads with Cloudinary and serves them from its edge network.
type CDN struct {
	client *cloudinary.Cloudinary
	folder string
}

// CDNConfig carries the credential set electing this backend.
type CDNConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// NewCDN authenticates against Cloudinary.
func NewCDN(cfg CDNConfig) (*CDN, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}

	folder := strings.TrimSpace(cfg.Folder)
	if folder == "" {
		folder = "uploads"
	}

	return &CDN{client: client, folder: folder}, nil
}

// Save uploads the image; the returned Path is the Cloudinary public id used
// for deletion.
func (c *CDN) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error) {
	resp, err := c.client.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: strings.TrimSuffix(objectName(name), strings.ToLower(pathExt(name))),
		Folder:   c.folder,
	})
	if err != nil {
		return nil, err
	}

	return &Image{
		Name: resp.PublicID,
		Size: size,
		Type: contentType,
		URL:  resp.SecureURL,
		Path: resp.PublicID,
	}, nil
}

// Delete destroys the asset by public id.
func (c *CDN) Delete(ctx context.Context, path string) error {
	_, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: path})
	return err
}

func pathExt(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}
