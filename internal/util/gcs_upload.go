package util

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// DecodeBase64Image strips an optional data-URL prefix and decodes the payload.
func DecodeBase64Image(base64Data string) ([]byte, error) {
	if strings.Contains(base64Data, ",") {
		parts := strings.Split(base64Data, ",")
		base64Data = parts[len(parts)-1]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(base64Data))
}

// ImageDims returns width/height for jpeg/png/gif payloads, zero values when
// the bytes are not a decodable image.
func ImageDims(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// UploadPhotoToGCS writes a base64 photo to the bucket and returns the gs://
// URL and the stored byte count.
func UploadPhotoToGCS(base64Data, bucketName, objectName string) (string, int64, error) {
	data, err := DecodeBase64Image(base64Data)
	if err != nil {
		return "", 0, err
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", 0, err
	}
	defer client.Close()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = http.DetectContentType(data)

	sizeBytes, err := w.Write(data)
	if err != nil {
		return "", 0, err
	}
	if err := w.Close(); err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), int64(sizeBytes), nil
}

// DeleteGCSPrefix removes every object under prefix/ in the bucket. Used when
// a form and its response photos are deleted.
func DeleteGCSPrefix(bucketName, prefix string) error {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bkt := client.Bucket(bucketName)
	prefix = strings.TrimSuffix(prefix, "/")

	it := bkt.Objects(ctx, &storage.Query{Prefix: prefix + "/"})
	for {
		obj, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		if err := bkt.Object(obj.Name).Delete(ctx); err != nil {
			return err
		}
	}
	return nil
}

var nonObjectChars = regexp.MustCompile(`[^a-z0-9_\-]`)

// SanitizePart lowercases a string and strips anything unsafe for a GCS
// object path segment.
func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = nonObjectChars.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

func ExtFromFilenameOrMime(filename, mime string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return strings.ToLower(filename[i:])
	}
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
